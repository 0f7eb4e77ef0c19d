package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/rag/vectorDB"
	"github.com/skandula/ragserve/pkg/logx"
)

var (
	logger         *logx.Logger
	qdrantInstance *qdrant.Client
	once           sync.Once
	dimension      = uint64(config.EmbeddingOutputDimensionality)
)

type ClientHolder struct {
	QObj           *qdrant.Client
	collectionName string
}

// GetQdrantClient builds the process-wide client once. Returns nil when the
// database is unreachable so the caller can refuse to start.
func GetQdrantClient(ctx context.Context) *ClientHolder {
	cfg := config.Get()

	once.Do(func() {
		logger = logx.NewLogger("Qdrant")
		res := newClient(ctx, cfg)
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:           qdrantInstance,
		collectionName: cfg.CollectionName,
	}
}

func newClient(ctx context.Context, cfg *config.Settings) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(ctx, client, cfg.CollectionName)
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", cfg.CollectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, k int) ([]docmodel.SearchHit, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := make([]docmodel.SearchHit, 0, len(result))
	for _, hit := range result {
		hits = append(hits, docmodel.SearchHit{
			Content: hit.Payload["content"].GetStringValue(),
			Score:   hit.Score,
			Metadata: map[string]string{
				"doc_name":      hit.Payload["doc_name"].GetStringValue(),
				"source_doc_id": hit.Payload["source_doc_id"].GetStringValue(),
				"page_num":      fmt.Sprintf("%d", hit.Payload["page_num"].GetIntegerValue()),
				"chunk_order":   fmt.Sprintf("%d", hit.Payload["chunk_order"].GetIntegerValue()),
				"chunk_id":      hit.Payload["chunk_id"].GetStringValue(),
			},
		})
	}

	loggr.Debug("Search finished", "hits", len(hits))
	return hits, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	return createCollection(ctx, db.QObj, db.collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Chunk,
				"page_num":      chunk.PageNum,
				"source_doc_id": chunk.Doc.Id,
				"doc_name":      chunk.Doc.Name,
				"chunk_order":   chunk.ChunkPageOrder,
				"chunk_id":      chunk.ChunkId,
				"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

func (db *ClientHolder) DeleteCollection(ctx context.Context) error {
	logger.Warn("Deleting collection", "collectionName", db.collectionName)
	return db.QObj.DeleteCollection(ctx, db.collectionName)
}

func (db *ClientHolder) CollectionInfo(ctx context.Context) (vectorDB.CollectionInfo, error) {
	exists, err := db.QObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return vectorDB.CollectionInfo{}, err
	}
	if !exists {
		return vectorDB.CollectionInfo{Name: db.collectionName, Status: "not_found"}, nil
	}

	info, err := db.QObj.GetCollectionInfo(ctx, db.collectionName)
	if err != nil {
		return vectorDB.CollectionInfo{}, err
	}

	return vectorDB.CollectionInfo{
		Name:        db.collectionName,
		PointsCount: info.GetPointsCount(),
		Status:      strings.ToLower(info.GetStatus().String()),
	}, nil
}

func (db *ClientHolder) HealthCheck(ctx context.Context) bool {
	_, err := db.QObj.ListCollections(ctx)
	if err != nil {
		logger.Error("Vector store health check failed", "error", err)
		return false
	}
	return true
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
