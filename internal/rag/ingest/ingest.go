package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/rag/embedding"
	"github.com/skandula/ragserve/internal/rag/vectorDB"
	"github.com/skandula/ragserve/pkg/logx"
)

// Validation failures the HTTP layer maps to 400.
var (
	ErrUnsupportedExtension = errors.New("unsupported file extension, supported: .pdf, .txt, .csv")
	ErrEmptyDocument        = errors.New("no content was extracted from the document")
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// Result reports what one upload produced.
type Result struct {
	ChunksCreated int
	DocumentIds   []string
}

var logger *logx.Logger

func init() {
	logger = logx.NewLogger("Document Ingestion")
}

// ProcessDocument extracts, chunks, embeds and upserts one staged file.
// docName is the user-facing filename; docPath is the temp file on disk.
func ProcessDocument(ctx context.Context, docId string, docName string, docPath string,
	e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) (Result, error) {

	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("Processing document", "filename", docName, "path", docPath)

	docType := getDocType(docName)
	if docType == docmodel.ERR {
		return Result{}, ErrUnsupportedExtension
	}

	if err := vectorDatabase.EnsureCollection(ctx); err != nil {
		log.Error("Error creating collection", "error", err)
		return Result{}, fmt.Errorf("ensuring collection: %w", err)
	}

	doc := docmodel.Document{
		Id:                  docId,
		Name:                docName,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}

	rawPages, err := extractText(docPath, doc.ContentType)
	if err != nil {
		log.Error("Error extracting document content", "error", err)
		return Result{}, fmt.Errorf("extracting content: %w", err)
	}
	if isEmptyContent(rawPages) {
		return Result{}, ErrEmptyDocument
	}

	cfg := config.Get()
	chunks := PrepareChunks(rawPages, doc, cfg.ChunkSize, cfg.ChunkOverlap, cfg.EmbeddingModel)
	log.Debug("Processing document", "pages", len(rawPages), "chunks", len(chunks))

	if err := BatchIngest(ctx, chunks, vectorDatabase, e); err != nil {
		log.Error("Error ingesting document", "error", err)
		return Result{}, err
	}

	if err := os.Remove(docPath); err != nil {
		log.Error("Error removing staged file", "error", err)
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ChunkId
	}
	return Result{ChunksCreated: len(chunks), DocumentIds: ids}, nil
}

func isEmptyContent(pages []rawPage) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Content) != "" {
			return false
		}
	}
	return true
}

// BatchIngest embeds and upserts chunks in fixed-size batches.
func BatchIngest(ctx context.Context, chunks []docmodel.DocChunk, vectorDatabase vectorDB.DataProcessor, embedder embedding.Embedder) error {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	batchSize := config.EmbedBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		log.Debug("Starting embedding call", "batch size", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		if err := vectorDatabase.UpsertBatch(ctx, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting to vector store failed: %w", err)
		}
	}

	return nil
}
