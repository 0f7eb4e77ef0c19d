package rag

import (
	"context"
	"time"

	"github.com/skandula/ragserve/internal/adapter/utils"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/metrics"
	"github.com/skandula/ragserve/internal/rag/embedding"
	"github.com/skandula/ragserve/internal/rag/ingest"
	"github.com/skandula/ragserve/internal/rag/llm"
	"github.com/skandula/ragserve/internal/rag/vectorDB"
	"github.com/skandula/ragserve/pkg/logx"
)

// Service is the public contract of the retrieval-and-generation pipeline.
// Handlers and the evaluation workers only ever see this interface; the
// private struct below holds the external clients.
type Service interface {
	Query(ctx context.Context, question string, topK int) (QueryResult, error)
	IngestDocument(ctx context.Context, docName string, docPath string) (ingest.Result, error)
	CollectionInfo(ctx context.Context) (vectorDB.CollectionInfo, error)
	DeleteCollection(ctx context.Context) error
	Healthy(ctx context.Context) bool
}

type QueryResult struct {
	Question string
	Answer   string
	Sources  []docmodel.SearchHit
	Cached   bool
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logx.Logger
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llmp llm.Provider, em embedding.Embedder) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llmp,
		embedder:    em,
		logger:      logx.NewLogger("RAG Service"),
	}
}

func (s *service) Query(ctx context.Context, question string, topK int) (QueryResult, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureQueryMetrics(status, time.Since(start)) }()

	queryContext, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	result := QueryResult{Question: question}

	// Embedding
	queryVector, err := s.executeEmbeddingStep(queryContext, question)
	if err != nil {
		status = "error"
		log.Error("EMBEDDING_FAILURE", "error", err)
		return result, err
	}

	// Cache check
	if cachedAnswer, found := s.executeCacheCheckStep(queryContext, queryVector); found {
		result.Answer = cachedAnswer
		result.Cached = true
		return result, nil
	}

	// Vector search
	hits, err := s.executeVectorSearchStep(queryContext, queryVector, topK)
	if err != nil {
		status = "error"
		log.Error("VECTOR_DB_FAILURE", "error", err)
		return result, err
	}
	result.Sources = hits

	// Nothing retrieved: answer with the prompt's own fallback instead of
	// round-tripping an empty context through the model.
	if len(hits) == 0 {
		log.Debug("No matches retrieved, returning fallback answer")
		result.Answer = config.FallbackAnswer
		return result, nil
	}

	// LLM generation
	answer, err := s.executeLLMStep(queryContext, question, hits)
	if err != nil {
		status = "error"
		log.Error("LLM_GENERATION_FAILURE", "error", err)
		return result, err
	}
	result.Answer = answer

	// Background cache save
	go func() {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer saveCancel()
		if err := s.vectorDB.SaveToCache(saveCtx, utils.GetNewUUID(), queryVector, answer); err != nil {
			s.logger.Error("Failed to save to cache", "error", err)
		}
	}()

	return result, nil
}

func (s *service) IngestDocument(ctx context.Context, docName string, docPath string) (ingest.Result, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	return ingest.ProcessDocument(ctx, utils.GetNewUUID(), docName, docPath, s.embedder, s.vectorDB)
}

func (s *service) CollectionInfo(ctx context.Context) (vectorDB.CollectionInfo, error) {
	return s.vectorDB.CollectionInfo(ctx)
}

func (s *service) DeleteCollection(ctx context.Context) error {
	return s.vectorDB.DeleteCollection(ctx)
}

func (s *service) Healthy(ctx context.Context) bool {
	return s.vectorDB.HealthCheck(ctx)
}
