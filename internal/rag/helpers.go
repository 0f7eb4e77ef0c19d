package rag

import (
	"context"
	"time"

	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/metrics"
)

func (s *service) executeEmbeddingStep(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, queryVector []float32) (string, bool) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, queryVector)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, queryVector []float32, topK int) ([]docmodel.SearchHit, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.vectorDB.Search(ctx, queryVector, topK)
}

func (s *service) executeLLMStep(ctx context.Context, question string, hits []docmodel.SearchHit) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	contexts := make([]string, len(hits))
	for i, h := range hits {
		contexts[i] = h.Content
	}
	return s.llmProvider.Generate(ctx, question, contexts)
}
