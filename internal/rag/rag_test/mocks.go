package rag_test

import (
	"context"

	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/rag/vectorDB"
)

// Hand-rolled mocks with overridable hooks. A nil hook means "succeed with a
// reasonable default".

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type MockVectorDB struct {
	OnSearch           func(ctx context.Context, vectorVal []float32, k int) ([]docmodel.SearchHit, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnEnsureCollection func(ctx context.Context) error
	OnUpsertBatch      func(ctx context.Context, chunks []docmodel.DocChunk, vectors [][]float32) error
	OnDeleteCollection func(ctx context.Context) error
	OnCollectionInfo   func(ctx context.Context) (vectorDB.CollectionInfo, error)
	OnHealthCheck      func(ctx context.Context) bool
}

func (m *MockVectorDB) Search(ctx context.Context, vectorVal []float32, k int) ([]docmodel.SearchHit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vectorVal, k)
	}
	return []docmodel.SearchHit{{Content: "retrieved context", Score: 0.9}}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, queryVector)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, vector, answer)
	}
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) DeleteCollection(ctx context.Context) error {
	if m.OnDeleteCollection != nil {
		return m.OnDeleteCollection(ctx)
	}
	return nil
}

func (m *MockVectorDB) CollectionInfo(ctx context.Context) (vectorDB.CollectionInfo, error) {
	if m.OnCollectionInfo != nil {
		return m.OnCollectionInfo(ctx)
	}
	return vectorDB.CollectionInfo{Name: "rag_documents", PointsCount: 1, Status: "green"}, nil
}

func (m *MockVectorDB) HealthCheck(ctx context.Context) bool {
	if m.OnHealthCheck != nil {
		return m.OnHealthCheck(ctx)
	}
	return true
}

type MockLLM struct {
	OnGenerate func(ctx context.Context, question string, contexts []string) (string, error)
	OnComplete func(ctx context.Context, modelOverride string, system string, user string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, contexts)
	}
	return "generated answer", nil
}

func (m *MockLLM) Complete(ctx context.Context, modelOverride string, system string, user string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, modelOverride, system, user)
	}
	return "{}", nil
}
