package vectorDB

import (
	"context"

	"github.com/skandula/ragserve/internal/domain/docmodel"
)

// CollectionInfo mirrors what the info endpoint reports. Status is the
// database's own status string, or "not_found" when the collection is missing.
type CollectionInfo struct {
	Name        string
	PointsCount uint64
	Status      string
}

type DataProcessor interface {
	Search(ctx context.Context, vectorVal []float32, k int) ([]docmodel.SearchHit, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	EnsureCollection(ctx context.Context) error
	UpsertBatch(ctx context.Context, chunks []docmodel.DocChunk, vectors [][]float32) error
	DeleteCollection(ctx context.Context) error
	CollectionInfo(ctx context.Context) (CollectionInfo, error)
	HealthCheck(ctx context.Context) bool
}
