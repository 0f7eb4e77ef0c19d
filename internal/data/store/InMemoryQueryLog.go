package store

import (
	"context"
	"sync"

	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/pkg/logx"
)

var inMemLogger = logx.NewLogger("InMem QueryLog")

// InMemoryQueryLog is the redis-offline fallback; records live for the
// process lifetime instead of the redis TTL.
type InMemoryQueryLog struct {
	recordMutex *sync.RWMutex
	recordMap   map[string]docmodel.QueryRecord
}

func InitInMemoryQueryLog() *InMemoryQueryLog {
	return &InMemoryQueryLog{
		recordMutex: new(sync.RWMutex),
		recordMap:   make(map[string]docmodel.QueryRecord),
	}
}

func (store *InMemoryQueryLog) SaveRecord(ctx context.Context, record docmodel.QueryRecord) error {
	store.recordMutex.Lock()
	defer store.recordMutex.Unlock()
	store.recordMap[record.Id] = record
	inMemLogger.Debug("Saved query record", "record Id", record.Id)
	return nil
}

func (store *InMemoryQueryLog) GetRecord(ctx context.Context, id string) (docmodel.QueryRecord, bool) {
	store.recordMutex.RLock()
	defer store.recordMutex.RUnlock()
	result, found := store.recordMap[id]
	return result, found
}

func (store *InMemoryQueryLog) DeleteRecord(ctx context.Context, id string) {
	store.recordMutex.Lock()
	defer store.recordMutex.Unlock()
	delete(store.recordMap, id)
}
