package store

import (
	"context"
	"encoding/json"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/data/redisStore"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/pkg/logx"
)

type RedisQueryLog struct {
	store  *redisStore.Store
	logger *logx.Logger
}

// GetRedisQueryLog returns nil when redis is offline so the caller can fall
// back to the in-memory log.
func GetRedisQueryLog(ctx context.Context) *RedisQueryLog {
	internal := redisStore.GetRedisStore(ctx, config.RedisQueryLogDB)
	if internal == nil {
		return nil
	}
	return &RedisQueryLog{
		store:  internal,
		logger: logx.NewLogger("QueryLog"),
	}
}

func (s *RedisQueryLog) SaveRecord(ctx context.Context, record docmodel.QueryRecord) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "record Id", record.Id)
	log.Debug("saving query record")
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, record.Id, data, config.RedisQueryLogTTL)
	if err == nil {
		log.Debug("Saved query record to Redis")
	}
	return err
}

func (s *RedisQueryLog) GetRecord(ctx context.Context, id string) (docmodel.QueryRecord, bool) {
	var record docmodel.QueryRecord
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "record Id", id)

	val, err := s.store.Get(ctx, id)
	if s.store.IsNil(err) {
		return record, false
	} else if err != nil {
		log.Error("Error reading query record", "error", err)
		return record, false
	}

	if err := json.Unmarshal([]byte(val), &record); err != nil {
		log.Error("Error unmarshalling query record", "error", err)
		return record, false
	}

	return record, true
}

func (s *RedisQueryLog) DeleteRecord(ctx context.Context, id string) {
	if err := s.store.Del(ctx, id); err != nil {
		s.logger.Error("Error deleting query record from Redis", "record Id", id, "error", err)
		return
	}
	s.logger.Debug("Query record deleted from Redis", "record Id", id)
}

// NewQueryLog returns the redis-backed log, or the in-memory fallback when
// redis is offline at startup.
func NewQueryLog(ctx context.Context) docmodel.QueryLogStore {
	return QueryLogOrFallback(GetRedisQueryLog(ctx))
}

// QueryLogOrFallback picks the in-memory log when the redis store is absent.
// The nil check happens on the concrete pointer before it ever becomes an
// interface value, so an offline redis cannot leak a typed nil to the callers.
func QueryLogOrFallback(redisLog *RedisQueryLog) docmodel.QueryLogStore {
	if redisLog != nil {
		return redisLog
	}
	logx.NewLogger("QueryLog").Warn("Redis is offline, using the in-memory query log")
	return InitInMemoryQueryLog()
}

func TestQueryLog(store *redisStore.Store) *RedisQueryLog {
	return &RedisQueryLog{
		store:  store,
		logger: logx.NewLogger("test querylog"),
	}
}
