package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/data/redisStore"
	"github.com/skandula/ragserve/internal/data/store"
	"github.com/skandula/ragserve/internal/domain/docmodel"
)

func TestRedisQueryLog_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	queryLog := store.TestQueryLog(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	recordId := "query_abc_123"

	faithfulness := 0.9
	testRecord := docmodel.QueryRecord{
		Id:       recordId,
		Question: "How do I mock Redis?",
		Answer:   "With miniredis.",
		Sources: []docmodel.SearchHit{
			{Content: "miniredis runs an in-process server", Score: 0.8},
		},
		Evaluation: &docmodel.Evaluation{Faithfulness: &faithfulness},
		CreatedAt:  time.Now().UTC(),
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := queryLog.SaveRecord(ctx, testRecord); err != nil {
			t.Fatalf("SaveRecord failed: %v", err)
		}

		retrieved, found := queryLog.GetRecord(ctx, recordId)
		if !found {
			t.Fatal("Record was saved but not found in Redis")
		}

		if retrieved.Question != testRecord.Question {
			t.Errorf("Data mismatch! Got %s, want %s", retrieved.Question, testRecord.Question)
		}
		if len(retrieved.Sources) != 1 || retrieved.Sources[0].Score != 0.8 {
			t.Errorf("Sources did not survive the roundtrip: %+v", retrieved.Sources)
		}
		if retrieved.Evaluation == nil || *retrieved.Evaluation.Faithfulness != 0.9 {
			t.Errorf("Evaluation did not survive the roundtrip: %+v", retrieved.Evaluation)
		}
	})

	t.Run("Record Expires With TTL", func(t *testing.T) {
		mr.FastForward(config.RedisQueryLogTTL + time.Minute)

		_, found := queryLog.GetRecord(ctx, recordId)
		if found {
			t.Error("Record should have expired")
		}
	})

	t.Run("Get Non-Existent Record", func(t *testing.T) {
		_, found := queryLog.GetRecord(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Record", func(t *testing.T) {
		if err := queryLog.SaveRecord(ctx, testRecord); err != nil {
			t.Fatalf("SaveRecord failed: %v", err)
		}
		queryLog.DeleteRecord(ctx, recordId)

		if mr.Exists(recordId) {
			t.Error("Record still exists in Redis after DeleteRecord call")
		}
	})
}

func TestRedisQueryLog_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	queryLog := store.TestQueryLog(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	record := docmodel.QueryRecord{Id: "race-record"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = queryLog.SaveRecord(ctx, record)
			_, _ = queryLog.GetRecord(ctx, "race-record")
		}()
	}
}

func TestQueryLogOrFallback_NilRedisStore(t *testing.T) {
	var offline *store.RedisQueryLog // what GetRedisQueryLog returns when redis is offline

	queryLog := store.QueryLogOrFallback(offline)
	if queryLog == nil {
		t.Fatal("fallback must never yield a nil store")
	}
	if _, ok := queryLog.(*store.InMemoryQueryLog); !ok {
		t.Fatalf("expected the in-memory fallback, got %T", queryLog)
	}

	// the fallback must actually serve requests, not just exist
	ctx := context.Background()
	if err := queryLog.SaveRecord(ctx, docmodel.QueryRecord{Id: "fb-1", Answer: "a"}); err != nil {
		t.Fatalf("SaveRecord on fallback failed: %v", err)
	}
	if got, found := queryLog.GetRecord(ctx, "fb-1"); !found || got.Answer != "a" {
		t.Errorf("GetRecord on fallback got (%+v, %v)", got, found)
	}
}

func TestNewQueryLog_RedisOfflineAtStartup(t *testing.T) {
	// nothing listens on port 1, so the startup ping fails fast
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")

	queryLog := store.NewQueryLog(context.Background())
	if queryLog == nil {
		t.Fatal("NewQueryLog must never return nil")
	}

	ctx := context.Background()
	if err := queryLog.SaveRecord(ctx, docmodel.QueryRecord{Id: "offline-1", Question: "q"}); err != nil {
		t.Fatalf("SaveRecord failed with redis offline: %v", err)
	}
	if got, found := queryLog.GetRecord(ctx, "offline-1"); !found || got.Question != "q" {
		t.Errorf("GetRecord got (%+v, %v)", got, found)
	}
}

func TestInMemoryQueryLog(t *testing.T) {
	queryLog := store.InitInMemoryQueryLog()
	ctx := context.Background()

	record := docmodel.QueryRecord{Id: "mem-1", Question: "q", Answer: "a"}
	if err := queryLog.SaveRecord(ctx, record); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	got, found := queryLog.GetRecord(ctx, "mem-1")
	if !found || got.Answer != "a" {
		t.Fatalf("GetRecord got (%+v, %v)", got, found)
	}

	queryLog.DeleteRecord(ctx, "mem-1")
	if _, found := queryLog.GetRecord(ctx, "mem-1"); found {
		t.Error("Record still present after delete")
	}
}
