package worker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skandula/ragserve/internal/rag/evaluate"
)

type mockJudge struct {
	calls int32
}

func (m *mockJudge) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	return "", nil
}

func (m *mockJudge) Complete(ctx context.Context, model string, system string, user string) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	if strings.Contains(user, `"supported"`) {
		return `{"total": 2, "supported": 2}`, nil
	}
	return `{"questions": ["q1", "q2"]}`, nil
}

type mockEmbedder struct{}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func TestWorkerPool_Flow(t *testing.T) {
	judge := &mockJudge{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(evaluate.NewEvaluator(judge, &mockEmbedder{}))
	InitWorkerPool(stopChan, wg)

	t.Run("Evaluation task round trips through a worker", func(t *testing.T) {
		evaluation := SubmitAndWait(context.Background(), 5*time.Second,
			"what is go", "a programming language", []string{"go is a programming language"})

		if evaluation.Error != "" {
			t.Fatalf("unexpected evaluation error: %s", evaluation.Error)
		}
		if evaluation.Faithfulness == nil || *evaluation.Faithfulness != 1.0 {
			t.Errorf("Faithfulness got %v, want 1.0", evaluation.Faithfulness)
		}
		if atomic.LoadInt32(&judge.calls) != 2 {
			t.Errorf("Expected 2 judge calls, got %d", judge.calls)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestSubmitAndWait_QueueFull(t *testing.T) {
	// unbuffered channel with nobody reading simulates a saturated queue
	taskChannel = make(chan Task)
	dispatcherChannel = make(chan bool, 1)

	evaluation := SubmitAndWait(context.Background(), time.Second, "q", "a", []string{"ctx"})
	if evaluation.Error != "evaluation queue is full" {
		t.Errorf("Error got %q, want queue full", evaluation.Error)
	}
}

func TestSubmitAndWait_Timeout(t *testing.T) {
	// buffered channel with no worker draining it
	taskChannel = make(chan Task, 1)
	dispatcherChannel = make(chan bool, 1)

	evaluation := SubmitAndWait(context.Background(), 50*time.Millisecond, "q", "a", []string{"ctx"})
	if evaluation.Error != "evaluation timed out" {
		t.Errorf("Error got %q, want timeout", evaluation.Error)
	}
}

func TestSubmitAndWait_ContextCancelled(t *testing.T) {
	taskChannel = make(chan Task, 1)
	dispatcherChannel = make(chan bool, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluation := SubmitAndWait(ctx, time.Second, "q", "a", []string{"ctx"})
	if evaluation.Error == "" {
		t.Error("Expected an error for a cancelled context")
	}
}
