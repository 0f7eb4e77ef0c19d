package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/metrics"
)

// SubmitAndWait queues an evaluation on the pool and waits for the verdict up
// to the given timeout. A timeout degrades to null scores plus an error string
// so the answer request itself still succeeds.
func SubmitAndWait(ctx context.Context, timeout time.Duration, question string, answer string, contexts []string) docmodel.Evaluation {
	task := Task{
		Question: question,
		Answer:   answer,
		Contexts: contexts,
		Reply:    make(chan docmodel.Evaluation, 1),
	}
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		task.TraceId = traceId
	}

	metrics.IncrementEvalsInQueue()
	select {
	case taskChannel <- task:
	default:
		metrics.DecrementEvalsInQueue()
		return docmodel.Evaluation{Error: "evaluation queue is full"}
	}
	signalDispatcher()

	select {
	case evaluation := <-task.Reply:
		return evaluation
	case <-time.After(timeout):
		return docmodel.Evaluation{Error: "evaluation timed out"}
	case <-ctx.Done():
		return docmodel.Evaluation{Error: ctx.Err().Error()}
	}
}

func signalDispatcher() {
	metrics.StartDispatcherSignalCount()
	select {
	case dispatcherChannel <- true:
	default:
		// dispatcher is already signaled
	}
}

func executeTask(task Task) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, task.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.Get().EvaluationTimeout)
	defer cancel()

	logger.Debug("Processing evaluation task", "traceId", task.TraceId)
	task.Reply <- _evaluator.Evaluate(ctx, task.Question, task.Answer, task.Contexts)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}
