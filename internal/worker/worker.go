package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/metrics"
	"github.com/skandula/ragserve/internal/rag/evaluate"
	"github.com/skandula/ragserve/pkg/logx"
)

// Task is one evaluation request offloaded from a request handler. Reply is
// buffered so a worker never blocks on a handler that already timed out.
type Task struct {
	TraceId  string
	Question string
	Answer   string
	Contexts []string
	Reply    chan docmodel.Evaluation
}

var (
	taskChannel        chan Task
	dispatcherChannel  chan bool
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	logger             *logx.Logger
	_evaluator         *evaluate.Evaluator
)

func InitServices(evaluator *evaluate.Evaluator) {
	_evaluator = evaluator
	taskChannel = make(chan Task, config.EvalQueueLimit)
	dispatcherChannel = make(chan bool, 1)
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logx.NewLogger("WorkerPool")
	logger.Info("Initializing evaluation worker pool")
	go dispatcher()
}

func dispatcher() {
	createWorker()
	logger.Info("Dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
			logger.Info("Creating new worker", "WorkerCount :", atomic.LoadInt64(&currentWorkerCount))
			createWorker()
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	go worker()
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	logger.Info("Created new worker")
}

func worker() {
	for {
		select {
		case task := <-taskChannel:
			executeTask(task)
			metrics.DecrementEvalsInQueue()

		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return

		case <-time.After(config.IdleWorkerTimeout):
			// idle for too long, retire unless this is the last worker
			if atomic.LoadInt64(&currentWorkerCount) > config.MinWorkerCount {
				removeWorker("Idle worker timeout")
				return
			}
		}
	}
}
