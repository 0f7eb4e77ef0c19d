// @title           RAG Serve API
// @version         1.0
// @description     Document ingestion and retrieval-augmented question answering over a Qdrant vector store.
// @termsOfService  http://swagger.io/terms/

// @contact.name    skandula

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/data/store"
	"github.com/skandula/ragserve/internal/handlers"
	"github.com/skandula/ragserve/internal/rag"
	"github.com/skandula/ragserve/internal/rag/embedding"
	"github.com/skandula/ragserve/internal/rag/embedding/googleEmbedding"
	"github.com/skandula/ragserve/internal/rag/embedding/openaiEmbedding"
	"github.com/skandula/ragserve/internal/rag/evaluate"
	"github.com/skandula/ragserve/internal/rag/llm"
	"github.com/skandula/ragserve/internal/rag/llm/gemini"
	"github.com/skandula/ragserve/internal/rag/llm/openaiLLM"
	"github.com/skandula/ragserve/internal/rag/vectorDB/qdrantDB"
	"github.com/skandula/ragserve/internal/server"
	"github.com/skandula/ragserve/internal/worker"
	"github.com/skandula/ragserve/pkg/logx"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	cfg := config.Get()
	logx.Init(cfg.LogLevel, cfg.LogJSON)
	var logger = logx.NewLogger("main")

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	var embeddingService embedding.Embedder
	var llmProvider llm.Provider
	switch cfg.LLMProvider {
	case "gemini":
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, cfg.EmbeddingModel, cfg.GoogleAPIKey)
		llmProvider = gemini.GetGeminiClient(serviceContext, cfg.GoogleAPIKey, cfg.LLMModel)
	default:
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, cfg.EmbeddingModel, cfg.OpenAIAPIKey)
		llmProvider = openaiLLM.GetOpenAIClient(serviceContext, cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTemperature)
	}

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		os.Exit(1)
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService)

	queryLog := store.NewQueryLog(serviceContext)

	handlers.Init(ragService, queryLog)

	//init evaluation worker pool
	worker.InitServices(evaluate.NewEvaluator(llmProvider, embeddingService))
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
