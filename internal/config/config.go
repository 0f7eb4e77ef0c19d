package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	CacheSimilarityCutoff       = 0.97

	// must match the vector params of the qdrant collection
	EmbeddingOutputDimensionality int32 = 1536

	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute

	//evaluation task buffer limit
	EvalQueueLimit = 100

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//uploads
	MaxUploadSizeBytes = 32 << 20

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second

	//ingestion
	EmbedBatchSize = 100

	//redis
	RedisQueryLogDB  = 0
	RedisQueryLogTTL = 24 * time.Hour

	//query log retention is bounded by TTL, not count
	SourceSnippetLimit = 500

	FallbackAnswer = "I don't have enough information to answer that question."
)

type Settings struct {
	AppName    string
	ListenAddr string
	LogLevel   string
	LogJSON    bool

	OpenAIAPIKey string
	GoogleAPIKey string
	LLMProvider  string // "openai" or "gemini"

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantUseTLS bool

	CollectionName string
	ChunkSize      int
	ChunkOverlap   int

	LLMModel       string
	LLMTemperature float64
	EmbeddingModel string
	TopKRetrieval  int

	EnableEvaluation  bool
	EvaluationTimeout time.Duration
	EvalLogResults    bool
	EvalLLMModel      string

	RedisAddr     string
	RedisPassword string

	AuthToken string // empty disables bearer auth
}

var (
	settings *Settings
	once     sync.Once
)

// Get loads settings from the environment once and caches them.
// A .env file in the working directory is honored when present.
func Get() *Settings {
	once.Do(func() {
		_ = godotenv.Load()
		settings = &Settings{
			AppName:    "RAG Q&A Service",
			ListenAddr: getEnv("LISTEN_ADDR", ":8000"),
			LogLevel:   getEnv("LOG_LEVEL", "INFO"),
			LogJSON:    getEnvBool("LOG_JSON", false),

			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
			LLMProvider:  getEnv("LLM_PROVIDER", "openai"),

			QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
			QdrantPort:   getEnvInt("QDRANT_PORT", 6334),
			QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),
			QdrantUseTLS: getEnvBool("QDRANT_USE_TLS", false),

			CollectionName: getEnv("COLLECTION_NAME", "rag_documents"),
			ChunkSize:      getEnvInt("CHUNK_SIZE", 1000),
			ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 200),

			LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.0),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			TopKRetrieval:  getEnvInt("TOP_K_RETRIEVAL", 5),

			EnableEvaluation:  getEnvBool("ENABLE_EVALUATION", true),
			EvaluationTimeout: time.Duration(getEnvFloat("EVALUATION_TIMEOUT_SECONDS", 30) * float64(time.Second)),
			EvalLogResults:    getEnvBool("EVALUATION_LOG_RESULTS", true),
			EvalLLMModel:      getEnv("EVAL_LLM_MODEL", ""),

			RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),

			AuthToken: os.Getenv("API_AUTH_TOKEN"),
		}
		if settings.EvalLLMModel == "" {
			settings.EvalLLMModel = settings.LLMModel
		}
	})
	return settings
}

// Validate enforces the chunking invariants before any processing starts.
func (s *Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", s.ChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	if s.TopKRetrieval <= 0 {
		return fmt.Errorf("TOP_K_RETRIEVAL must be positive, got %d", s.TopKRetrieval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
