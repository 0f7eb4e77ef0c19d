package openaiEmbedding

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/rag/embedding"
	"github.com/skandula/ragserve/pkg/logx"
)

var (
	logger          *logx.Logger
	once            sync.Once
	embeddingClient *client
	dimension       = int64(config.EmbeddingOutputDimensionality)
)

type client struct {
	api   openai.Client
	model string
}

func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logx.NewLogger("openai_embedding")
		newOpenAIEmbedder(ctx, modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return &client{api: embeddingClient.api, model: embeddingClient.model}
}

func newOpenAIEmbedder(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OPENAI_API_KEY is not set")
		return
	}
	embeddingClient = &client{
		api:   openai.NewClient(option.WithAPIKey(apikey)),
		model: modelName,
	}
	logger.Debug("OpenAI embedding model name: " + modelName)
	logger.Info("OpenAI embedding client created")
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("embedding query")

	vectors, err := c.doCall(ctx, []string{query})
	if err != nil {
		log.Error("Error getting embedding from OpenAI", "error", err.Error())
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Debug("embedding batch", "size", len(chunks))

	vectors, err := c.doCall(ctx, chunks)
	if err != nil {
		log.Error("Error getting batch embeddings from OpenAI", "error", err.Error())
		return nil, err
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(dimension),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		vectors[i] = v
	}
	return vectors, nil
}
