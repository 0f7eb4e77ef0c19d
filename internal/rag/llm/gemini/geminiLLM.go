package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/rag/llm"
	"github.com/skandula/ragserve/pkg/logx"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var (
	logger       *logx.Logger
	geminiClient *llmClient
	once         sync.Once
)

func GetGeminiClient(ctx context.Context, apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, apikey string, modelName string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Debug("Gemini " + modelName + " client created")
		logger.Info("Gemini client created")
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	return c.Complete(ctx, "", llm.SystemInstruction, llm.BuildPrompt(question, contexts))
}

func (c *llmClient) Complete(ctx context.Context, modelOverride string, system string, user string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	model := c.modelName
	if modelOverride != "" {
		model = modelOverride
	}

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(user), contentConfig)
	if err != nil {
		log.Error("Error generating content", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("empty response from gemini")
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llmc *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llmc.client = nil
	llmc.modelName = ""
}
