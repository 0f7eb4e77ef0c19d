package openaiLLM

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/rag/llm"
	"github.com/skandula/ragserve/pkg/logx"
)

type llmClient struct {
	api         openai.Client
	modelName   string
	temperature float64
}

var (
	logger       *logx.Logger
	openaiClient *llmClient
	once         sync.Once
)

func GetOpenAIClient(ctx context.Context, apikey string, modelName string, temperature float64) llm.Provider {
	once.Do(func() {
		logger = logx.NewLogger("llm_openai")
		newOpenAIClient(apikey, modelName, temperature)
	})

	if openaiClient == nil {
		return nil
	}
	return &llmClient{api: openaiClient.api, modelName: openaiClient.modelName, temperature: openaiClient.temperature}
}

func newOpenAIClient(apikey string, modelName string, temperature float64) {
	if apikey == "" {
		logger.Error("OPENAI_API_KEY is not set")
		return
	}
	openaiClient = &llmClient{
		api:         openai.NewClient(option.WithAPIKey(apikey)),
		modelName:   modelName,
		temperature: temperature,
	}
	logger.Debug("OpenAI " + modelName + " client created")
	logger.Info("OpenAI chat client created")
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

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		log.Error("Error generating completion", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned from completion")
	}
	return resp.Choices[0].Message.Content, nil
}
