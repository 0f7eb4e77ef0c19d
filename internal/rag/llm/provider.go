package llm

import (
	"context"
	"fmt"
	"strings"
)

type Provider interface {
	// Generate answers a question grounded on the retrieved context chunks.
	Generate(ctx context.Context, question string, contexts []string) (string, error)
	// Complete is a raw completion with a caller-supplied prompt; modelOverride
	// empty means the provider's configured model. The evaluator rides this.
	Complete(ctx context.Context, modelOverride string, system string, user string) (string, error)
}

const SystemInstruction = "You are a helpful assistant. Answer the question based on the provided context.\n\n" +
	"If you cannot answer the question based on the context, say \"I don't have enough information to answer that question.\"\n\n" +
	"Do not make up information. Only use the context provided."

// BuildPrompt assembles the retrieval-augmented user prompt shared by all providers.
func BuildPrompt(question string, contexts []string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer:", strings.Join(contexts, "\n\n"), question)
}
