package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/metrics"
	"github.com/skandula/ragserve/internal/rag/embedding"
	"github.com/skandula/ragserve/internal/rag/llm"
	"github.com/skandula/ragserve/pkg/logx"
)

const generatedQuestionCount = 3

// Evaluator scores a generated answer with the same hosted LLM and embedding
// clients the pipeline already holds. Faithfulness is the fraction of answer
// statements the judge marks as inferable from the retrieved context; answer
// relevancy is the mean cosine similarity between the original question and
// questions regenerated from the answer.
type Evaluator struct {
	llmProvider llm.Provider
	embedder    embedding.Embedder
	judgeModel  string
	logResults  bool
	logger      *logx.Logger
}

func NewEvaluator(llmp llm.Provider, em embedding.Embedder) *Evaluator {
	cfg := config.Get()
	return &Evaluator{
		llmProvider: llmp,
		embedder:    em,
		judgeModel:  cfg.EvalLLMModel,
		logResults:  cfg.EvalLogResults,
		logger:      logx.NewLogger("Evaluator"),
	}
}

// Evaluate never fails the caller: on any error it returns null scores plus
// the error string so the answer request can still succeed.
func (e *Evaluator) Evaluate(ctx context.Context, question string, answer string, contexts []string) docmodel.Evaluation {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("evaluation", time.Since(start)) }()

	if len(contexts) == 0 {
		return degraded(errors.New("no contexts to evaluate against"))
	}

	faithfulness, err := e.scoreFaithfulness(ctx, answer, contexts)
	if err != nil {
		log.Warn("Faithfulness scoring failed", "error", err)
		return degraded(err)
	}

	relevancy, err := e.scoreAnswerRelevancy(ctx, question, answer)
	if err != nil {
		log.Warn("Answer relevancy scoring failed", "error", err)
		return degraded(err)
	}

	elapsedMs := round2(float64(time.Since(start)) / float64(time.Millisecond))
	if e.logResults {
		log.Info("Evaluation completed",
			"faithfulness", faithfulness,
			"answer_relevancy", relevancy,
			"time_ms", elapsedMs)
	}

	return docmodel.Evaluation{
		Faithfulness:     &faithfulness,
		AnswerRelevancy:  &relevancy,
		EvaluationTimeMs: &elapsedMs,
	}
}

func (e *Evaluator) scoreFaithfulness(ctx context.Context, answer string, contexts []string) (float64, error) {
	prompt := fmt.Sprintf(faithfulnessPrompt, strings.Join(contexts, "\n\n"), answer)

	raw, err := e.llmProvider.Complete(ctx, e.judgeModel, judgeSystemPrompt, prompt)
	if err != nil {
		return 0, fmt.Errorf("faithfulness judge call: %w", err)
	}

	var verdict struct {
		Total     int `json:"total"`
		Supported int `json:"supported"`
	}
	if err := decodeJudgeJSON(raw, &verdict); err != nil {
		return 0, fmt.Errorf("faithfulness verdict parse: %w", err)
	}
	if verdict.Total <= 0 {
		return 0, errors.New("judge returned no statements")
	}
	if verdict.Supported > verdict.Total {
		verdict.Supported = verdict.Total
	}
	return round2(float64(verdict.Supported) / float64(verdict.Total)), nil
}

func (e *Evaluator) scoreAnswerRelevancy(ctx context.Context, question string, answer string) (float64, error) {
	prompt := fmt.Sprintf(relevancyPrompt, generatedQuestionCount, answer)

	raw, err := e.llmProvider.Complete(ctx, e.judgeModel, judgeSystemPrompt, prompt)
	if err != nil {
		return 0, fmt.Errorf("relevancy question generation: %w", err)
	}

	var generated struct {
		Questions []string `json:"questions"`
	}
	if err := decodeJudgeJSON(raw, &generated); err != nil {
		return 0, fmt.Errorf("relevancy questions parse: %w", err)
	}
	if len(generated.Questions) == 0 {
		return 0, errors.New("judge generated no questions")
	}

	vectors, err := e.embedder.BatchEmbedding(ctx, append([]string{question}, generated.Questions...))
	if err != nil {
		return 0, fmt.Errorf("relevancy embedding: %w", err)
	}
	if len(vectors) < 2 {
		return 0, errors.New("not enough embeddings for relevancy")
	}

	questionVector := vectors[0]
	var sum float64
	for _, v := range vectors[1:] {
		sum += CosineSimilarity(questionVector, v)
	}
	score := sum / float64(len(vectors)-1)
	// similarity can be slightly negative for unrelated questions; clamp to the score range
	score = math.Max(0, math.Min(1, score))
	return round2(score), nil
}

// decodeJudgeJSON tolerates judges that wrap their JSON in prose or fences.
func decodeJudgeJSON(raw string, target any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return errors.New("no JSON object in judge response")
	}
	return json.Unmarshal([]byte(raw[start:end+1]), target)
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func degraded(err error) docmodel.Evaluation {
	return docmodel.Evaluation{Error: err.Error()}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
