package evaluate

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/skandula/ragserve/pkg/logx"
)

type mockProvider struct {
	onComplete func(ctx context.Context, model string, system string, user string) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	return "", nil
}
func (m *mockProvider) Complete(ctx context.Context, model string, system string, user string) (string, error) {
	return m.onComplete(ctx, model, system, user)
}

type mockEmbedder struct {
	onBatch func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return m.onBatch(ctx, chunks)
}

// judge that answers both prompts: the faithfulness prompt mentions a context,
// the relevancy prompt asks for generated questions
func happyJudge(faithfulnessJSON string, questionsJSON string) *mockProvider {
	return &mockProvider{
		onComplete: func(ctx context.Context, model string, system string, user string) (string, error) {
			if strings.Contains(user, `"supported"`) {
				return faithfulnessJSON, nil
			}
			return questionsJSON, nil
		},
	}
}

func identicalEmbedder() *mockEmbedder {
	return &mockEmbedder{
		onBatch: func(ctx context.Context, chunks []string) ([][]float32, error) {
			vectors := make([][]float32, len(chunks))
			for i := range vectors {
				vectors[i] = []float32{1, 0, 0}
			}
			return vectors, nil
		},
	}
}

func testEvaluator(p *mockProvider, e *mockEmbedder) *Evaluator {
	return &Evaluator{
		llmProvider: p,
		embedder:    e,
		judgeModel:  "judge-model",
		logger:      logx.NewLogger("EvaluatorTest"),
	}
}

func TestEvaluate_Success(t *testing.T) {
	judge := happyJudge(
		`{"total": 4, "supported": 3}`,
		`{"questions": ["q1", "q2", "q3"]}`,
	)

	e := testEvaluator(judge, identicalEmbedder())
	result := e.Evaluate(context.Background(), "question", "answer", []string{"context"})

	if result.Error != "" {
		t.Fatalf("unexpected evaluation error: %s", result.Error)
	}
	if result.Faithfulness == nil || *result.Faithfulness != 0.75 {
		t.Errorf("Faithfulness got %v, want 0.75", result.Faithfulness)
	}
	if result.AnswerRelevancy == nil || *result.AnswerRelevancy != 1.0 {
		t.Errorf("AnswerRelevancy got %v, want 1.0", result.AnswerRelevancy)
	}
	if result.EvaluationTimeMs == nil {
		t.Error("EvaluationTimeMs must be set on success")
	}
}

func TestEvaluate_NoContexts(t *testing.T) {
	e := testEvaluator(happyJudge(`{}`, `{}`), identicalEmbedder())
	result := e.Evaluate(context.Background(), "q", "a", nil)

	if result.Error == "" {
		t.Fatal("expected degraded result without contexts")
	}
	if result.Faithfulness != nil || result.AnswerRelevancy != nil {
		t.Error("degraded result must carry null scores")
	}
}

func TestEvaluate_JudgeFailureDegrades(t *testing.T) {
	judge := &mockProvider{
		onComplete: func(ctx context.Context, model string, system string, user string) (string, error) {
			return "", errors.New("judge offline")
		},
	}
	e := testEvaluator(judge, identicalEmbedder())

	result := e.Evaluate(context.Background(), "q", "a", []string{"ctx"})
	if result.Error == "" {
		t.Fatal("expected degraded result when judge is down")
	}
}

func TestEvaluate_GarbageVerdictDegrades(t *testing.T) {
	judge := happyJudge("the answer looks fine to me", `{"questions": ["q"]}`)
	e := testEvaluator(judge, identicalEmbedder())

	result := e.Evaluate(context.Background(), "q", "a", []string{"ctx"})
	if result.Error == "" {
		t.Fatal("expected degraded result on unparseable verdict")
	}
}

func TestScoreFaithfulness_ClampsSupported(t *testing.T) {
	judge := happyJudge(`{"total": 2, "supported": 5}`, `{}`)
	e := testEvaluator(judge, identicalEmbedder())

	score, err := e.scoreFaithfulness(context.Background(), "a", []string{"ctx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1.0 {
		t.Errorf("score got %v, want clamped 1.0", score)
	}
}

func TestDecodeJudgeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"plain", `{"total": 1, "supported": 1}`, false},
		{"fenced", "```json\n{\"total\": 1, \"supported\": 1}\n```", false},
		{"prose wrapped", `Sure! Here you go: {"total": 2, "supported": 1} Hope that helps.`, false},
		{"no json", "I cannot evaluate this.", true},
		{"broken json", `{"total": `, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verdict struct {
				Total     int `json:"total"`
				Supported int `json:"supported"`
			}
			err := decodeJudgeJSON(tt.raw, &verdict)
			if (err != nil) != tt.wantErr {
				t.Errorf("decodeJudgeJSON(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched length", []float32{1}, []float32{1, 2}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if round2(0.666666) != 0.67 {
		t.Errorf("round2(0.666666) = %v", round2(0.666666))
	}
	if round2(1.0) != 1.0 {
		t.Errorf("round2(1.0) = %v", round2(1.0))
	}
}
