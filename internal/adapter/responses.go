package adapter

import (
	"github.com/skandula/ragserve/internal/api"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
)

func ToUploadResponse(filename string, chunksCreated int, documentIds []string) api.DocumentUploadResponse {
	return api.DocumentUploadResponse{
		Message:       "Document uploaded and processed successfully.",
		Filename:      filename,
		ChunksCreated: chunksCreated,
		DocumentIds:   documentIds,
	}
}

// ToSourceDocuments truncates chunk content for the wire the way the UI
// expects it: 500 characters plus an ellipsis.
func ToSourceDocuments(hits []docmodel.SearchHit) []api.SourceDocument {
	if len(hits) == 0 {
		return nil
	}
	sources := make([]api.SourceDocument, len(hits))
	for i, h := range hits {
		content := h.Content
		if len(content) > config.SourceSnippetLimit {
			content = content[:config.SourceSnippetLimit] + "..."
		}
		sources[i] = api.SourceDocument{
			Content:  content,
			Score:    h.Score,
			Metadata: h.Metadata,
		}
	}
	return sources
}

func ToEvaluationResult(evaluation *docmodel.Evaluation) *api.EvaluationResult {
	if evaluation == nil {
		return nil
	}
	return &api.EvaluationResult{
		Faithfulness:     evaluation.Faithfulness,
		AnswerRelevancy:  evaluation.AnswerRelevancy,
		EvaluationTimeMs: evaluation.EvaluationTimeMs,
		Error:            evaluation.Error,
	}
}

func ToQueryResponse(record docmodel.QueryRecord) api.QueryResponse {
	return api.QueryResponse{
		Id:         record.Id,
		Question:   record.Question,
		Answer:     record.Answer,
		Sources:    ToSourceDocuments(record.Sources),
		Evaluation: ToEvaluationResult(record.Evaluation),
		Cached:     record.Cached,
	}
}

func BadRequest(detail string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:   code,
		Detail: detail,
	}
}
