package docmodel

import (
	"context"
	"time"
)

type DocType string

const (
	PDF DocType = "PDF"
	TXT DocType = "TXT"
	CSV DocType = "CSV"
	ERR DocType = "ERROR"
)

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

type DocChunk struct {
	Doc            Document
	ChunkId        string `json:"chunk_id"`
	Chunk          string `json:"content"`
	PageNum        int    `json:"page_num"`
	ChunkPageOrder int    `json:"chunk_order"`
	EmbeddingModel string `json:"embedding_model"`
}

// SearchHit is one retrieved chunk with its similarity score.
type SearchHit struct {
	Content  string            `json:"content"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// Evaluation carries the answer-quality scores. Nil score pointers plus a
// non-empty Error mean the evaluation step degraded instead of failing the query.
type Evaluation struct {
	Faithfulness     *float64 `json:"faithfulness"`
	AnswerRelevancy  *float64 `json:"answer_relevancy"`
	EvaluationTimeMs *float64 `json:"evaluation_time_ms"`
	Error            string   `json:"error,omitempty"`
}

// QueryRecord is the persisted trace of one answered question.
type QueryRecord struct {
	Id         string      `json:"id"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Sources    []SearchHit `json:"sources,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Cached     bool        `json:"cached"`
	CreatedAt  time.Time   `json:"created_at"`
}

type QueryLogStore interface {
	SaveRecord(ctx context.Context, record QueryRecord) error
	GetRecord(ctx context.Context, id string) (QueryRecord, bool)
	DeleteRecord(ctx context.Context, id string)
}
