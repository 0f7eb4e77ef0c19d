package api

// responses---------------------

type DocumentUploadResponse struct {
	Message       string   `json:"message" example:"Document uploaded and processed successfully."`
	Filename      string   `json:"filename" example:"report.pdf"`
	ChunksCreated int      `json:"chunks_created" example:"12"`
	DocumentIds   []string `json:"document_ids"`
}

type DocumentInfoResponse struct {
	CollectionName string `json:"collection_name" example:"rag_documents"`
	TotalDocuments uint64 `json:"total_documents" example:"128"`
	Status         string `json:"status" example:"green"`
}

type DeleteCollectionResponse struct {
	Message string `json:"message" example:"Collection deleted successfully"`
}

type SourceDocument struct {
	Content  string            `json:"content"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

type EvaluationResult struct {
	Faithfulness     *float64 `json:"faithfulness"`
	AnswerRelevancy  *float64 `json:"answer_relevancy"`
	EvaluationTimeMs *float64 `json:"evaluation_time_ms"`
	Error            string   `json:"error,omitempty"`
}

type QueryResponse struct {
	Id         string            `json:"id"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Sources    []SourceDocument  `json:"sources,omitempty"`
	Evaluation *EvaluationResult `json:"evaluation,omitempty"`
	Cached     bool              `json:"cached"`
}

type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	VectorStore string `json:"vector_store" example:"healthy"`
}

type ErrorResponse struct {
	Code   int    `json:"code" example:"400"`
	Detail string `json:"detail" example:"Unsupported file extension"`
}

// requests---------------------

type QueryRequest struct {
	Question string `json:"question" validate:"required"`
	// nil means "use the server defaults"
	IncludeSources    *bool `json:"include_sources,omitempty"`
	IncludeEvaluation *bool `json:"include_evaluation,omitempty"`
	TopK              int   `json:"top_k,omitempty"`
}
