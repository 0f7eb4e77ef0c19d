package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/skandula/ragserve/internal/adapter"
	"github.com/skandula/ragserve/internal/adapter/utils"
	"github.com/skandula/ragserve/internal/api"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/worker"
)

// QueryHandler godoc
// @Summary      Answer a question from the ingested documents
// @Description  Embeds the question, retrieves the most similar chunks and generates a grounded answer. Optionally scores the answer for faithfulness and relevancy.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body  api.QueryRequest  true  "The question to answer"
// @Success      200  {object}  api.QueryResponse
// @Failure      400  {object}  api.ErrorResponse "Empty or malformed question"
// @Failure      500  {object}  api.ErrorResponse "Pipeline error"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}
	cfg := config.Get()

	var request api.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Question = strings.TrimSpace(request.Question)
	if request.Question == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "Question must not be empty")
		return
	}

	topK := request.TopK
	if topK <= 0 {
		topK = cfg.TopKRetrieval
	}

	result, err := ragService.Query(r.Context(), request.Question, topK)
	if err != nil {
		logRH.Error("Query pipeline failed", "traceId", traceIdFrom(r.Context()), "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error during query")
		return
	}

	record := docmodel.QueryRecord{
		Id:        utils.GetNewUUID(),
		Question:  result.Question,
		Answer:    result.Answer,
		Cached:    result.Cached,
		CreatedAt: time.Now().UTC(),
	}
	if request.IncludeSources == nil || *request.IncludeSources {
		record.Sources = result.Sources
	}

	if shouldEvaluate(request, cfg) {
		if result.Cached {
			record.Evaluation = &docmodel.Evaluation{Error: "evaluation skipped for cached answer"}
		} else {
			contexts := make([]string, len(result.Sources))
			for i, hit := range result.Sources {
				contexts[i] = hit.Content
			}
			evaluation := worker.SubmitAndWait(r.Context(), cfg.EvaluationTimeout,
				result.Question, result.Answer, contexts)
			record.Evaluation = &evaluation
		}
	}

	if queryLog != nil {
		if err := queryLog.SaveRecord(r.Context(), record); err != nil {
			// answer is still good, losing the record only breaks later lookup
			logRH.Warn("Could not save query record", "record Id", record.Id, "error", err)
		}
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(record))
}

func shouldEvaluate(request api.QueryRequest, cfg *config.Settings) bool {
	if !cfg.EnableEvaluation {
		return false
	}
	if request.IncludeEvaluation == nil {
		return true
	}
	return *request.IncludeEvaluation
}

// GetQueryRecordHandler godoc
// @Summary      Fetch a previously answered query
// @Description  Returns the stored answer, sources and evaluation for a query id.
// @Tags         Query
// @Produce      json
// @Param        id   path  string  true  "Query record id"
// @Success      200  {object}  api.QueryResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /queries/{id} [get]
func GetQueryRecordHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	recordId := utils.GetChiURLParam(r, "id")
	if recordId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "Query id is required")
		return
	}

	if queryLog == nil {
		WriteErrorResponse(w, http.StatusNotFound, "Query record not found")
		return
	}

	record, found := queryLog.GetRecord(r.Context(), recordId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Query record not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(record))
}

// HealthHandler godoc
// @Summary      Liveness and dependency health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /healthz [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	response := api.HealthResponse{Status: "ok", VectorStore: "healthy"}
	statusCode := http.StatusOK
	if !ragService.Healthy(r.Context()) {
		response.Status = "degraded"
		response.VectorStore = "unreachable"
		statusCode = http.StatusServiceUnavailable
	}
	writeJsonResponse(w, statusCode, response)
}
