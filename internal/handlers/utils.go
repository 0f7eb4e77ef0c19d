package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/skandula/ragserve/internal/adapter"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/rag"
	"github.com/skandula/ragserve/pkg/logx"
)

var (
	ragService rag.Service
	queryLog   docmodel.QueryLogStore
	logRH      *logx.Logger
	once       sync.Once
)

func Init(service rag.Service, log docmodel.QueryLogStore) {
	once.Do(func() {
		ragService = service
		queryLog = log
		logRH = logx.NewLogger("RequestHandler")
		logRH.Info("Starting request handlers")
	})
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// can't send a clean status code anymore, just log
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, detail string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(detail, httpCode))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

func traceIdFrom(ctx context.Context) string {
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return traceId
	}
	return ""
}
