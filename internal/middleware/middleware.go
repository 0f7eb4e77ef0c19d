package middleware

import (
	"net/http"
	"strconv"

	"github.com/skandula/ragserve/internal/handlers"
	"github.com/skandula/ragserve/internal/metrics"
	"github.com/skandula/ragserve/pkg/logx"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logx.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var UploadDocumentHandler = Wrap(handlers.UploadDocumentHandler)
var CollectionInfoHandler = Wrap(handlers.CollectionInfoHandler)
var DeleteCollectionHandler = Wrap(handlers.DeleteCollectionHandler)

var QueryHandler = Wrap(handlers.QueryHandler)
var GetQueryRecordHandler = Wrap(handlers.GetQueryRecordHandler)
var HealthHandler = Wrap(handlers.HealthHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logx.NewLogger("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop here if rate limit fails
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop if auth fails
	}

	return re
}
