package log

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const RequestIdHeader = "X-Request-Id"

type requestIdKey struct{}

// RequestId returns the id assigned to the request by the logging handler
func RequestId(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey{}).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type loggingHandler struct {
	handler http.Handler
	logger  Logger
}

// NewLoggingHandler logs every request once it has been served. Requests are tagged with the
// incoming X-Request-Id header or a new random id, which is also echoed in the response.
func NewLoggingHandler(handler http.Handler, logger Logger) http.Handler {
	return &loggingHandler{handler: handler, logger: logger}
}

func (h *loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(RequestIdHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(RequestIdHeader, id)

	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.handler.ServeHTTP(recorder, r.WithContext(context.WithValue(r.Context(), requestIdKey{}, id)))

	h.logger.Info("request served",
		"method", r.Method,
		"path", r.URL.Path,
		"status", recorder.status,
		"duration", time.Since(start),
		"requestId", id)
}
