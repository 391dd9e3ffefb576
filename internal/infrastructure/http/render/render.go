// Package render writes JSON bodies and error envelopes for HTTP handlers
// and middleware.
package render

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/pkg/errors"
)

// JSON writes body with status
func JSON(w http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"Failed to encode response"}}`,
			http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// NoContent writes a 204
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error renders err as an error envelope. Anything that is not an AppError
// is reported as an internal error; 5xx responses are logged.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Wrap(err, "Internal server error")
	}

	status := appErr.StatusCode()
	requestID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	JSON(w, status, errors.ToErrorResponse(appErr, requestID))
}
