package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coldsend/coldsend/internal/domain"
	"github.com/coldsend/coldsend/internal/middleware"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a domain error as a JSON response. Validation errors
// carry a fields map so the client can mark individual inputs; everything
// else maps its error code to a status via the shared middleware table.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := middleware.ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"status", status,
	}
	if reqID := middleware.GetRequestID(r.Context()); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}

	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	body := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if fields := domain.GetValidationFields(err); len(fields) > 0 {
		body["fields"] = fields
	}

	respondJSON(w, status, body)
}
