package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/apperr"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *MetaInfo  `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo carries request metadata.
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"`
}

// respondJSON encodes data before writing the status line, so a value that
// cannot be encoded turns into a logged 500 instead of a 2xx with no body.
func respondJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, data any) {
	body, err := json.Marshal(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta(r),
	})
	if err != nil {
		logger.Error("encoding response",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respondStatus(w, r, http.StatusInternalServerError, string(apperr.KindInternal), "internal error")
		return
	}
	write(w, status, body)
}

func respondStatus(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	// Only strings: this cannot fail to encode.
	body, _ := json.Marshal(APIResponse{
		Error: &ErrorInfo{Code: code, Message: message},
		Meta:  meta(r),
	})
	write(w, status, body)
}

// respondError maps err to a status and error code. Internal errors are
// logged and their details withheld from the client.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	code := string(apperr.KindOf(err))
	message := err.Error()

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		code = string(apperr.KindInternal)
		message = "internal error"
	}
	respondStatus(w, r, status, code, message)
}

func meta(r *http.Request) *MetaInfo {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		return nil
	}
	return &MetaInfo{RequestID: id}
}

func write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
