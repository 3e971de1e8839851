package web

// errors.go provides unified error response handling for the web layer.
//
// Request-level failures (oversized body, unreadable stream) are logged with
// the request id and returned as a JSON ErrorResponse. Row-level failures
// never fail the request; they are reported per line in the import result.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/productimport/internal/importer"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errReadBody     = errors.New("request body could not be read")
	errDatabaseDown = errors.New("database unavailable")
)

var requestMessages = map[error]importer.UserMessage{
	errBodyTooLarge: {
		Message: "The import file is too large",
		Action:  "Split the file into smaller batches and import them separately",
		Code:    "REQ001",
	},
	errReadBody: {
		Message: "The import file could not be read",
		Action:  "Check the connection and retry the upload",
		Code:    "REQ002",
	},
	errTooManyImports: {
		Message: "Too many imports are running",
		Action:  "Wait for a running import to finish and try again",
		Code:    "REQ004",
	},
	errDatabaseDown: {
		Message: "The product database is unavailable",
		Action:  "Please try again shortly",
		Code:    "REQ003",
	},
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// mapRequestError converts a request-level error to a user-friendly message.
func mapRequestError(err error) importer.UserMessage {
	for target, msg := range requestMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return importer.MapError(err)
}

// respondError logs the technical error server-side and writes a
// user-friendly JSON error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := mapRequestError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
