package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/productimport/internal/importer"
	"github.com/JonMunkholm/productimport/internal/logging"
	"github.com/JonMunkholm/productimport/internal/rowjson"
)

// progressEvery is how many lines pass between progress log entries.
const progressEvery = 500

// ImportResponse summarizes one import request.
type ImportResponse struct {
	RunID    string      `json:"run_id"`
	Imported int         `json:"imported"`
	Updated  int         `json:"updated"`
	Failed   int         `json:"failed"`
	Results  []RowResult `json:"results"`
}

// RowResult is the outcome of one line. Exactly one of ID or Error is set.
type RowResult struct {
	Line    int       `json:"line"`
	ID      int64     `json:"id,omitempty"`
	Updated bool      `json:"updated,omitempty"`
	Error   *RowIssue `json:"error,omitempty"`
}

// RowIssue describes a failed line.
type RowIssue struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Action      string         `json:"action"`
	SupportCode string         `json:"support_code"`
	Data        map[string]any `json:"data,omitempty"`
}

// handleImport imports an NDJSON body one line at a time. Each line is
// decoded and imported independently; a failed line is reported and the
// next line still runs.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.acquire(r.Context()); err != nil {
		w.Header().Set("Retry-After", "30")
		s.respondError(w, r, err, http.StatusTooManyRequests)
		return
	}
	defer s.limiter.release()

	runID := uuid.NewString()
	logger := logging.WithFields(r.Context(), "run_id", runID)

	body := http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxBodySize)
	size := r.ContentLength
	if size < 0 {
		size = 0
	}
	reader := rowjson.NewReader(body, size)
	imp := s.deps.NewImporter(reader, logger)

	resp := ImportResponse{RunID: runID, Results: []RowResult{}}
	logger.Info("import started", "bytes", size)

	for {
		if err := r.Context().Err(); err != nil {
			logger.Warn("import aborted", "error", err, "lines", len(resp.Results))
			return
		}

		line, data, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.respondError(w, r, errors.Join(errBodyTooLarge, err), http.StatusRequestEntityTooLarge)
				return
			}
			s.respondError(w, r, errors.Join(errReadBody, err), http.StatusBadRequest)
			return
		}

		result := RowResult{Line: line}
		res, err := s.importLine(r, imp, data)
		switch {
		case err != nil:
			result.Error = rowIssue(err)
			resp.Failed++
		case res.Updated:
			result.ID, result.Updated = res.ID, true
			resp.Updated++
		default:
			result.ID = res.ID
			resp.Imported++
		}
		resp.Results = append(resp.Results, result)

		if len(resp.Results)%progressEvery == 0 {
			logger.Info("import progress", "lines", len(resp.Results), "percent", imp.PercentComplete())
		}
	}

	logger.Info("import finished",
		"imported", resp.Imported,
		"updated", resp.Updated,
		"failed", resp.Failed,
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) importLine(r *http.Request, imp RowImporter, data []byte) (importer.Result, error) {
	row, err := rowjson.DecodeRow(data)
	if err != nil {
		return importer.Result{}, decodeError(err)
	}
	return imp.ImportRow(r.Context(), row)
}

// decodeError reports a line that could not be decoded as a validation
// failure of that line.
func decodeError(err error) *importer.RowError {
	re := &importer.RowError{
		Code:    importer.CodeValidation,
		Message: err.Error(),
		Err:     err,
	}
	var fe *rowjson.FieldError
	if errors.As(err, &fe) {
		re.Data = map[string]any{fe.Field: fe.Value}
	}
	return re
}

func rowIssue(err error) *RowIssue {
	var re *importer.RowError
	if !errors.As(err, &re) {
		re = &importer.RowError{Code: importer.CodeUnknown, Message: err.Error()}
	}
	msg := importer.MapError(re)
	return &RowIssue{
		Code:        string(re.Code),
		Message:     re.Error(),
		Action:      msg.Action,
		SupportCode: msg.Code,
		Data:        re.Data,
	}
}
