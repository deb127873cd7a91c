package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/depexplain/depexplain/pkg/buildinfo"
	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/history"
	"github.com/depexplain/depexplain/pkg/pipeline"
	"github.com/depexplain/depexplain/pkg/report"
)

// analyzeRequest is the JSON body of POST /api/v1/analyze.
type analyzeRequest struct {
	Content   string `json:"content"`
	Input     string `json:"input"`
	NoExplain bool   `json:"no_explain"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleAnalyze accepts a requirements document as JSON, a multipart file
// upload, or a raw text body, runs the pipeline, and returns the stored
// report.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := s.readAnalyzeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rep := report.New(result)
	if err := s.store.Save(r.Context(), rep); err != nil {
		s.logger.Error("saving report", "id", rep.ID, "err", err)
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) readAnalyzeRequest(r *http.Request) (pipeline.Options, error) {
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "application/json"):
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return pipeline.Options{}, dperrors.Wrap(dperrors.ErrCodeInvalidInput, err, "invalid JSON body")
		}
		return pipeline.Options{Content: req.Content, Input: req.Input, NoExplain: req.NoExplain}, nil

	case strings.HasPrefix(contentType, "multipart/form-data"):
		file, header, err := r.FormFile("file")
		if err != nil {
			return pipeline.Options{}, dperrors.Wrap(dperrors.ErrCodeInvalidInput, err, "missing file field")
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxRequestSize))
		if err != nil {
			return pipeline.Options{}, dperrors.Wrap(dperrors.ErrCodeInvalidInput, err, "reading upload")
		}
		return pipeline.Options{Content: string(data), Input: header.Filename}, nil

	default:
		data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
		if err != nil {
			return pipeline.Options{}, dperrors.Wrap(dperrors.ErrCodeInvalidInput, err, "reading body")
		}
		return pipeline.Options{Content: string(data)}, nil
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, dperrors.New(dperrors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, dperrors.New(dperrors.ErrCodeInvalidInput, "invalid report id"))
		return
	}

	rep, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, dperrors.New(dperrors.ErrCodeInvalidInput, "invalid report id"))
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.table.Rules())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var resp errorResponse
	resp.Error.Code = string(dperrors.GetCode(err))
	resp.Error.Message = dperrors.UserMessage(err)
	writeJSON(w, statusFor(err), resp)
}

func statusFor(err error) int {
	switch dperrors.GetCode(err) {
	case dperrors.ErrCodeInvalidInput, dperrors.ErrCodeInvalidRule, dperrors.ErrCodeInvalidSpecifier, dperrors.ErrCodeInvalidFormat, dperrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case dperrors.ErrCodeNotFound, dperrors.ErrCodeReportNotFound, dperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case dperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case dperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case dperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
