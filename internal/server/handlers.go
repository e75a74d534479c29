package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"skud-compare-api/internal/report"
	"skud-compare-api/internal/skud"
)

// maxUploadBytes bounds one multipart upload held in memory before
// spilling to disk.
const maxUploadBytes = 50 << 20

// compareRequest is the validated multipart input of one comparison.
type compareRequest struct {
	stagingPath string
	from, to    time.Time
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := s.stageRequest(w, r, "compare")
	if !ok {
		return
	}
	defer os.Remove(req.stagingPath)

	result, err := s.pipeline.Run(r.Context(), req.stagingPath, req.from, req.to)
	if err != nil {
		s.writePipelineError(w, "compare", err)
		return
	}
	s.writeJSON(w, "compare", http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		s.writeError(w, "export", http.StatusBadRequest,
			fmt.Sprintf("unsupported export format %q", format))
		return
	}

	req, ok := s.stageRequest(w, r, "export")
	if !ok {
		return
	}
	defer os.Remove(req.stagingPath)

	result, err := s.pipeline.Run(r.Context(), req.stagingPath, req.from, req.to)
	if err != nil {
		s.writePipelineError(w, "export", err)
		return
	}

	var (
		buf         interface{ Bytes() []byte }
		contentType string
	)
	switch format {
	case "xlsx":
		buf, err = report.BuildWorkbook(result)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		buf, err = report.BuildPDF(result)
		contentType = "application/pdf"
	}
	if err != nil {
		s.log.Errorw("export render failed", "format", format, "error", err)
		s.writeError(w, "export", http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("comparison_%s_%s.%s",
		result.Summary.DateRange[0], result.Summary.DateRange[1], format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(buf.Bytes())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
	s.metrics.RequestsTotal.WithLabelValues("export", "200").Inc()
}

// stageRequest validates the multipart form and spools the upload to a
// fresh staging file. Validation order is fixed: file present, .xlsx
// extension, dates present, dates parse, from not after to. On failure it
// writes the error response and returns ok=false. The caller removes the
// staging file.
func (s *Server) stageRequest(w http.ResponseWriter, r *http.Request, endpoint string) (compareRequest, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, endpoint, http.StatusBadRequest, "invalid multipart form")
		return compareRequest{}, false
	}
	file, header, err := r.FormFile("xlsx_file")
	if err != nil {
		s.writeError(w, endpoint, http.StatusBadRequest, "xlsx_file is required")
		return compareRequest{}, false
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		s.writeError(w, endpoint, http.StatusBadRequest, "xlsx_file must be an .xlsx workbook")
		return compareRequest{}, false
	}

	fromRaw := r.FormValue("date_from")
	toRaw := r.FormValue("date_to")
	if fromRaw == "" || toRaw == "" {
		s.writeError(w, endpoint, http.StatusBadRequest, "date_from and date_to are required")
		return compareRequest{}, false
	}
	from, err := time.Parse(time.DateOnly, fromRaw)
	if err != nil {
		s.writeError(w, endpoint, http.StatusBadRequest, "date_from must be YYYY-MM-DD")
		return compareRequest{}, false
	}
	to, err := time.Parse(time.DateOnly, toRaw)
	if err != nil {
		s.writeError(w, endpoint, http.StatusBadRequest, "date_to must be YYYY-MM-DD")
		return compareRequest{}, false
	}
	if from.After(to) {
		s.writeError(w, endpoint, http.StatusBadRequest, "date_from must not be after date_to")
		return compareRequest{}, false
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.writeError(w, endpoint, http.StatusInternalServerError, "staging upload failed")
		return compareRequest{}, false
	}
	stagingPath := filepath.Join(s.uploadDir, uuid.NewString()+".xlsx")
	dst, err := os.Create(stagingPath)
	if err != nil {
		s.writeError(w, endpoint, http.StatusInternalServerError, "staging upload failed")
		return compareRequest{}, false
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(stagingPath)
		s.writeError(w, endpoint, http.StatusInternalServerError, "staging upload failed")
		return compareRequest{}, false
	}
	if err := dst.Close(); err != nil {
		os.Remove(stagingPath)
		s.writeError(w, endpoint, http.StatusInternalServerError, "staging upload failed")
		return compareRequest{}, false
	}

	return compareRequest{stagingPath: stagingPath, from: from, to: to}, true
}

// writePipelineError maps pipeline failures onto HTTP statuses: a missing
// required column is the client's workbook problem, everything else is a
// processing failure.
func (s *Server) writePipelineError(w http.ResponseWriter, endpoint string, err error) {
	s.log.Errorw("pipeline failed", "endpoint", endpoint, "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, skud.ErrMissingColumns) {
		status = http.StatusBadRequest
	}
	s.writeError(w, endpoint, status, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Errorw("response encode failed", "endpoint", endpoint, "error", err)
	}
	s.metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, message string) {
	s.writeJSON(w, endpoint, status, map[string]string{"error": message})
}
