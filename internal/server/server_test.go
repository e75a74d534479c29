package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"skud-compare-api/internal/metrics"
	"skud-compare-api/internal/models"
	"skud-compare-api/internal/reconcile"
	"skud-compare-api/internal/shift"
	"skud-compare-api/internal/skud"
)

type stubSheet struct {
	entries  []models.TabellEntry
	projects []string
	err      error
}

func (s stubSheet) FetchTabell(context.Context, time.Time, time.Time) ([]models.TabellEntry, error) {
	return s.entries, s.err
}

func (s stubSheet) FetchProjects(context.Context) ([]string, error) {
	return s.projects, s.err
}

func newTestServer(t *testing.T, sheet stubSheet) *Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	pipeline := reconcile.New(
		skud.NewReader(log),
		shift.NewDetector(shift.DefaultWindows(), log),
		sheet,
		metrics.New(),
		log,
	)
	return New(pipeline, sheet, metrics.New(), t.TempDir(), log)
}

// workbookBytes renders rows into an in-memory .xlsx.
func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func punchWorkbook(t *testing.T) []byte {
	return workbookBytes(t, [][]any{
		{"Employee ID", "Date", "Time"},
		{"E1", "2025-03-10", "06:00:00"},
		{"E1", "2025-03-10", "16:50:00"},
	})
}

type formField struct{ name, value string }

// multipartBody builds a form with an optional file part named xlsx_file.
func multipartBody(t *testing.T, filename string, file []byte, fields ...formField) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("xlsx_file", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	for _, f := range fields {
		require.NoError(t, w.WriteField(f.name, f.value))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doCompare(t *testing.T, srv *Server, path, filename string, file []byte, fields ...formField) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, file, fields...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func rangeFields() []formField {
	return []formField{{"date_from", "2025-03-10"}, {"date_to", "2025-03-10"}}
}

func TestCompareEndpoint(t *testing.T) {
	srv := newTestServer(t, stubSheet{entries: []models.TabellEntry{{
		EmployeeID: "E1",
		Name:       "Ivanov",
		Month:      time.March,
		DailyHours: map[int]float64{10: 8},
	}}})

	rec := doCompare(t, srv, "/api/compare", "punches.xlsx", punchWorkbook(t), rangeFields()...)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result models.CompareResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Comparison, 1)
	cell := result.Comparison[0].Days["2025-03-10"]
	assert.Equal(t, 10.8, cell.Skud)
	assert.Equal(t, -2.8, cell.Diff)
	assert.Equal(t, 1, result.Summary.MatchedEmployees)
}

func TestCompareStagingFileRemoved(t *testing.T) {
	srv := newTestServer(t, stubSheet{})

	rec := doCompare(t, srv, "/api/compare", "punches.xlsx", punchWorkbook(t), rangeFields()...)

	require.Equal(t, http.StatusOK, rec.Code)
	files, err := os.ReadDir(srv.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCompareValidation(t *testing.T) {
	srv := newTestServer(t, stubSheet{})
	workbook := punchWorkbook(t)

	tests := []struct {
		name     string
		filename string
		fields   []formField
		wantErr  string
	}{
		{"missing file", "", nil, "xlsx_file is required"},
		{"wrong extension", "punches.csv", rangeFields(), ".xlsx"},
		{"missing dates", "punches.xlsx", nil, "required"},
		{"bad date", "punches.xlsx",
			[]formField{{"date_from", "10.03.2025"}, {"date_to", "2025-03-10"}},
			"date_from must be YYYY-MM-DD"},
		{"inverted range", "punches.xlsx",
			[]formField{{"date_from", "2025-03-11"}, {"date_to", "2025-03-10"}},
			"must not be after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doCompare(t, srv, "/api/compare", tt.filename, workbook, tt.fields...)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
}

func TestCompareMissingColumns(t *testing.T) {
	srv := newTestServer(t, stubSheet{})
	workbook := workbookBytes(t, [][]any{
		{"Employee ID", "Badge Reader"},
		{"E1", "gate-1"},
	})

	rec := doCompare(t, srv, "/api/compare", "punches.xlsx", workbook, rangeFields()...)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns")
}

func TestCompareTabellFailure(t *testing.T) {
	srv := newTestServer(t, stubSheet{err: errors.New("fetch sheet: unexpected status 403")})

	rec := doCompare(t, srv, "/api/compare", "punches.xlsx", punchWorkbook(t), rangeFields()...)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "fetch tabell")
}

func TestExportWorkbook(t *testing.T) {
	srv := newTestServer(t, stubSheet{})

	rec := doCompare(t, srv, "/api/compare/export?format=xlsx", "punches.xlsx",
		punchWorkbook(t), rangeFields()...)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "comparison_2025-03-10_2025-03-10.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestExportPDF(t *testing.T) {
	srv := newTestServer(t, stubSheet{})

	rec := doCompare(t, srv, "/api/compare/export?format=pdf", "punches.xlsx",
		punchWorkbook(t), rangeFields()...)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExportBadFormat(t *testing.T) {
	srv := newTestServer(t, stubSheet{})

	rec := doCompare(t, srv, "/api/compare/export?format=docx", "punches.xlsx",
		punchWorkbook(t), rangeFields()...)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectsEndpoint(t *testing.T) {
	srv := newTestServer(t, stubSheet{projects: []string{"Alpha", "Beta"}})

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Alpha", "Beta"}, body["projects"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, stubSheet{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, stubSheet{})

	req := httptest.NewRequest(http.MethodOptions, "/api/compare", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
