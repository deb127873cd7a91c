package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/depexplain/depexplain/pkg/history"
	"github.com/depexplain/depexplain/pkg/pipeline"
	"github.com/depexplain/depexplain/pkg/report"
	"github.com/depexplain/depexplain/pkg/rules"
)

const conflicting = "pytorch-lightning==2.0.0\ntorch==1.13.0\n"

func newTestServer() *Server {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(runner, history.NewMemoryStore(), logger)
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeReport(t *testing.T, body *bytes.Buffer) report.Report {
	t.Helper()
	var rep report.Report
	if err := json.Unmarshal(body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, body.String())
	}
	return rep
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyzeTextBody(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(conflicting))
	req.Header.Set("Content-Type", "text/plain")
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	rep := decodeReport(t, rec.Body)
	if rep.Compatible {
		t.Error("expected a conflict")
	}
	if len(rep.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(rep.Findings))
	}
	if rep.Findings[0].RuleID != "pytorch-lightning-requires-torch-2" {
		t.Errorf("rule = %q", rep.Findings[0].RuleID)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}
}

func TestAnalyzeJSON(t *testing.T) {
	s := newTestServer()

	body, _ := json.Marshal(analyzeRequest{Content: conflicting, Input: "train.txt", NoExplain: true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	rep := decodeReport(t, rec.Body)
	if rep.Input != "train.txt" {
		t.Errorf("input = %q", rep.Input)
	}
	// Explain skipped server-side still yields template explanations in
	// the stored report.
	if rep.Findings[0].Explanation.Text == "" {
		t.Error("missing explanation")
	}
}

func TestAnalyzeMultipart(t *testing.T) {
	s := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "requirements.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(conflicting)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	rep := decodeReport(t, rec.Body)
	if rep.Input != "requirements.txt" {
		t.Errorf("input = %q", rep.Input)
	}
}

func TestAnalyzeEmptyBody(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(""))
	req.Header.Set("Content-Type", "text/plain")
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReportLifecycle(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(conflicting))
	req.Header.Set("Content-Type", "text/plain")
	rec := doRequest(t, s, req)
	rep := decodeReport(t, rec.Body)

	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+rep.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decodeReport(t, rec.Body)
	if got.ID != rep.ID {
		t.Errorf("id = %v, want %v", got.ID, rep.ID)
	}

	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var entries []history.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != rep.ID {
		t.Errorf("entries = %+v", entries)
	}

	rec = doRequest(t, s, httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+rep.ID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+rep.ID.String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestGetReportBadID(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/reports/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetReportUnknown(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "REPORT_NOT_FOUND") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestListRules(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rs []rules.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rs); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	if len(rs) != rules.Builtin().Len() {
		t.Errorf("rules = %d, want %d", len(rs), rules.Builtin().Len())
	}
}

func TestListReportsEmpty(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want empty array", rec.Body.String())
	}
}
