package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkranz/sheetsync/internal/config"
	"github.com/mkranz/sheetsync/internal/confluence"
	"github.com/mkranz/sheetsync/internal/source"
	"github.com/mkranz/sheetsync/internal/syncer"
)

type fakeRunner struct {
	lastJob syncer.Job
	result  syncer.Result
	err     error
	// waits until the context deadline when set
	blockUntilDeadline bool
}

func (f *fakeRunner) Run(ctx context.Context, job syncer.Job) (syncer.Result, error) {
	f.lastJob = job
	if f.blockUntilDeadline {
		<-ctx.Done()
		return syncer.Result{}, fmt.Errorf("upserting attachment: %w", ctx.Err())
	}
	return f.result, f.err
}

type fakeSheets struct {
	values [][]string
	err    error
}

func (f *fakeSheets) TabTitle(_ context.Context, _ string, _ int64) (string, error) {
	return "Curriculum", nil
}

func (f *fakeSheets) Values(_ context.Context, _, _, _ string) ([][]string, error) {
	return f.values, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Sheet: config.SheetConfig{
			SpreadsheetID: "sheet-1",
			TabGID:        -1,
			TabName:       "Curriculum",
			Render:        "FORMATTED_VALUE",
		},
		Sync: config.SyncConfig{
			Timeout:    time.Second,
			PageID:     "100",
			SourceKind: "sheet_values",
			Filename:   "data.csv",
			ExportMIME: "text/csv",
		},
	}
}

func newTestServer(cfg *config.Config, runner SyncRunner, sheets source.SheetReader) *httptest.Server {
	return httptest.NewServer(NewServer(cfg, runner, sheets).Router())
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Errorf("expected ok:true, got %v", body)
	}
}

func TestHandleSync_Defaults(t *testing.T) {
	runner := &fakeRunner{result: syncer.Result{Filename: "data.csv", Outcome: confluence.Created, Bytes: 42}}
	ts := newTestServer(testConfig(), runner, &fakeSheets{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sync failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["ok"] != true || body["status"] != "created" || body["filename"] != "data.csv" {
		t.Errorf("unexpected response: %v", body)
	}
	if body["job_id"] == "" || body["job_id"] == nil {
		t.Error("response missing job_id")
	}

	if runner.lastJob.Source.Kind != source.KindSheetValues {
		t.Errorf("expected configured kind, got %q", runner.lastJob.Source.Kind)
	}
	if runner.lastJob.PageID != "100" {
		t.Errorf("expected configured page id, got %q", runner.lastJob.PageID)
	}
}

func TestHandleSync_Overrides(t *testing.T) {
	runner := &fakeRunner{result: syncer.Result{Outcome: confluence.Updated}}
	ts := newTestServer(testConfig(), runner, &fakeSheets{})
	defer ts.Close()

	payload := `{"attachment_filename":"override.csv","sheet_gid":4242}`
	resp, err := http.Post(ts.URL+"/sync", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /sync failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if runner.lastJob.Source.Filename != "override.csv" {
		t.Errorf("filename override not applied: %q", runner.lastJob.Source.Filename)
	}
	if runner.lastJob.Source.TabGID != 4242 {
		t.Errorf("gid override not applied: %d", runner.lastJob.Source.TabGID)
	}
	// A gid override must clear the configured tab name.
	if runner.lastJob.Source.TabName != "" {
		t.Errorf("tab name should be cleared by gid override, got %q", runner.lastJob.Source.TabName)
	}
}

func TestHandleSync_InvalidKind(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync", "application/json", strings.NewReader(`{"source_kind":"ftp"}`))
	if err != nil {
		t.Fatalf("POST /sync failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false {
		t.Errorf("expected ok:false, got %v", body)
	}
}

func TestHandleSync_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.Sync.Timeout = 20 * time.Millisecond
	runner := &fakeRunner{blockUntilDeadline: true}
	ts := newTestServer(cfg, runner, &fakeSheets{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sync failed: %v", err)
	}
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "sync timed out" {
		t.Errorf("expected timeout message, got %v", body)
	}
}

func TestHandleSync_Failure(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("confluence returned 500: boom")}
	ts := newTestServer(testConfig(), runner, &fakeSheets{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sync failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false {
		t.Errorf("expected ok:false, got %v", body)
	}
}

func lessonValues() [][]string {
	return [][]string{
		{"Module", "Module Name", "Section", "Section Title", "author"},
		{"1", "Football Basics / 101", "1.1", "Personnel", "kim"},
		{"1", "Football Basics / 101", "1.2", "Formations", "ray"},
		{"2", "Coverages", "2.1", "Cover 2", "kim"},
	}
}

func TestHandleLesson_ExactMatch(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{values: lessonValues()})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lesson?module_name=football+basics+%2F+101&section=1.2")
	if err != nil {
		t.Fatalf("GET /lesson failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("expected 1 match, got %v", body["count"])
	}
	data := body["data"].([]any)
	rec := data[0].(map[string]any)
	if rec["Section Title"] != "Formations" {
		t.Errorf("unexpected match: %v", rec)
	}
}

func TestHandleLesson_MissingParams(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{values: lessonValues()})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lesson?module_name=x")
	if err != nil {
		t.Fatalf("GET /lesson failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandleLessons_Filters(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{values: lessonValues()})
	defer ts.Close()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filters", "", 3},
		{"author filter", "?author=KIM", 2},
		{"section prefix", "?section_prefix=1.", 2},
		{"module and author", "?module_name=coverages&author=kim", 1},
		{"no matches", "?author=nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/lessons" + tt.query)
			if err != nil {
				t.Fatalf("GET /lessons failed: %v", err)
			}
			body := decodeBody(t, resp)
			if body["count"] != float64(tt.want) {
				t.Errorf("count = %v, want %d", body["count"], tt.want)
			}
			// data is always a list, never null
			if _, ok := body["data"].([]any); !ok {
				t.Errorf("data should be a JSON array, got %T", body["data"])
			}
		})
	}
}

func TestHandleLessons_Limit(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{values: lessonValues()})
	defer ts.Close()

	tests := []struct {
		name     string
		query    string
		wantData int
	}{
		{"explicit limit", "?limit=1", 1},
		{"zero clamps to one", "?limit=0", 1},
		{"negative clamps to one", "?limit=-5", 1},
		{"non-integer falls back to default", "?limit=abc", 3},
		{"above match count", "?limit=50", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/lessons" + tt.query)
			if err != nil {
				t.Fatalf("GET /lessons failed: %v", err)
			}
			body := decodeBody(t, resp)

			// count always reports all matches; data is capped at the limit.
			if body["count"] != float64(3) {
				t.Errorf("count = %v, want 3", body["count"])
			}
			if data := body["data"].([]any); len(data) != tt.wantData {
				t.Errorf("expected %d records in data, got %d", tt.wantData, len(data))
			}
		})
	}
}

func TestHandleLessons_SheetError(t *testing.T) {
	ts := newTestServer(testConfig(), &fakeRunner{}, &fakeSheets{err: fmt.Errorf("quota exceeded")})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lessons")
	if err != nil {
		t.Fatalf("GET /lessons failed: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
