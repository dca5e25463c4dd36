package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeWriter struct {
	updates []writeCall
	appends []writeCall
	err     error
}

type writeCall struct {
	a1Range string
	rows    [][]string
}

func (f *fakeWriter) Update(_ context.Context, _, a1Range string, rows [][]string) error {
	f.updates = append(f.updates, writeCall{a1Range, rows})
	return f.err
}

func (f *fakeWriter) Append(_ context.Context, _, a1Range string, rows [][]string) error {
	f.appends = append(f.appends, writeCall{a1Range, rows})
	return f.err
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "default template",
			template: "",
			want:     "Last sync: TS | File: data.csv | Status: created",
		},
		{
			name:     "custom template",
			template: "{status} {filename} at {timestamp}",
			want:     "created data.csv at TS",
		},
		{
			name:     "template without placeholders",
			template: "synced",
			want:     "synced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatStatus(tt.template, "TS", "data.csv", "created")
			if got != tt.want {
				t.Errorf("FormatStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReport_StatusCellAndLog(t *testing.T) {
	w := &fakeWriter{}
	r := New(w, "sheet-1")
	r.now = fixedNow

	r.Report(context.Background(), Options{
		CellRange:   "Sync!A1",
		AppendRange: "SyncLog!A:C",
	}, "data.csv", "updated")

	if len(w.updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(w.updates))
	}
	if w.updates[0].a1Range != "Sync!A1" {
		t.Errorf("unexpected update range %q", w.updates[0].a1Range)
	}
	text := w.updates[0].rows[0][0]
	if !strings.Contains(text, "2025-03-14 09:26:53 UTC") || !strings.Contains(text, "updated") {
		t.Errorf("status line missing timestamp or status: %q", text)
	}

	if len(w.appends) != 1 {
		t.Fatalf("expected 1 append, got %d", len(w.appends))
	}
	row := w.appends[0].rows[0]
	if len(row) != 3 {
		t.Fatalf("expected 3-column log row, got %d", len(row))
	}
	if row[0] != "2025-03-14 09:26:53 UTC" || row[1] != "data.csv" || row[2] != "updated" {
		t.Errorf("unexpected log row: %v", row)
	}
}

func TestReport_Disabled(t *testing.T) {
	w := &fakeWriter{}
	r := New(w, "sheet-1")
	r.now = fixedNow

	r.Report(context.Background(), Options{}, "data.csv", "created")

	if len(w.updates) != 0 || len(w.appends) != 0 {
		t.Error("no writes expected when write-back is disabled")
	}
}

func TestReport_FailuresAreSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("quota exceeded")}
	r := New(w, "sheet-1")
	r.now = fixedNow

	// Report returns nothing; a backend failure must not panic or propagate.
	r.Report(context.Background(), Options{
		CellRange:   "Sync!A1",
		AppendRange: "SyncLog!A:C",
	}, "data.csv", "created")

	// Both targets are still attempted despite the first failing.
	if len(w.updates) != 1 || len(w.appends) != 1 {
		t.Errorf("expected both write-back targets attempted, got %d updates %d appends",
			len(w.updates), len(w.appends))
	}
}
