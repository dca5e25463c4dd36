// Package report writes sync status back into the source spreadsheet.
//
// Write-back is strictly best effort: by the time it runs the attachment
// upload has already succeeded, and the upload is the operation of record.
// Every failure here is downgraded to a warning.
package report

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultTemplate is the status line written when no template is configured.
const DefaultTemplate = "Last sync: {timestamp} | File: {filename} | Status: {status}"

// timestampLayout renders write-back timestamps, always in UTC.
const timestampLayout = "2006-01-02 15:04:05 UTC"

// SheetWriter is the write half of the spreadsheet backend. Implemented by
// google.SheetsClient.
type SheetWriter interface {
	// Update overwrites a cell range with rows of values.
	Update(ctx context.Context, spreadsheetID, a1Range string, rows [][]string) error

	// Append adds rows after the last data row of a range.
	Append(ctx context.Context, spreadsheetID, a1Range string, rows [][]string) error
}

// Options selects what gets written back. Both fields are optional; an empty
// Options disables write-back entirely.
type Options struct {
	// CellRange is an A1 range (e.g. "Sync!A1") that receives a templated
	// status line.
	CellRange string

	// Template formats the status line. Placeholders: {timestamp},
	// {filename}, {status}. Empty means DefaultTemplate.
	Template string

	// AppendRange is an A1 range (e.g. "SyncLog!A:C") that receives an
	// appended [timestamp, filename, status] row.
	AppendRange string
}

// Enabled reports whether any write-back target is configured.
func (o Options) Enabled() bool {
	return o.CellRange != "" || o.AppendRange != ""
}

// Reporter performs the write-back against one spreadsheet.
type Reporter struct {
	Sheets        SheetWriter
	SpreadsheetID string

	// now is stubbed in tests.
	now func() time.Time
}

// New builds a reporter for the given spreadsheet.
func New(sheets SheetWriter, spreadsheetID string) *Reporter {
	return &Reporter{Sheets: sheets, SpreadsheetID: spreadsheetID, now: time.Now}
}

// Report records the outcome of a completed sync. Failures are logged at Warn
// and never returned; the sync already succeeded.
func (r *Reporter) Report(ctx context.Context, opts Options, filename, status string) {
	if !opts.Enabled() {
		return
	}

	ts := r.now().UTC().Format(timestampLayout)

	if opts.CellRange != "" {
		text := FormatStatus(opts.Template, ts, filename, status)
		err := r.Sheets.Update(ctx, r.SpreadsheetID, opts.CellRange, [][]string{{text}})
		if err != nil {
			slog.Warn("write-back failed", "range", opts.CellRange, "error", err)
		}
	}

	if opts.AppendRange != "" {
		row := []string{ts, filename, status}
		err := r.Sheets.Append(ctx, r.SpreadsheetID, opts.AppendRange, [][]string{row})
		if err != nil {
			slog.Warn("append-log failed", "range", opts.AppendRange, "error", err)
		}
	}
}

// FormatStatus expands the {timestamp}, {filename} and {status} placeholders
// in template. An empty template means DefaultTemplate.
func FormatStatus(template, timestamp, filename, status string) string {
	if template == "" {
		template = DefaultTemplate
	}
	replacer := strings.NewReplacer(
		"{timestamp}", timestamp,
		"{filename}", filename,
		"{status}", status,
	)
	return replacer.Replace(template)
}
