// Package syncer orchestrates one attachment sync end to end: acquire the
// payload, upsert it onto the wiki page, then best-effort report the outcome
// back to the spreadsheet.
//
// A Syncer runs one job at a time, synchronously. The web layer invokes it
// in-process under a deadline context; the CLI invokes it directly.
package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkranz/sheetsync/internal/confluence"
	"github.com/mkranz/sheetsync/internal/report"
	"github.com/mkranz/sheetsync/internal/source"
)

// Acquirer produces payload bytes for a source request. Implemented by
// source.Acquirer.
type Acquirer interface {
	Acquire(ctx context.Context, req source.Request) (source.Payload, error)
}

// AttachmentWriter upserts attachments. Implemented by confluence.Client.
type AttachmentWriter interface {
	UpsertAttachment(ctx context.Context, pageID, filename string, payload []byte) (confluence.Outcome, error)
}

// Reporter records sync status back to the source table. Implemented by
// report.Reporter.
type Reporter interface {
	Report(ctx context.Context, opts report.Options, filename, status string)
}

// Job describes one attachment sync invocation.
type Job struct {
	Source    source.Request
	PageID    string
	WriteBack report.Options
}

// Result is the outcome of a completed sync.
type Result struct {
	Filename string
	Outcome  confluence.Outcome
	Bytes    int
}

// Syncer wires the three stages together.
type Syncer struct {
	Acquirer Acquirer
	Wiki     AttachmentWriter
	Reporter Reporter // nil disables write-back
}

// Run executes one job. The acquire and upsert stages are fatal on error; the
// report stage never is.
func (s *Syncer) Run(ctx context.Context, job Job) (Result, error) {
	if job.PageID == "" {
		return Result{}, fmt.Errorf("target page id is required")
	}

	payload, err := s.Acquirer.Acquire(ctx, job.Source)
	if err != nil {
		return Result{}, err
	}

	outcome, err := s.Wiki.UpsertAttachment(ctx, job.PageID, payload.Filename, payload.Bytes)
	if err != nil {
		return Result{}, err
	}

	if s.Reporter != nil && job.WriteBack.Enabled() {
		s.Reporter.Report(ctx, job.WriteBack, payload.Filename, string(outcome))
	}

	slog.Info("sync complete",
		"page_id", job.PageID,
		"filename", payload.Filename,
		"outcome", outcome,
		"bytes", len(payload.Bytes),
	)

	return Result{
		Filename: payload.Filename,
		Outcome:  outcome,
		Bytes:    len(payload.Bytes),
	}, nil
}
