package lesson

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkranz/sheetsync/internal/tabular"
)

// Generator is the text-generation backend. Implemented by llm.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PageWriter upserts wiki pages. Implemented by confluence.Client.
type PageWriter interface {
	UpsertPage(ctx context.Context, title, parentID, storageValue string) (string, error)
}

// Pipeline generates one wiki page per usable sheet row, sequentially.
type Pipeline struct {
	Generator Generator
	Wiki      PageWriter

	// ParentPageID is the page all generated lessons are created under.
	ParentPageID string
}

// Run processes the grid top to bottom. Blank rows and rows without a section
// or section title are skipped silently. The first generation or upload
// failure halts the batch; rows already written stay written.
//
// Returns the number of pages upserted.
func (p *Pipeline) Run(ctx context.Context, grid tabular.Grid) (int, error) {
	rows := SelectRows(grid)
	slog.Info("lesson batch starting", "rows", len(rows), "parent_page_id", p.ParentPageID)

	written := 0
	for _, row := range rows {
		title := row.Title()

		content, err := p.Generator.Generate(ctx, BuildPrompt(row))
		if err != nil {
			return written, fmt.Errorf("generating lesson %q: %w", title, err)
		}

		pageID, err := p.Wiki.UpsertPage(ctx, title, p.ParentPageID, content)
		if err != nil {
			return written, fmt.Errorf("upserting lesson %q: %w", title, err)
		}

		slog.Info("lesson written", "title", title, "page_id", pageID)
		written++
	}
	return written, nil
}

// SelectRows converts a grid to the rows the pipeline will process: blank
// rows dropped, incomplete rows dropped.
func SelectRows(grid tabular.Grid) []Row {
	var out []Row
	for _, rec := range tabular.Records(grid) {
		if rec.IsBlank() {
			continue
		}
		row := FromRecord(rec)
		if !row.Complete() {
			continue
		}
		out = append(out, row)
	}
	return out
}
