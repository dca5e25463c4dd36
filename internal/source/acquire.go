package source

import (
	"context"
	"fmt"

	"github.com/mkranz/sheetsync/internal/tabular"
)

// listHeader is the fixed header row of a drive_list CSV.
var listHeader = []string{"id", "name", "mimeType", "modifiedTime", "size"}

// Acquirer turns a validated Request into payload bytes. Sheet-backed kinds
// are CSV-encoded with BOM and CRLF; Drive export/download bytes pass through
// unmodified.
type Acquirer struct {
	Sheets SheetReader
	Drive  Drive
}

// Acquire produces the payload for req. It validates first and makes no
// network call when validation fails.
func (a *Acquirer) Acquire(ctx context.Context, req Request) (Payload, error) {
	if err := req.Validate(); err != nil {
		return Payload{}, err
	}

	switch req.Kind {
	case KindSheetValues:
		return a.acquireSheetValues(ctx, req)
	case KindDriveExport:
		data, err := a.Drive.Export(ctx, req.FileID, req.ExportMIME)
		if err != nil {
			return Payload{}, fmt.Errorf("drive export failed for file %s: %w", req.FileID, err)
		}
		return Payload{Bytes: data, Filename: req.Filename}, nil
	case KindDriveDownload:
		data, err := a.Drive.Download(ctx, req.FileID)
		if err != nil {
			return Payload{}, fmt.Errorf("drive download failed for file %s: %w", req.FileID, err)
		}
		return Payload{Bytes: data, Filename: req.Filename}, nil
	case KindDriveList:
		return a.acquireDriveList(ctx, req)
	}
	return Payload{}, fmt.Errorf("unsupported source-kind %q", req.Kind)
}

// acquireSheetValues fetches a whole tab and encodes it as CSV. A numeric gid
// is resolved to the tab title via spreadsheet metadata first.
func (a *Acquirer) acquireSheetValues(ctx context.Context, req Request) (Payload, error) {
	tabName := req.TabName
	if tabName == "" {
		title, err := a.Sheets.TabTitle(ctx, req.SpreadsheetID, req.TabGID)
		if err != nil {
			return Payload{}, fmt.Errorf("resolving tab gid=%d in spreadsheet %s: %w",
				req.TabGID, req.SpreadsheetID, err)
		}
		tabName = title
	}

	render := req.RenderOption
	if render == "" {
		render = RenderFormatted
	}

	values, err := a.Sheets.Values(ctx, req.SpreadsheetID, tabName, render)
	if err != nil {
		return Payload{}, fmt.Errorf("reading tab %q of spreadsheet %s: %w",
			tabName, req.SpreadsheetID, err)
	}

	data, err := tabular.EncodeCSV(tabular.Grid(values))
	if err != nil {
		return Payload{}, fmt.Errorf("encoding tab %q as CSV: %w", tabName, err)
	}
	return Payload{Bytes: data, Filename: req.Filename}, nil
}

// acquireDriveList lists a folder and encodes the result as a CSV grid with a
// fixed header row. An empty folder yields a header-only CSV, not an error.
func (a *Acquirer) acquireDriveList(ctx context.Context, req Request) (Payload, error) {
	files, err := a.Drive.List(ctx, req.FolderID, req.Query)
	if err != nil {
		return Payload{}, fmt.Errorf("drive list failed for folder %s: %w", req.FolderID, err)
	}

	grid := make(tabular.Grid, 0, len(files)+1)
	grid = append(grid, listHeader)
	for _, f := range files {
		grid = append(grid, []string{f.ID, f.Name, f.MIMEType, f.ModifiedTime, f.Size})
	}

	data, err := tabular.EncodeCSV(grid)
	if err != nil {
		return Payload{}, fmt.Errorf("encoding folder listing as CSV: %w", err)
	}
	return Payload{Bytes: data, Filename: req.Filename}, nil
}
