// Package google provides the concrete Google Sheets and Drive backends,
// built on google.golang.org/api with a service-account credential file.
// The rest of the system consumes these through the narrow interfaces defined
// by internal/source and internal/report, so tests never touch this package.
package google

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mkranz/sheetsync/internal/source"
)

// SheetsClient reads and writes spreadsheet values via the Sheets v4 API.
// It satisfies source.SheetReader and report.SheetWriter.
type SheetsClient struct {
	svc *sheets.Service
}

// NewSheetsClient builds a Sheets client authenticated with the given
// service-account credential file. The write scope is requested only when
// readWrite is set; plain sync runs stay read-only.
func NewSheetsClient(ctx context.Context, credentialsFile string, readWrite bool) (*SheetsClient, error) {
	scope := sheets.SpreadsheetsReadonlyScope
	if readWrite {
		scope = sheets.SpreadsheetsScope
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(scope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsClient{svc: svc}, nil
}

// TabTitle resolves a numeric tab gid to its display title by scanning the
// spreadsheet metadata. Wraps source.ErrTabNotFound when no tab matches.
func (c *SheetsClient) TabTitle(ctx context.Context, spreadsheetID string, gid int64) (string, error) {
	meta, err := c.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetching spreadsheet metadata: %w", err)
	}

	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.SheetId == gid {
			return sh.Properties.Title, nil
		}
	}
	return "", source.ErrTabNotFound
}

// Values fetches the full value grid of a tab. renderOption is passed through
// to the API unchanged.
func (c *SheetsClient) Values(ctx context.Context, spreadsheetID, tabName, renderOption string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, tabName).
		ValueRenderOption(renderOption).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return stringGrid(resp.Values), nil
}

// Update overwrites a cell range with the given rows.
func (c *SheetsClient) Update(ctx context.Context, spreadsheetID, a1Range string, rows [][]string) error {
	body := &sheets.ValueRange{
		Range:          a1Range,
		MajorDimension: "ROWS",
		Values:         interfaceGrid(rows),
	}
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, a1Range, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

// Append inserts rows after the last data row of a range.
func (c *SheetsClient) Append(ctx context.Context, spreadsheetID, a1Range string, rows [][]string) error {
	body := &sheets.ValueRange{Values: interfaceGrid(rows)}
	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, a1Range, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// stringGrid converts the API's untyped cell grid to strings. Unformatted
// render modes can yield numbers or bools; nil cells become empty strings.
func stringGrid(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out
}

func interfaceGrid(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
