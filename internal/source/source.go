// Package source selects and acquires the payload to be attached to a
// Confluence page: a whole sheet tab rendered as CSV, an exported or
// downloaded Drive file, or a folder listing.
package source

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies where the payload bytes come from. The string values match
// the CLI flag values.
type Kind string

const (
	KindSheetValues   Kind = "sheet_values"
	KindDriveExport   Kind = "drive_export"
	KindDriveDownload Kind = "drive_download"
	KindDriveList     Kind = "drive_list"
)

// ParseKind validates a source-kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSheetValues, KindDriveExport, KindDriveDownload, KindDriveList:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unsupported source-kind %q", s)
}

// Render modes accepted by the Sheets values API. These are passed through
// unchanged; the API interprets them.
const (
	RenderFormatted   = "FORMATTED_VALUE"
	RenderUnformatted = "UNFORMATTED_VALUE"
	RenderFormula     = "FORMULA"
)

// ValidRender reports whether s is one of the accepted render modes.
func ValidRender(s string) bool {
	switch s {
	case RenderFormatted, RenderUnformatted, RenderFormula:
		return true
	}
	return false
}

// GIDUnset marks an absent tab gid in a Request.
const GIDUnset int64 = -1

// ErrTabNotFound is returned when a gid does not match any tab in the
// spreadsheet.
var ErrTabNotFound = errors.New("tab not found")

// Request carries a source kind and the parameters it needs. Exactly one kind
// is active per request; Validate enforces that kind's required parameters
// before any network call is made.
type Request struct {
	Kind Kind

	// sheet_values
	SpreadsheetID string
	TabGID        int64 // GIDUnset when selecting by name
	TabName       string
	RenderOption  string

	// drive_export / drive_download
	FileID     string
	ExportMIME string

	// drive_list
	FolderID string
	Query    string // extra Drive query ANDed with the folder filter

	// Target attachment filename, carried through to the payload.
	Filename string
}

// Payload is the acquired bytes plus the attachment filename they target.
type Payload struct {
	Bytes    []byte
	Filename string
}

// DriveFile is one entry of a folder listing. Fields the backend omitted stay
// empty strings.
type DriveFile struct {
	ID           string
	Name         string
	MIMEType     string
	ModifiedTime string
	Size         string
}

// SheetReader is the read half of the spreadsheet backend the acquirer
// consumes. Implemented by google.SheetsClient; faked in tests.
type SheetReader interface {
	// TabTitle resolves a numeric tab gid to its display title.
	// Returns an error wrapping ErrTabNotFound when no tab matches.
	TabTitle(ctx context.Context, spreadsheetID string, gid int64) (string, error)

	// Values fetches the full value grid of a tab by title, rendered
	// according to renderOption.
	Values(ctx context.Context, spreadsheetID, tabName, renderOption string) ([][]string, error)
}

// Drive is the file-storage backend the acquirer consumes.
type Drive interface {
	// Export converts a Google-native file to the given MIME type.
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)

	// Download fetches the raw bytes of a non-native file.
	Download(ctx context.Context, fileID string) ([]byte, error)

	// List returns every file under folderID, following pagination to the
	// end. extraQuery, when non-empty, is ANDed with the folder filter.
	List(ctx context.Context, folderID, extraQuery string) ([]DriveFile, error)
}

// Validate checks that the parameters required by the request's kind are
// present. Configuration errors are reported here, before any network call.
func (r Request) Validate() error {
	if r.Filename == "" {
		return errors.New("attachment filename is required")
	}

	switch r.Kind {
	case KindSheetValues:
		if r.SpreadsheetID == "" {
			return errors.New("spreadsheet id is required for source-kind=sheet_values")
		}
		if r.TabGID == GIDUnset && r.TabName == "" {
			return errors.New("either tab gid or tab name is required for source-kind=sheet_values")
		}
		if r.RenderOption != "" && !ValidRender(r.RenderOption) {
			return fmt.Errorf("invalid render option %q", r.RenderOption)
		}
	case KindDriveExport:
		if r.FileID == "" {
			return errors.New("drive file id is required for source-kind=drive_export")
		}
		if r.ExportMIME == "" {
			return errors.New("export mime type is required for source-kind=drive_export")
		}
	case KindDriveDownload:
		if r.FileID == "" {
			return errors.New("drive file id is required for source-kind=drive_download")
		}
	case KindDriveList:
		if r.FolderID == "" {
			return errors.New("drive folder id is required for source-kind=drive_list")
		}
	default:
		return fmt.Errorf("unsupported source-kind %q", r.Kind)
	}
	return nil
}
