package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkranz/sheetsync/internal/confluence"
	"github.com/mkranz/sheetsync/internal/google"
	"github.com/mkranz/sheetsync/internal/report"
	"github.com/mkranz/sheetsync/internal/source"
	"github.com/mkranz/sheetsync/internal/syncer"
)

// syncFlags are command-line overrides of the configured sync job. Credentials
// always come from the environment; everything else can be set per run.
var syncFlags struct {
	confluenceBase string
	pageID         string
	filename       string
	kind           string

	spreadsheet string
	gid         int64
	tabName     string
	render      string

	driveFileID   string
	driveFolderID string
	driveQuery    string
	exportMIME    string

	writeBackRange    string
	writeBackTemplate string
	appendLog         string
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one attachment sync job and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Sync.Timeout)
		defer cancel()

		job, err := buildSyncJob(cmd)
		if err != nil {
			return err
		}

		s, err := newSyncer(ctx, job.WriteBack.Enabled())
		if err != nil {
			return err
		}

		result, err := s.Run(ctx, job)
		if err != nil {
			return err
		}

		verb := "Created"
		if result.Outcome == confluence.Updated {
			verb = "Updated"
		}
		fmt.Printf("[%s] %s attachment: %s\n",
			time.Now().UTC().Format("2006-01-02 15:04:05 UTC"), verb, result.Filename)
		return nil
	},
}

func init() {
	f := syncCmd.Flags()
	f.StringVar(&syncFlags.confluenceBase, "confluence-base", "", "Confluence base URL override")
	f.StringVar(&syncFlags.pageID, "page-id", "", "target wiki page id")
	f.StringVar(&syncFlags.filename, "filename", "", "attachment filename")
	f.StringVar(&syncFlags.kind, "source-kind", "", "source kind (sheet_values, drive_export, drive_download, drive_list)")

	f.StringVar(&syncFlags.spreadsheet, "spreadsheet", "", "spreadsheet id")
	f.Int64Var(&syncFlags.gid, "gid", source.GIDUnset, "sheet tab gid")
	f.StringVar(&syncFlags.tabName, "tab-name", "", "sheet tab name")
	f.StringVar(&syncFlags.render, "render", "", "value render option (FORMATTED_VALUE, UNFORMATTED_VALUE, FORMULA)")

	f.StringVar(&syncFlags.driveFileID, "drive-file-id", "", "drive file id for export/download kinds")
	f.StringVar(&syncFlags.driveFolderID, "drive-folder-id", "", "drive folder id for the listing kind")
	f.StringVar(&syncFlags.driveQuery, "drive-query", "", "extra drive query ANDed with the folder filter")
	f.StringVar(&syncFlags.exportMIME, "export-mime", "", "export MIME type")

	f.StringVar(&syncFlags.writeBackRange, "write-back-range", "", "A1 range receiving the status line")
	f.StringVar(&syncFlags.writeBackTemplate, "write-back-template", "", "status line template")
	f.StringVar(&syncFlags.appendLog, "append-log", "", "A1 range receiving an appended log row")
}

// override returns flag when set, otherwise configured.
func override(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

// buildSyncJob merges the configured defaults with command-line overrides.
// Passing a gid clears the configured tab name and vice versa, so a job
// always carries exactly one tab selector.
func buildSyncJob(cmd *cobra.Command) (syncer.Job, error) {
	kind, err := source.ParseKind(override(syncFlags.kind, cfg.Sync.SourceKind))
	if err != nil {
		return syncer.Job{}, err
	}

	pageID := override(syncFlags.pageID, cfg.Sync.PageID)
	if pageID == "" {
		return syncer.Job{}, fmt.Errorf("a target page id is required (PAGE_ID or --page-id)")
	}

	gid := cfg.Sheet.TabGID
	tabName := cfg.Sheet.TabName
	if cmd.Flags().Changed("gid") {
		gid = syncFlags.gid
		tabName = ""
	}
	if syncFlags.tabName != "" {
		tabName = syncFlags.tabName
		gid = source.GIDUnset
	}

	if syncFlags.confluenceBase != "" {
		cfg.Confluence.Base = syncFlags.confluenceBase
	}

	job := syncer.Job{
		Source: source.Request{
			Kind:          kind,
			SpreadsheetID: override(syncFlags.spreadsheet, cfg.Sheet.SpreadsheetID),
			TabGID:        gid,
			TabName:       tabName,
			RenderOption:  override(syncFlags.render, cfg.Sheet.Render),
			FileID:        override(syncFlags.driveFileID, cfg.Sync.DriveFileID),
			ExportMIME:    override(syncFlags.exportMIME, cfg.Sync.ExportMIME),
			FolderID:      override(syncFlags.driveFolderID, cfg.Sync.DriveFolderID),
			Query:         override(syncFlags.driveQuery, cfg.Sync.DriveQuery),
			Filename:      override(syncFlags.filename, cfg.Sync.Filename),
		},
		PageID: pageID,
		WriteBack: report.Options{
			CellRange:   override(syncFlags.writeBackRange, cfg.Sync.WriteBackRange),
			Template:    override(syncFlags.writeBackTemplate, cfg.Sync.WriteBackTemplate),
			AppendRange: override(syncFlags.appendLog, cfg.Sync.AppendLogRange),
		},
	}
	return job, job.Source.Validate()
}

// newSheetReader opens a read-only sheets client for the query endpoints.
func newSheetReader(ctx context.Context) (source.SheetReader, error) {
	sheets, err := google.NewSheetsClient(ctx, cfg.Google.CredentialsFile, false)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return sheets, nil
}

// newSyncer wires the acquire, upsert and report stages from config. The
// sheets client is opened read-write only when write-back is on.
func newSyncer(ctx context.Context, writeBack bool) (*syncer.Syncer, error) {
	sheets, err := google.NewSheetsClient(ctx, cfg.Google.CredentialsFile, writeBack)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	drive, err := google.NewDriveClient(ctx, cfg.Google.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("creating drive client: %w", err)
	}

	wiki := confluence.NewClient(cfg.Confluence.Base, cfg.Confluence.User, cfg.Confluence.Pass, confluence.Options{
		Timeout:            cfg.Confluence.Timeout,
		InsecureSkipVerify: cfg.Confluence.InsecureSkipVerify,
	})

	s := &syncer.Syncer{
		Acquirer: &source.Acquirer{Sheets: sheets, Drive: drive},
		Wiki:     wiki,
	}
	if writeBack {
		s.Reporter = report.New(sheets, cfg.Sheet.SpreadsheetID)
	}
	return s, nil
}
