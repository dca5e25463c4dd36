package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkranz/sheetsync/internal/confluence"
	"github.com/mkranz/sheetsync/internal/google"
	"github.com/mkranz/sheetsync/internal/lesson"
	"github.com/mkranz/sheetsync/internal/llm"
	"github.com/mkranz/sheetsync/internal/tabular"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate lesson pages from the curriculum sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Sheet.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID is not configured")
		}
		if cfg.Confluence.ParentPageID == "" {
			return fmt.Errorf("PARENT_PAGE_ID is not configured")
		}

		sheets, err := google.NewSheetsClient(ctx, cfg.Google.CredentialsFile, false)
		if err != nil {
			return fmt.Errorf("creating sheets client: %w", err)
		}

		tabName := cfg.Sheet.TabName
		if tabName == "" {
			tabName, err = sheets.TabTitle(ctx, cfg.Sheet.SpreadsheetID, cfg.Sheet.TabGID)
			if err != nil {
				return err
			}
		}

		values, err := sheets.Values(ctx, cfg.Sheet.SpreadsheetID, tabName, cfg.Sheet.Render)
		if err != nil {
			return fmt.Errorf("reading curriculum tab %q: %w", tabName, err)
		}

		pipeline := &lesson.Pipeline{
			Generator: llm.NewClient(cfg.LLM.URL, cfg.LLM.Model, llm.Options{
				Timeout:            cfg.LLM.Timeout,
				InsecureSkipVerify: cfg.LLM.InsecureSkipVerify,
			}),
			Wiki: confluence.NewClient(cfg.Confluence.Base, cfg.Confluence.User, cfg.Confluence.Pass, confluence.Options{
				Timeout:            cfg.Confluence.Timeout,
				InsecureSkipVerify: cfg.Confluence.InsecureSkipVerify,
			}),
			ParentPageID: cfg.Confluence.ParentPageID,
		}

		written, err := pipeline.Run(ctx, tabular.Grid(values))
		if err != nil {
			return fmt.Errorf("after %d pages: %w", written, err)
		}

		slog.Info("lesson generation finished", "pages", written)
		return nil
	},
}
