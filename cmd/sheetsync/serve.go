package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkranz/sheetsync/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP sync service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Write-back targets are configured per job; open the sheets
		// client read-write whenever any of them is set.
		writeBack := cfg.Sync.WriteBackRange != "" || cfg.Sync.AppendLogRange != ""
		s, err := newSyncer(ctx, writeBack)
		if err != nil {
			return err
		}
		sheets, err := newSheetReader(ctx)
		if err != nil {
			return err
		}

		server := web.NewServer(cfg, s, sheets)

		errCh := make(chan error, 1)
		go func() {
			slog.Info("server starting", "addr", cfg.Server.Addr())
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			slog.Info("shutdown signal received", "signal", sig.String())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		slog.Info("server stopped")
		return nil
	},
}
