package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tubetap/internal/api"
	"tubetap/internal/config"
	"tubetap/internal/extract"
	"tubetap/internal/history"
	"tubetap/internal/httputil"
	"tubetap/internal/provider"
	"tubetap/internal/title"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP service",
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	token := config.Token()
	if token == "" {
		return fmt.Errorf("APIFY_TOKEN is not set")
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	runner := provider.NewApify(token)
	runner.BaseURL = cfg.APIBase
	runner.ProxyCountry = cfg.ProxyCountry

	orch := extract.New(runner, cfg.Policy())
	orch.Logger = logger
	pageClient := httputil.NewClient()
	orch.TitleFallback = func(ctx context.Context, videoURL string) (string, error) {
		return title.Lookup(ctx, pageClient, videoURL)
	}

	store, err := openHistory()
	if err != nil {
		logger.Warn("history disabled", "error", err)
	} else {
		defer store.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(cfg, orch, runner, store, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openHistory opens the history store at the configured path. A nil store is
// a valid "recording disabled" state for the API server.
func openHistory() (*history.Store, error) {
	path, err := cfg.ResolvedHistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}
