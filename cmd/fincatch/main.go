package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/fincatch/fincatch/internal/client/auth"
	"github.com/fincatch/fincatch/internal/client/client"
	"github.com/fincatch/fincatch/internal/client/config"
	"github.com/fincatch/fincatch/internal/client/sync"
	"github.com/fincatch/fincatch/internal/logging"
	_ "modernc.org/sqlite"
)

func main() {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log logging.Logger) error {
	cfg := config.LoadConfig()

	db, repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.ServerURL == "" {
		log.Info(ctx, "no sync server configured, local store is ready", "db", cfg.DatabasePath)
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	tokens := auth.NewService(cfg.ServerURL, cfg.AppID, cfg.APIKey, httpClient, log)

	// Credentials come from the environment: either a ready token pair or
	// an email/password login.
	if access := os.Getenv("FINCATCH_ACCESS_TOKEN"); access != "" {
		tokens.SetTokens(access, os.Getenv("FINCATCH_REFRESH_TOKEN"))
	} else if email := os.Getenv("FINCATCH_EMAIL"); email != "" {
		if err := tokens.Login(ctx, email, os.Getenv("FINCATCH_PASSWORD")); err != nil {
			return err
		}
	}

	deltaClient := client.NewHTTPClient(cfg.ServerURL, cfg.AppID, cfg.APIKey, tokens, httpClient, log)
	engine := sync.NewService(cfg.ServerURL, deltaClient, tokens, repos, log)

	status, err := engine.Status(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, "sync status",
		"authenticated", status.Authenticated, "pendingChanges", status.PendingChanges)

	result, err := engine.SyncNow(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, "sync complete",
		"pushed", result.Pushed, "pulled", result.Pulled, "conflicts", result.Conflicts)
	return nil
}
