package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0097eo/chama-web/internal/api"
	"github.com/0097eo/chama-web/internal/app"
	"github.com/0097eo/chama-web/internal/cache"
	"github.com/0097eo/chama-web/internal/credential"
	"github.com/0097eo/chama-web/internal/logging"
	"github.com/0097eo/chama-web/internal/model"
	"github.com/0097eo/chama-web/internal/realtime"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chama-web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := logging.Init(logging.DefaultLogPath()); err != nil {
		// Not fatal; the app just runs without a log file.
		fmt.Fprintf(os.Stderr, "chama-web: logging disabled: %v\n", err)
	}

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// A stored session token is validated against the server before the
	// UI starts; an invalid one falls back to the login screen.
	token, _ := credential.Get(credential.KeySessionToken)
	client := api.NewClient(cfg.API.BaseURL, token, time.Duration(cfg.API.TimeoutSec)*time.Second)

	var user *model.User
	if token != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		u, err := client.Me(ctx)
		cancel()
		switch {
		case err == nil:
			user = u
		case api.IsAuthError(err):
			logging.Info().Msg("stored session expired")
			_ = credential.Delete(credential.KeySessionToken)
			token = ""
			client.SetToken("")
		default:
			// Server unreachable; keep the token and let the app start
			// logged in against the cache-and-retry paths.
			logging.Warn().Err(err).Msg("session check failed, continuing offline")
			user = &model.User{}
		}
	}

	store := cache.New(cache.Config{Fetch: client.ListNotifications})

	wsURL, err := realtime.ResolveWSURL(cfg.API.WSURL, cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("resolving push endpoint: %w", err)
	}
	manager := realtime.NewManager(store, wsURL)
	defer manager.Release()

	m := app.New(cfg, client, store, manager, user, token)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
