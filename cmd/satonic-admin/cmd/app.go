package cmd

import (
	"fmt"

	"github.com/goodsign/monday"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/config"
	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/services"
	"github.com/satonic/satonic-admin/internal/store"
)

// app bundles the components every command needs
type app struct {
	cfg      *config.Config
	provider logging.Provider
	db       *store.Database
	sessions *services.SessionService
	client   *api.Client
	format   api.TimestampFormatter
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	provider, err := logging.NewGlogProvider(logging.GlogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	db, err := store.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessionService(
		store.NewSessionRepository(db),
		logging.ModuleLogger(provider, "session"),
	)

	format := api.TimestampFormatter{
		Locale:   monday.Locale(cfg.Display.Locale),
		Location: cfg.Display.Location(),
	}
	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(sessions),
		api.WithUnauthorizedHook(sessions.Expire),
		api.WithLogger(logging.ModuleLogger(provider, "api")),
		api.WithTimestampFormatter(format),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return &app{
		cfg:      cfg,
		provider: provider,
		db:       db,
		sessions: sessions,
		client:   client,
		format:   format,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
