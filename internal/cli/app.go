package cli

import (
	"path/filepath"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
	"gearhub-client/internal/config"
	"gearhub-client/internal/resources"
	"gearhub-client/internal/session"
	"gearhub-client/internal/storage"

	"go.uber.org/zap"
)

// App wires the client stack together: one session store, one HTTP
// client, one query cache, one resource registry.
type App struct {
	Cfg       config.AppConfig
	Logger    *zap.Logger
	Session   *session.Store
	API       *api.Client
	Cache     *cache.Cache
	Resources *resources.Registry
	Scratch   *storage.Scratch
}

func NewApp() (*App, error) {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	ring, err := session.OpenKeyring(cfg.KeyringName, cfg.StateDir)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(ring, filepath.Join(cfg.StateDir, "auth.json"), logger)
	store.Rehydrate()

	client := api.New(cfg.APIBaseURL, store, cfg.RequestTimeout, logger)
	qc := cache.New(cfg.CacheGCGrace, logger)

	return &App{
		Cfg:       cfg,
		Logger:    logger,
		Session:   store,
		API:       client,
		Cache:     qc,
		Resources: resources.NewRegistry(client, qc),
		Scratch:   storage.NewScratch(filepath.Join(cfg.StateDir, "scratch")),
	}, nil
}
