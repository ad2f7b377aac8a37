package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/internal/config"
	"github.com/far7tna/portal/metrics"
	"github.com/far7tna/portal/refresh"
	"github.com/far7tna/portal/storage"
)

// app is the wired session pipeline every command works through.
type app struct {
	cfg      config.Config
	backend  storage.Backend
	store    *credentials.Store
	auth     *apiclient.AuthAPI
	client   *apiclient.Client
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

func newApp(cfg config.Config) (*app, error) {
	backend, err := storage.New(storageConfig(cfg))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metrics.WithRegistry(registry))

	store := credentials.NewStore(backend)
	// The auth endpoints use a plain client so a rejected exchange never refreshes.
	auth := apiclient.NewAuthAPI(cfg.GetAPIBaseURL(), &http.Client{Timeout: cfg.GetHTTPTimeout()})
	coord := refresh.NewCoordinator(store, auth,
		refresh.WithTimeout(cfg.GetRefreshTimeout()),
		refresh.WithMetrics(m),
	)

	return &app{
		cfg:      cfg,
		backend:  backend,
		store:    store,
		auth:     auth,
		client:   apiclient.NewClient(cfg.GetAPIBaseURL(), apiclient.NewHTTPClient(store, coord, cfg.GetHTTPTimeout(), m)),
		metrics:  m,
		registry: registry,
	}, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(ctx context.Context, opts *rootOptions, fn func(context.Context, *app) error) error {
	a, err := newApp(opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func storageConfig(cfg config.StorageConfig) storage.Config {
	return storage.Config{
		Driver: cfg.GetCredentialsDriver(),
		File:   &storage.FileConfig{Path: cfg.GetCredentialsFile()},
		Redis: &storage.RedisConfig{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
			Prefix:   cfg.GetRedisPrefix(),
		},
		SQLite: &storage.SQLiteConfig{DSN: cfg.GetSQLiteDSN()},
	}
}
