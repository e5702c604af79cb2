package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-pagedata/pkg/pagedata/api"
	"github.com/tendant/simple-pagedata/pkg/pagedata/config"
	"github.com/tendant/simple-pagedata/pkg/pagedata/metrics"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	rt, err := cfg.BuildController(context.Background())
	if err != nil {
		slog.Error("Failed to build page data controller", "err", err)
		os.Exit(1)
	}
	defer rt.Close()

	logger := rt.Logger
	slog.SetDefault(logger)
	if rt.TokenAuth == nil {
		logger.Warn("PAGEDATA_JWT_SECRET not set, editor actions will reject every request")
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Route("/ajax", func(r chi.Router) {
		r.Use(middleware.RealIP)
		r.Use(api.RequestIDMiddleware)
		r.Use(api.RecoveryMiddleware(logger))
		r.Use(api.LoggingMiddleware(logger))
		r.Mount("/", rt.Handler(cfg.MaxBodyBytes).Routes())
	})

	if rt.Registry != nil {
		server.R.Handle("/metrics", metrics.Handler(rt.Registry))
	}

	// Filesystem uploads are served directly when they live under a local path
	if cfg.StorageBackend == "fs" && strings.HasPrefix(cfg.StorageBaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.StorageBaseURL, "/")
		server.R.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.FSBaseDir))))
	}

	logger.Info("Page data server starting",
		"environment", cfg.Environment,
		"database", cfg.DatabaseType,
		"storage", cfg.StorageBackend,
		"actions", rt.Dispatcher.Actions(),
	)

	server.Run()
}
