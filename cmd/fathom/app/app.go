// Package app assembles the process: configuration, engine registry,
// outgoing client, executor, plugins and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fathomsearch/fathom/modules/autocomplete"
	"github.com/fathomsearch/fathom/modules/cache"
	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/frontend"
	"github.com/fathomsearch/fathom/modules/plugin"
	"github.com/fathomsearch/fathom/modules/search"
	"github.com/fathomsearch/fathom/pkg/httpclient"
	"github.com/fathomsearch/fathom/pkg/util/log"

	_ "github.com/fathomsearch/fathom/modules/engine/engines" // register engine factories
)

// App owns every long lived component of the process.
type App struct {
	cfg Config

	registry *engine.Registry
	store    cache.Cache
	server   *http.Server
}

// New wires the full pipeline from config.
func New(cfg Config) (*App, error) {
	registry, err := engine.Load(cfg.Engines)
	if err != nil {
		return nil, errors.Wrap(err, "loading engines")
	}

	client, err := httpclient.New(cfg.Outgoing)
	if err != nil {
		return nil, errors.Wrap(err, "building outgoing client")
	}

	executor := search.NewExecutor(cfg.Search, registry, client)

	store, err := cache.New(cfg.Frontend.Cache, log.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "building cache")
	}

	completer, err := autocomplete.New(cfg.Autocomplete, client, store)
	if err != nil {
		return nil, errors.Wrap(err, "building autocomplete")
	}

	pipeline, err := plugin.NewPipeline(cfg.Plugins)
	if err != nil {
		return nil, errors.Wrap(err, "building plugin pipeline")
	}

	fe := frontend.New(cfg.Frontend, registry, executor, completer, pipeline, store, log.Logger)

	router := mux.NewRouter()
	fe.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.HTTPListenAddress, cfg.Server.HTTPListenPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		registry: registry,
		store:    store,
		server:   server,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		level.Info(log.Logger).Log("msg", "http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	level.Info(log.Logger).Log("msg", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.GracefulShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.store.Stop()
	return err
}
