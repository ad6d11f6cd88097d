package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/pixelgrid/internal/cache"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/engine"
	"github.com/specialistvlad/pixelgrid/internal/metrics"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/modules"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	gatherer   *prometheus.Registry
	metrics    *metrics.Metrics
	engine     *engine.Engine
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own logger, registry, metrics and engine. With
// no modules given, the builtin ones are registered.
//
// An invalid registry is a programmer error and panics.
func NewApp(outW io.Writer, cfg *Config, mods ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(mods) == 0 {
		mods = modules.Core()
	}
	for _, mod := range mods {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "modules", len(mods), "operations", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	reg.Freeze()
	logger.Debug("Registry validation passed.")

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector())
	m := metrics.New(gatherer)

	return &App{
		outW:     outW,
		ctx:      ctx,
		logger:   logger,
		config:   cfg,
		registry: reg,
		gatherer: gatherer,
		metrics:  m,
		engine: engine.New(
			engine.WithCache(cache.New(cache.DefaultConfig(), cache.WithMetrics(m))),
			engine.WithMetrics(m),
		),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}
