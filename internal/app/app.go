package app

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/traverse/internal/config"
	"github.com/vk/traverse/internal/sink"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	registry   *prometheus.Registry
	metrics    *sink.Metrics
	runID      string
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Visit lines go to outW
// and logs to logW. A nil loader selects the built-in loaders by file
// extension. Every App owns its logger and metrics registry, so several may
// coexist in one process.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = coreLoaders()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
		metrics:  sink.NewMetrics(reg),
		runID:    runID,
	}
}

// RunID returns the identifier attached to every log record of this App.
func (a *App) RunID() string {
	return a.runID
}

// Registry returns the application's metrics registry. This is primarily for testing.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}
