package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/health"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
	i18nmw "github.com/HarshaM0211/jira-software/pkg/middleware/i18n"
	"github.com/HarshaM0211/jira-software/pkg/middleware/logging"
	metricsmw "github.com/HarshaM0211/jira-software/pkg/middleware/metrics"
	"github.com/HarshaM0211/jira-software/pkg/middleware/recovery"
	"github.com/HarshaM0211/jira-software/pkg/middleware/requestid"
	"github.com/HarshaM0211/jira-software/pkg/middleware/requestsize"
	tracingmw "github.com/HarshaM0211/jira-software/pkg/middleware/tracing"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/observability/metrics"
	"github.com/HarshaM0211/jira-software/pkg/observability/tracing"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
	"github.com/HarshaM0211/jira-software/pkg/server/router/factory"
	"github.com/HarshaM0211/jira-software/pkg/version"
)

// LifecycleHook defines a named startup/shutdown action.
type LifecycleHook struct {
	Name string
	Fn   func(context.Context) error
}

// Options defines the inputs of NewApp. Only Config is required.
type Options struct {
	Config *config.Config

	// Router is optional. If nil, a router is created from Config.RouterType.
	Router router.Router

	Logger logger.Logger

	// Catalog localises error messages; nil loads the embedded catalog.
	Catalog *i18n.Catalog

	HealthRegistry  *health.Registry
	MetricsRegistry *metrics.Registry

	StartupHooks        []LifecycleHook
	ShutdownHooks       []LifecycleHook
	ShutdownHookTimeout time.Duration
}

// App is the assembled HTTP API. Entity controllers register on Router
// after NewApp so the middleware stack applies to them.
type App struct {
	Router  router.Router
	Health  *health.Registry
	Metrics *metrics.Registry
	Server  *Server

	opts    Options
	version version.Info
}

// NewApp builds the router with the middleware stack and mounts /health,
// /version and, when enabled, the metrics endpoint.
//
// Cosa fa: request id, recovery, tracing, access log, metriche HTTP, locale e
// limite del body vengono applicati in quest'ordine a tutte le rotte.
// Cosa NON fa: non apre connessioni al database; i checker vanno registrati su App.Health.
// Esempio minimo: app, err := server.NewApp(server.Options{Config: cfg, Logger: log})
func NewApp(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Router == nil {
		r, err := factory.NewRouter(opts.Config.RouterType)
		if err != nil {
			return nil, fmt.Errorf("create router: %w", err)
		}
		opts.Router = r
	}
	if opts.Catalog == nil {
		catalog, err := i18n.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("load i18n catalog: %w", err)
		}
		opts.Catalog = catalog
	}
	if opts.HealthRegistry == nil {
		opts.HealthRegistry = health.NewRegistry()
	}
	if opts.MetricsRegistry == nil {
		opts.MetricsRegistry = metrics.NewRegistry()
	}

	obs := opts.Config.Observability
	metricsPath := strings.TrimSpace(obs.MetricsPath)
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	operational := []string{"/health", "/version", metricsPath}

	r := opts.Router
	r.Use(
		requestid.RequestID(),
		recovery.Recovery(opts.Logger),
		tracingmw.Tracing(tracingmw.Config{ExcludedPathPrefixes: operational}),
		logging.WithConfig(opts.Logger, logging.Config{Enabled: true, ExcludedPathPrefixes: operational}),
	)
	if obs.MetricsEnabled {
		r.Use(metricsmw.Metrics())
	}
	i18nCfg := i18nmw.DefaultConfig()
	i18nCfg.ExcludedPathPrefixes = operational
	r.Use(
		i18nmw.Middleware(opts.Catalog, i18nCfg),
		requestsize.Middleware(opts.Config.HTTP.MaxRequestSize),
	)

	info := version.Current(resolveServiceName(opts.Config))
	r.GET("/health", health.Handler(opts.HealthRegistry))
	r.GET("/version", func(c router.Context) error {
		return c.JSON(http.StatusOK, info)
	})
	if obs.MetricsEnabled {
		handler := opts.MetricsRegistry.Handler()
		r.GET(metricsPath, func(c router.Context) error {
			handler.ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}

	return &App{
		Router:  r,
		Health:  opts.HealthRegistry,
		Metrics: opts.MetricsRegistry,
		Server:  NewServer(ConfigFromHTTP(opts.Config.HTTP), r, opts.Logger),
		opts:    opts,
		version: info,
	}, nil
}

// Run starts tracing and the startup hooks, serves until ctx is cancelled
// and then runs the shutdown hooks.
func (a *App) Run(ctx context.Context) error {
	log := a.opts.Logger
	log.Info("application version metadata",
		"service", a.version.Service,
		"version", a.version.Version,
		"commit", a.version.Commit,
		"build_time", a.version.BuildTime,
	)

	tracerProvider, err := initTracerProvider(ctx, a.opts.Config, a.version)
	if err != nil {
		return fmt.Errorf("initialize tracing provider: %w", err)
	}
	defer shutdownTracerProvider(tracerProvider, log)

	// Shutdown hooks run even when a startup hook fails.
	defer func() {
		if shutdownErr := a.runShutdownHooks(); shutdownErr != nil {
			log.Error("shutdown hooks completed with errors", "error", shutdownErr)
		}
	}()
	if err := a.runStartupHooks(ctx); err != nil {
		return err
	}

	return a.Server.Start(ctx)
}

// RunWithSignals runs the app until one of signals (SIGINT and SIGTERM by
// default) arrives.
func (a *App) RunWithSignals(signals ...os.Signal) error {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()
	return a.Run(ctx)
}

func initTracerProvider(ctx context.Context, cfg *config.Config, info version.Info) (*tracing.TracerProvider, error) {
	obs := cfg.Observability
	return tracing.NewTracerProvider(ctx, tracing.TracerConfig{
		ServiceName:    resolveTracingServiceName(cfg, info.Service),
		ServiceVersion: info.Version,
		Environment:    normalizeEnvironment(cfg.Service.Environment),
		Endpoint:       obs.TracingEndpoint,
		SampleRate:     obs.TracingSampleRate,
		Insecure:       obs.TracingInsecure,
		Enabled:        obs.TracingEnabled,
	})
}

func shutdownTracerProvider(provider *tracing.TracerProvider, log logger.Logger) {
	if provider == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := provider.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown tracing provider", "error", err)
	}
}

func normalizeEnvironment(env string) string {
	if trimmed := strings.TrimSpace(env); trimmed != "" {
		return trimmed
	}
	return version.Unknown
}

func resolveServiceName(cfg *config.Config) string {
	if trimmed := strings.TrimSpace(cfg.Service.Name); trimmed != "" {
		return trimmed
	}
	return version.Unknown
}

func resolveTracingServiceName(cfg *config.Config, fallback string) string {
	if trimmed := strings.TrimSpace(cfg.Observability.ServiceName); trimmed != "" {
		return trimmed
	}
	if trimmed := strings.TrimSpace(fallback); trimmed != "" {
		return trimmed
	}
	return version.Unknown
}

func hookName(hook LifecycleHook) string {
	if name := strings.TrimSpace(hook.Name); name != "" {
		return name
	}
	return "unnamed"
}

func (a *App) runStartupHooks(ctx context.Context) error {
	log := a.opts.Logger
	for _, hook := range a.opts.StartupHooks {
		if hook.Fn == nil {
			continue
		}
		name := hookName(hook)
		log.Info("startup hook start", "hook", name)
		if err := hook.Fn(ctx); err != nil {
			log.Error("startup hook failed", "hook", name, "error", err)
			return fmt.Errorf("startup hook %q failed: %w", name, err)
		}
		log.Info("startup hook complete", "hook", name)
	}
	return nil
}

// runShutdownHooks runs every hook even after a failure and joins the errors.
func (a *App) runShutdownHooks() error {
	log := a.opts.Logger
	timeout := a.opts.ShutdownHookTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var errs []error
	for _, hook := range a.opts.ShutdownHooks {
		if hook.Fn == nil {
			continue
		}
		name := hookName(hook)
		log.Info("shutdown hook start", "hook", name)

		hookCtx, cancel := context.WithTimeout(context.Background(), timeout)
		err := hook.Fn(hookCtx)
		cancel()

		if err != nil {
			log.Error("shutdown hook failed", "hook", name, "error", err)
			errs = append(errs, fmt.Errorf("shutdown hook %q failed: %w", name, err))
			continue
		}
		log.Info("shutdown hook complete", "hook", name)
	}
	return errors.Join(errs...)
}
