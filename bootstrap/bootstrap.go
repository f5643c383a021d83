// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/adapters/auth"
	"github.com/slavayosome/seriously-ai-sub000/adapters/clock"
	guardhttp "github.com/slavayosome/seriously-ai-sub000/adapters/http"
	"github.com/slavayosome/seriously-ai-sub000/adapters/idgen"
	"github.com/slavayosome/seriously-ai-sub000/adapters/memory"
	"github.com/slavayosome/seriously-ai-sub000/adapters/metrics"
	"github.com/slavayosome/seriously-ai-sub000/adapters/sqlite"
	"github.com/slavayosome/seriously-ai-sub000/adapters/webhook"
	"github.com/slavayosome/seriously-ai-sub000/app"
	"github.com/slavayosome/seriously-ai-sub000/config"
	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	domainwebhook "github.com/slavayosome/seriously-ai-sub000/domain/webhook"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// App represents the running application.
type App struct {
	Logger  zerolog.Logger
	Config  *config.Holder
	DB      *sqlite.DB
	Metrics *metrics.Collector
	Monitor *app.Monitor
	Guard   *app.Guard

	HTTPServer *http.Server

	classifier  *app.Classifier
	costs       *app.CreditConfig
	sessions    ports.SessionStore
	wallets     ports.WalletStore
	alerts      *app.AlertNotifier
	alertCancel context.CancelFunc
}

// New creates and initializes the application from a config file path.
// An empty path falls back to environment-only configuration.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing guard")

	a := &App{Logger: logger}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			holder, err := config.NewHolder(configPath, logger)
			if err != nil {
				return nil, fmt.Errorf("config holder: %w", err)
			}
			a.Config = holder
			cfg = holder.Get()
		}
	}

	if err := a.initStores(cfg); err != nil {
		return nil, fmt.Errorf("init stores: %w", err)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.initServices(cfg)
	a.initAlerting(cfg)
	a.initHTTPServer(cfg)
	a.wireReload()

	return a, nil
}

func (a *App) initStores(cfg *config.Config) error {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.wallets = sqlite.NewWalletStore(db)
		a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("database initialized")
	default:
		a.wallets = memory.NewWalletStore()
	}

	switch cfg.Auth.Mode {
	case "jwt":
		a.sessions = auth.NewSessionStore(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	case "sqlite":
		a.sessions = sqlite.NewSessionStore(a.DB, clock.Real{})
	default:
		a.sessions = memory.NewSessionStore()
	}

	return nil
}

func (a *App) initServices(cfg *config.Config) {
	clk := clock.Real{}

	thresholds := app.DefaultThresholds()
	thresholds.MaxErrorRate = cfg.Monitoring.ErrorRatePercent / 100
	thresholds.MinCacheHitRate = cfg.Monitoring.CacheHitPercent / 100
	thresholds.MemoryCeilingMB = cfg.Monitoring.MemoryMB
	thresholds.SlowRequestMs = float64(cfg.Monitoring.SlowRequestMillis)
	a.Monitor = app.NewMonitor(thresholds, clk, a.Logger)

	// Cache events feed the monitor and, when enabled, Prometheus.
	var recorder ports.CacheRecorder = a.Monitor
	var outcomes ports.OutcomeRecorder
	if a.Metrics != nil {
		recorder = metrics.NewCacheRecorder(a.Metrics, a.Monitor)
		outcomes = a.Metrics
	}

	a.costs = app.NewCreditConfig(cfg.Credits.Costs, a.Logger)
	a.costs.SetDefaultCost(cfg.Credits.DefaultCost)
	for _, p := range cfg.Credits.Pipelines {
		a.costs.RegisterPipelineCost(p.ID, p.Cost)
	}

	a.classifier = app.NewClassifier(patternTable(cfg.Routes), cfg.Caches.RouteSize, recorder, a.Logger)

	credits := app.NewLedgerChecker(app.LedgerDeps{
		Wallets:  a.wallets,
		Costs:    a.costs,
		TTL:      cfg.Caches.WalletTTL,
		Recorder: recorder,
		Outcomes: outcomes,
		Logger:   a.Logger,
	})
	plans := app.NewAccessChecker(app.AccessDeps{
		Wallets:  a.wallets,
		TTL:      cfg.Caches.TierTTL,
		Recorder: recorder,
		Outcomes: outcomes,
		Logger:   a.Logger,
	})

	// Wallet mutations invalidate both caches immediately.
	if ws, ok := a.wallets.(*memory.WalletStore); ok {
		ws.OnMutation(func(userID string) {
			credits.Invalidate(userID)
			plans.Invalidate(userID)
		})
	}

	redirector := app.NewRedirector(app.Destinations{
		Login:       cfg.Destinations.Login,
		Signup:      cfg.Destinations.Signup,
		VerifyEmail: cfg.Destinations.VerifyEmail,
		Billing:     cfg.Destinations.Billing,
		Pricing:     cfg.Destinations.Pricing,
	}, clk, a.Logger)

	errorHandler := app.NewErrorHandler(app.ErrorHandlerDeps{
		Redirector: redirector,
		IDGen:      idgen.UUID{},
		Clock:      clk,
		Outcomes:   outcomes,
		Logger:     a.Logger,
		Critical:   a.Logger,
	})

	a.Guard = app.NewGuard(app.GuardDeps{
		Classifier: a.classifier,
		Credits:    credits,
		Plans:      plans,
		Costs:      a.costs,
		Redirector: redirector,
		Errors:     errorHandler,
		Monitor:    a.Monitor,
		Sessions:   a.sessions,
		Clock:      clk,
		IDGen:      idgen.UUID{},
		Logger:     a.Logger,
	})
}

// initAlerting wires the alert webhook notifier when endpoints are
// configured.
func (a *App) initAlerting(cfg *config.Config) {
	if !cfg.Alerting.Enabled || len(cfg.Alerting.Webhooks) == 0 {
		return
	}

	sender := webhook.NewSender(AlertEndpoints(cfg), clock.Real{}, a.Logger)
	a.alerts = app.NewAlertNotifier(app.AlertDeps{
		Monitor:    a.Monitor,
		Dispatcher: sender,
		IDGen:      idgen.UUID{},
		Clock:      clock.Real{},
		Logger:     a.Logger,
		Interval:   cfg.Alerting.Interval,
	})
	a.Logger.Info().Int("endpoints", len(cfg.Alerting.Webhooks)).Msg("alert webhooks enabled")
}

// AlertEndpoints builds the webhook endpoint set from configuration.
// Endpoints without an explicit event list receive all alert transitions.
func AlertEndpoints(cfg *config.Config) []domainwebhook.Endpoint {
	endpoints := make([]domainwebhook.Endpoint, 0, len(cfg.Alerting.Webhooks))
	for i, hook := range cfg.Alerting.Webhooks {
		events := make([]domainwebhook.EventType, 0, len(hook.Events))
		for _, e := range hook.Events {
			events = append(events, domainwebhook.EventType(e))
		}
		if len(events) == 0 {
			events = []domainwebhook.EventType{
				domainwebhook.EventAlertCritical,
				domainwebhook.EventAlertWarning,
				domainwebhook.EventAlertResolved,
			}
		}
		endpoints = append(endpoints, domainwebhook.Endpoint{
			ID:         fmt.Sprintf("ep_%d", i),
			Name:       hook.Name,
			URL:        hook.URL,
			Secret:     hook.Secret,
			Events:     events,
			RetryCount: 3,
			Enabled:    true,
		})
	}
	return endpoints
}

func (a *App) initHTTPServer(cfg *config.Config) {
	guardHandler := guardhttp.NewGuardHandler(a.Guard, cfg.Auth.CookieName, a.Logger)
	if a.Metrics != nil {
		guardHandler.SetMetrics(a.Metrics)
	}

	var pinger guardhttp.Pinger
	if a.DB != nil {
		pinger = a.DB
	}
	healthHandler := guardhttp.NewHealthHandler(pinger)

	routerCfg := guardhttp.RouterConfig{
		Metrics:       a.Metrics,
		EnableOpenAPI: cfg.OpenAPI.Enabled,
	}
	if cfg.Monitoring.Enabled {
		routerCfg.Monitoring = guardhttp.NewMonitoringHandler(a.Monitor)
	}

	router := guardhttp.NewRouter(guardHandler, healthHandler, a.Logger, routerCfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// wireReload applies reloadable config fields when the holder refreshes.
func (a *App) wireReload() {
	if a.Config == nil {
		return
	}
	a.Config.OnChange(func(cfg *config.Config) {
		a.classifier.SetPatterns(patternTable(cfg.Routes))
		a.costs.SetDefaultCost(cfg.Credits.DefaultCost)
		for _, p := range cfg.Credits.Pipelines {
			a.costs.RegisterPipelineCost(p.ID, p.Cost)
		}
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
		if a.alerts != nil {
			a.alerts.Notify(context.Background(), domainwebhook.EventConfigReload, map[string]interface{}{
				"defaultCost": cfg.Credits.DefaultCost,
				"pipelines":   len(cfg.Credits.Pipelines),
			})
		}
		a.Logger.Info().Msg("applied reloaded configuration")
	})
	if a.Metrics != nil {
		a.Config.OnError(func(error) {
			a.Metrics.ConfigReloadErrors.Inc()
		})
	}
}

// patternTable maps the config route lists onto the classifier's table,
// falling back to the built-in patterns when nothing is configured.
func patternTable(routes config.RoutesConfig) protection.PatternTable {
	if routes.Empty() {
		return protection.DefaultPatterns()
	}
	return protection.PatternTable{
		Paid:          routes.Paid,
		Authenticated: routes.Authenticated,
		Public:        routes.Public,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.Config != nil {
		if err := a.Config.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		a.Config.WatchSignals()
	}

	if a.alerts != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.alertCancel = cancel
		go a.alerts.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Config != nil {
		a.Config.Stop()
	}

	if a.alertCancel != nil {
		a.alertCancel()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).
			Level(level).With().Timestamp().Logger()
	}
	return logger
}
