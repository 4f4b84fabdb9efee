package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/listonic-sync/internal/api"
	"github.com/stacklok/listonic-sync/internal/config"
	"github.com/stacklok/listonic-sync/internal/registry"
	"github.com/stacklok/listonic-sync/internal/service"
	"github.com/stacklok/listonic-sync/internal/status"
	"github.com/stacklok/listonic-sync/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 35 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// SyncAppOptions is a function that configures the sync app builder
type SyncAppOptions func(*syncAppConfig) error

// syncAppConfig supports dependency injection for testing while providing
// sensible defaults for production
type syncAppConfig struct {
	config        *config.Config
	configManager config.Manager

	// Optional component overrides (primarily for testing)
	clientFactory ClientFactory
	persistence   status.StatusPersistence
	setupRetry    SetupRetry

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	dataDir string

	telemetry *telemetry.Telemetry
}

func baseConfig(opts ...SyncAppOptions) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		setupRetry:     DefaultSetupRetry,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewSyncApp wires every component from the given options
func NewSyncApp(ctx context.Context, opts ...SyncAppOptions) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.config == nil && cfg.configManager != nil {
		cfg.config = cfg.configManager.GetConfig()
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.dataDir == "" {
		cfg.dataDir = cfg.config.GetDataDir()
	}

	lock, err := lockDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			_ = lock.Unlock()
		}
	}()

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.config.Telemetry))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	reg := registry.New()

	accounts, err := buildAccounts(cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build account components: %w", err)
	}

	var directory service.AccountDirectory = cfg.config
	if cfg.configManager != nil {
		directory = cfg.configManager
	}
	svc := service.NewListService(reg, service.WithAccountDirectory(directory))

	httpServer, err := buildHTTPServer(cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	return &SyncApp{
		config:        cfg.config,
		configManager: cfg.configManager,
		registry:      reg,
		accounts:      accounts,
		service:       svc,
		telemetry:     cfg.telemetry,
		httpServer:    httpServer,
		lock:          lock,
		ctx:           appCtx,
		cancelFunc:    cancel,
	}, nil
}

// WithConfig sets a static configuration
func WithConfig(c *config.Config) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithConfigManager sets a watched configuration; changes are applied to running accounts
func WithConfigManager(m config.Manager) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.configManager = m
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		parts := strings.SplitN(addr, ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		host, port := parts[0], parts[1]

		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithDataDirectory overrides the directory for status files and the instance lock
func WithDataDirectory(dir string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.dataDir = dir
		return nil
	}
}

// WithClientFactory allows injecting a custom remote client factory (for testing)
func WithClientFactory(f ClientFactory) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.clientFactory = f
		return nil
	}
}

// WithStatusPersistence allows injecting a custom status persistence (for testing)
func WithStatusPersistence(p status.StatusPersistence) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.persistence = p
		return nil
	}
}

// WithSetupRetry sets the retry policy of the first refresh
func WithSetupRetry(r SetupRetry) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if r.InitialInterval <= 0 || r.MaxInterval < r.InitialInterval {
			return fmt.Errorf("invalid setup retry policy: initial %s, max %s", r.InitialInterval, r.MaxInterval)
		}
		cfg.setupRetry = r
		return nil
	}
}

// WithTelemetry sets already initialized telemetry providers
func WithTelemetry(t *telemetry.Telemetry) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildAccounts builds the account manager and its metrics
func buildAccounts(b *syncAppConfig, reg *registry.Registry) (*Accounts, error) {
	slog.Info("Initializing account components")

	meterProvider := b.telemetry.MeterProvider()

	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	if b.clientFactory == nil {
		remoteMetrics, err := telemetry.NewRemoteMetrics(meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote metrics: %w", err)
		}
		b.clientFactory = NewClientFactory(b.telemetry.TracerProvider(), remoteMetrics)
	}

	if b.persistence == nil {
		b.persistence = status.NewFileStatusPersistence(b.dataDir)
	}

	return NewAccounts(reg, b.clientFactory, b.persistence, syncMetrics, b.setupRetry), nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *syncAppConfig, svc service.ListService) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing come first to capture every request
	metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	b.middlewares = append([]func(http.Handler) http.Handler{
		metricsMiddleware,
		telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
	}, b.middlewares...)

	router := api.NewServer(svc,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.telemetry.MetricsHandler()),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
