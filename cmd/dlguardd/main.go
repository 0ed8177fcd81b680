package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haukened/dlguard/internal/guard/common/clock"
	"github.com/haukened/dlguard/internal/guard/common/log"
	"github.com/haukened/dlguard/internal/guard/config"
	"github.com/haukened/dlguard/internal/guard/gateways/api"
	"github.com/haukened/dlguard/internal/guard/gateways/browser"
	"github.com/haukened/dlguard/internal/guard/gateways/store/bolt"
	"github.com/haukened/dlguard/internal/guard/repos/history"
	"github.com/haukened/dlguard/internal/guard/repos/whitelist"
	"github.com/haukened/dlguard/internal/guard/services/interceptor"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "dlguardd"

	// Default timeouts
	defaultBridgeTimeout   = 5 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the download guard daemon.
type Application struct {
	config *config.AppConfig
	server *api.Server
	store  *bolt.Store
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"port":       cfg.Port,
		"db_path":    cfg.DBPath,
		"bridge_url": cfg.BridgeURL,
	}, "Starting download guard")

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "Download guard stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Build repository layer
	repos, store, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	// Build gateway layer
	bridge, err := browser.New(browser.Options{
		BaseURL: cfg.BridgeURL,
		Timeout: defaultBridgeTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build bridge gateway: %w", err)
	}

	// Build service layer
	interceptorService, err := interceptor.New(interceptor.Options{
		Trust:      repos.whitelist,
		History:    repos.history,
		Controller: bridge,
		Notifier:   bridge,
		Clock:      clk,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build interceptor: %w", err)
	}

	// Build the HTTP surface
	server := api.New(api.Options{
		Interceptor: interceptorService,
		Whitelist:   repos.whitelist,
		History:     repos.history,
		Logger:      logger,
	})

	return &Application{
		config: cfg,
		server: server,
		store:  store,
	}, nil
}

// repositories holds all repository implementations
type repositories struct {
	whitelist *whitelist.Repo
	history   *history.Log
}

// buildRepositories opens the persistent store and loads both repos from it.
func buildRepositories(cfg *config.AppConfig, logger log.Logger) (*repositories, *bolt.Store, error) {
	store, err := bolt.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}

	// Merge the default seed domains with any persisted set
	whitelistRepo := whitelist.New(store, logger)
	if err := whitelistRepo.Initialize(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to initialize whitelist: %w", err)
	}

	historyLog := history.New(store, logger)
	if err := historyLog.Load(); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to load download history: %w", err)
	}

	log.Info(map[string]any{
		"trusted_domains": whitelistRepo.Len(),
		"history_entries": historyLog.Len(),
	}, "State store loaded")

	return &repositories{
		whitelist: whitelistRepo,
		history:   historyLog,
	}, store, nil
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (app *Application) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", app.config.Port)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.server.Run(addr)
	}()

	log.Info(map[string]any{"address": addr}, "HTTP API started")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	log.Info(nil, "Shutdown initiated")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		log.Warn(map[string]any{"error": err}, "Error during server shutdown")
	}

	if err := app.store.Close(); err != nil {
		log.Warn(map[string]any{"error": err}, "Error closing state store")
	}

	select {
	case <-errChan:
	case <-shutdownCtx.Done():
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}

	log.Info(nil, "Graceful shutdown completed")
	return nil
}
