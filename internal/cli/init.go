// Package cli provides the initialization steps shared by the fintrack
// commands: environment, logging, configuration, storage and the advisor.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/advisor"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// LoadEnvFile loads a .env file from the working directory when present.
// A missing file is not an error.
func LoadEnvFile(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// SetupLogger builds a text logger on stderr at the given level and installs
// it as the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitBackend opens the storage backend selected by cfg.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

// InitAdvisor builds the tips gateway. Without an API key the gateway serves
// the local pool only; a failure to build the remote client is logged and
// handled the same way.
func InitAdvisor(ctx context.Context, logger *log.Logger, cfg *config.Config) *advisor.Gateway {
	opts := []advisor.GatewayOption{
		advisor.WithLogger(logger),
		advisor.WithTimeout(cfg.TipsTimeout),
		advisor.WithConnectivity(advisor.Static(!cfg.Offline)),
	}
	if cfg.TipsCacheSize > 0 {
		opts = append(opts, advisor.WithCache(cache.NewLRU[[]string](cfg.TipsCacheSize, cfg.TipsCacheTTL)))
	}

	if !cfg.AdvisorEnabled() {
		return advisor.NewGateway(nil, opts...)
	}

	remote, err := advisor.NewGeminiAdvisor(advisor.GeminiConfig{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		Endpoint: cfg.GeminiEndpoint,
	})
	if err != nil {
		logger.WarnContext(ctx, "Remote advisor unavailable, using local tips", log.FieldError, err)
		return advisor.NewGateway(nil, opts...)
	}
	return advisor.NewGateway(remote, opts...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
