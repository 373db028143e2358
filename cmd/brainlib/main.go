// Brainlib is an HTTP gateway over a hosted retrieval service. It creates
// vector stores, uploads documents into them, answers questions with the
// file_search tool and reports ingestion status.
//
// Configuration is loaded from environment variables, optionally layered on a
// YAML file. See internal/config for details. OPENAI_API_KEY is required.
//
// Usage:
//
//	# Start the gateway on :8000
//	OPENAI_API_KEY=sk-... brainlib
//
//	# Start with a config file
//	brainlib --config ~/.config/brainlib/config.yaml
//
//	# Print build information
//	brainlib version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/brainlib/internal/config"
	httpserver "github.com/fyrsmithlabs/brainlib/internal/http"
	"github.com/fyrsmithlabs/brainlib/internal/library"
	"github.com/fyrsmithlabs/brainlib/internal/logging"
	"github.com/fyrsmithlabs/brainlib/internal/openai"
	"github.com/fyrsmithlabs/brainlib/internal/secrets"
	"github.com/fyrsmithlabs/brainlib/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "brainlib",
		Short:         "HTTP gateway for a hosted document question-answering service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			err = run(ctx, cfg)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "YAML config file (must live in ~/.config/brainlib or /etc/brainlib)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	})

	return root
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "brainlib\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}

// loadConfig reads configuration from the file when a path is given, and
// from the environment alone otherwise. Both paths validate.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadWithFile(path)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run wires the gateway and blocks until ctx is cancelled.
//
//  1. Initializes telemetry and the logger
//  2. Creates the provider client and library service
//  3. Starts the HTTP server and shuts it down on cancellation
//
// Returns http.ErrServerClosed on graceful shutdown.
func run(ctx context.Context, cfg *config.Config) error {
	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Observability, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	logger, err := initLogger(cfg, tel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if health := tel.Health(); health.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.String("reason", health.Reason))
	}

	logger.Info(ctx, "starting brainlib",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("model", cfg.Provider.Model),
		zap.Bool("telemetry", tel.IsEnabled()),
		zap.Bool("scan_secrets", cfg.Upload.ScanSecrets),
	)

	client, err := openai.New(openai.ConfigFromApp(cfg.Provider),
		openai.WithTracerProvider(tel.TracerProvider()),
	)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	svc := library.NewService(client, logger, library.Config{
		DefaultStoreName: cfg.Provider.DefaultStoreName,
	})

	var guard httpserver.UploadGuard
	if cfg.Upload.ScanSecrets {
		detector, err := secrets.New(secrets.FromAppConfig(cfg.Upload))
		if err != nil {
			return fmt.Errorf("failed to create secret detector: %w", err)
		}
		guard = detector
	}

	srv, err := httpserver.NewServer(svc, guard, logger.Underlying(), &httpserver.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		BodyLimit:       cfg.Server.BodyLimit,
		Service:         cfg.Observability.ServiceName,
		Version:         version,
		Meter:           tel.Meter("github.com/fyrsmithlabs/brainlib/internal/http"),
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	err = srv.Start(ctx)
	logger.Info(context.Background(), "brainlib stopped")
	return err
}

// initLogger builds the structured logger. Records are also bridged to OTEL
// when telemetry is enabled.
func initLogger(cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	logCfg, err := logging.FromAppConfig(cfg.Logging, cfg.Observability.ServiceName)
	if err != nil {
		return nil, err
	}
	logCfg.Fields["version"] = version

	if tel.IsEnabled() {
		logCfg.Output.OTEL = true
		return logging.NewLogger(logCfg, tel.LoggerProvider())
	}
	return logging.NewLogger(logCfg, nil)
}
