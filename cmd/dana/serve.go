package dana

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parsdesk/dana/pkg/config"
	"github.com/parsdesk/dana/pkg/server"
	"github.com/parsdesk/dana/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dana HTTP server",
	Long: `Start the dana HTTP server to provide REST API access to the engine.

The server provides endpoints for:
- Asking support questions (POST /api/v1/ask)
- Ingesting passages (POST /api/v1/ingest/passages)
- Running benchmarks and tuning (POST /api/v1/benchmark, /api/v1/tune)
- Health checks (GET /health, /ready, /live)

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "Server host")
	serveCmd.Flags().Int("port", 8080, "Server port")
	serveCmd.Flags().String("mode", "release", "Server mode (debug, release, test)")
	serveCmd.Flags().String("db-path", "./dana_db", "Corpus database path")

	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.mode", serveCmd.Flags().Lookup("mode"))
	viper.BindPFlag("corpus.path", serveCmd.Flags().Lookup("db-path"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := buildLogger(cfg)
	defer flushTelemetry(logger)

	client, err := initializeClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dana: %w", err)
	}
	defer client.Close()

	var bench *telemetry.BenchmarkWriter
	if cfg.Telemetry.ParquetPath != "" {
		bench, err = telemetry.NewBenchmarkWriter(cfg.Telemetry.ParquetPath)
		if err != nil {
			logger.Warn("benchmark telemetry disabled", "error", err)
		}
	}

	srv := server.New(cfg, client, bench)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
