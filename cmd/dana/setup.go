package dana

import (
	"fmt"
	"log/slog"

	"github.com/parsdesk/dana"
	"github.com/parsdesk/dana/pkg/config"
	"github.com/parsdesk/dana/pkg/corpus"
	"github.com/parsdesk/dana/pkg/embedder"
	"github.com/parsdesk/dana/pkg/llm"
	danaLogger "github.com/parsdesk/dana/pkg/logger"
	"github.com/parsdesk/dana/pkg/telemetry"
	"github.com/parsdesk/dana/pkg/terms"
	"github.com/parsdesk/dana/pkg/types"
)

// buildLogger creates the process logger, wrapping it with the Parquet error
// handler when telemetry is configured.
func buildLogger(cfg *config.Config) *slog.Logger {
	logger := danaLogger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.ParquetPath != "" {
		handler, err := telemetry.NewParquetHandler(logger.Handler(), cfg.Telemetry.ParquetPath)
		if err != nil {
			logger.Warn("failed to initialize error telemetry", "error", err)
			return logger
		}
		logger = slog.New(handler)
	}
	return logger
}

// flushTelemetry persists error records still buffered below the batch size.
// Called on shutdown so short-lived processes do not lose them.
func flushTelemetry(logger *slog.Logger) {
	handler, ok := logger.Handler().(*telemetry.ParquetHandler)
	if !ok {
		return
	}
	if err := handler.Flush(); err != nil {
		logger.Warn("failed to flush error telemetry", "error", err)
	}
}

// initializeClient builds a dana client from configuration.
func initializeClient(cfg *config.Config, logger *slog.Logger) (*dana.Client, error) {
	// Corpus
	var corp corpus.Corpus
	switch cfg.Corpus.Driver {
	case "badger", "":
		store, err := corpus.NewStore(cfg.Corpus.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus store: %w", err)
		}
		corp = store
	case "memory":
		passages, err := corpus.LoadPassages(cfg.Corpus.PassagesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load passages: %w", err)
		}
		mem, err := corpus.NewMemoryCorpus(passages)
		if err != nil {
			return nil, fmt.Errorf("failed to build memory corpus: %w", err)
		}
		corp = mem
	default:
		return nil, fmt.Errorf("unsupported corpus driver: %s", cfg.Corpus.Driver)
	}

	// Completion clients
	llmClient, err := buildLLMClient(cfg, "default", logger)
	if err != nil {
		return nil, err
	}
	judgeClient, err := buildLLMClient(cfg, "judge", logger)
	if err != nil {
		logger.Warn("judge model unavailable, benchmark judging disabled", "error", err)
		judgeClient = nil
	}

	// Embedder
	embedderClient, err := buildEmbedderClient(cfg)
	if err != nil {
		return nil, err
	}

	// Term tables
	var tables *terms.Tables
	if cfg.Corpus.TablesFile != "" {
		tables, err = terms.LoadTables(cfg.Corpus.TablesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load term tables: %w", err)
		}
	}

	clientConfig := &dana.Config{
		Retrieval: types.RetrievalConfig{
			MinConfidence: cfg.Retrieval.MinConfidence,
			Temperature:   cfg.Retrieval.Temperature,
			VectorWeight:  cfg.Retrieval.VectorWeight,
			RecallSize:    cfg.Retrieval.RecallSize,
			TopK:          cfg.Retrieval.TopK,
		},
		Tables: tables,
		Judge:  judgeClient,
	}

	return dana.NewClient(corp, llmClient, embedderClient, clientConfig, logger)
}

func buildLLMClient(cfg *config.Config, role string, logger *slog.Logger) (llm.Client, error) {
	model, ok := cfg.LLM.Models[role]
	if !ok {
		return nil, fmt.Errorf("no %q model configured", role)
	}
	if model.APIKey == "" {
		return nil, fmt.Errorf("no API key for %q model", role)
	}

	switch model.Provider {
	case "openai", "":
		client, err := llm.NewOpenAIClient(&llm.Config{
			Model:     model.Model,
			APIKey:    model.APIKey,
			BaseURL:   model.BaseURL,
			MaxTokens: model.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %q completion client: %w", role, err)
		}

		if cfg.CircuitBreaker.Enabled {
			return llm.NewCircuitBreakerClient(client, llm.BreakerConfig{
				Enabled:          cfg.CircuitBreaker.Enabled,
				MaxRequests:      cfg.CircuitBreaker.MaxRequests,
				Interval:         cfg.CircuitBreaker.Interval,
				Timeout:          cfg.CircuitBreaker.Timeout,
				ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
			}, logger, "llm-"+role), nil
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", model.Provider)
	}
}

func buildEmbedderClient(cfg *config.Config) (embedder.Client, error) {
	embedderConfig := &embedder.Config{
		Model:         cfg.Embedding.Model,
		APIKey:        cfg.Embedding.APIKey,
		BaseURL:       cfg.Embedding.BaseURL,
		Dimensions:    cfg.Embedding.Dimensions,
		QueryPrefix:   cfg.Embedding.QueryPrefix,
		PassagePrefix: cfg.Embedding.PassagePrefix,
	}

	switch cfg.Embedding.Provider {
	case "openai", "":
		return embedder.NewOpenAIClient(embedderConfig)
	case "local":
		return embedder.NewLocalClient(embedderConfig)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
