// Package config loads dana's configuration from file and environment
// variables via viper.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Corpus configuration
	Corpus CorpusConfig `mapstructure:"corpus"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json, color
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// CorpusConfig holds knowledge-base storage configuration.
type CorpusConfig struct {
	// Driver selects the backing store: badger or memory.
	Driver string `mapstructure:"driver"`
	// Path is the badger database directory.
	Path string `mapstructure:"path"`
	// PassagesFile optionally seeds the corpus from a YAML file on startup.
	PassagesFile string `mapstructure:"passages_file"`
	// TablesFile optionally overrides the built-in keyword/synonym tables.
	TablesFile string `mapstructure:"tables_file"`
}

// ModelConfig holds configuration for one completion model.
type ModelConfig struct {
	Provider  string `mapstructure:"provider"` // openai
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// LLMConfig holds the completion models by role. The "default" model answers
// questions and rewrites queries; the "judge" model scores benchmark answers.
type LLMConfig struct {
	Models map[string]ModelConfig `mapstructure:"models"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider      string `mapstructure:"provider"` // openai, local
	Model         string `mapstructure:"model"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Dimensions    int    `mapstructure:"dimensions"`
	QueryPrefix   string `mapstructure:"query_prefix"`
	PassagePrefix string `mapstructure:"passage_prefix"`
}

// RetrievalConfig holds the tunable retrieval parameters.
type RetrievalConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
	Temperature   float32 `mapstructure:"temperature"`
	VectorWeight  float64 `mapstructure:"vector_weight"`
	RecallSize    int     `mapstructure:"recall_size"`
	TopK          int     `mapstructure:"top_k"`
	// BenchmarkFile is the benchmark suite used by evaluation and tuning.
	BenchmarkFile string `mapstructure:"benchmark_file"`
}

// TelemetryConfig holds telemetry configuration.
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking.
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "color")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	// Corpus defaults
	viper.SetDefault("corpus.driver", "badger")
	viper.SetDefault("corpus.path", "./dana_db")

	// LLM defaults
	viper.SetDefault("llm.models.default.provider", "openai")
	viper.SetDefault("llm.models.default.model", "gpt-4o-mini")
	viper.SetDefault("llm.models.default.max_tokens", 1024)
	viper.SetDefault("llm.models.judge.provider", "openai")
	viper.SetDefault("llm.models.judge.model", "gpt-4o-mini")
	viper.SetDefault("llm.models.judge.max_tokens", 128)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)

	// Retrieval defaults
	viper.SetDefault("retrieval.min_confidence", 0.3)
	viper.SetDefault("retrieval.temperature", 0.2)
	viper.SetDefault("retrieval.vector_weight", 0.8)
	viper.SetDefault("retrieval.recall_size", 30)
	viper.SetDefault("retrieval.top_k", 5)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.dana/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables.
func overrideWithEnv(config *Config) {
	if config.LLM.Models == nil {
		config.LLM.Models = make(map[string]ModelConfig)
	}

	getModel := func(name string) ModelConfig {
		if c, ok := config.LLM.Models[name]; ok {
			return c
		}
		return ModelConfig{}
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		for _, name := range []string{"default", "judge"} {
			model := getModel(name)
			if model.APIKey == "" {
				model.APIKey = apiKey
			}
			config.LLM.Models[name] = model
		}
		if config.Embedding.APIKey == "" {
			config.Embedding.APIKey = apiKey
		}
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		for _, name := range []string{"default", "judge"} {
			model := getModel(name)
			if model.BaseURL == "" {
				model.BaseURL = baseURL
			}
			config.LLM.Models[name] = model
		}
	}

	// Corpus settings
	if path := os.Getenv("DANA_DB_PATH"); path != "" {
		config.Corpus.Path = path
	}
	if file := os.Getenv("DANA_PASSAGES_FILE"); file != "" {
		config.Corpus.PassagesFile = file
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
