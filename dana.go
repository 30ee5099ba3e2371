package dana

import (
	"errors"
	"log/slog"

	"github.com/parsdesk/dana/pkg/answer"
	"github.com/parsdesk/dana/pkg/corpus"
	"github.com/parsdesk/dana/pkg/embedder"
	"github.com/parsdesk/dana/pkg/eval"
	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/retrieval"
	"github.com/parsdesk/dana/pkg/rewrite"
	"github.com/parsdesk/dana/pkg/scoring"
	"github.com/parsdesk/dana/pkg/terms"
	"github.com/parsdesk/dana/pkg/types"
)

var (
	// ErrMissingCorpus is returned when no corpus is configured.
	ErrMissingCorpus = errors.New("corpus is required")
	// ErrMissingLLM is returned when no completion client is configured.
	ErrMissingLLM = errors.New("completion client is required")
	// ErrMissingEmbedder is returned when no embedding client is configured.
	ErrMissingEmbedder = errors.New("embedding client is required")
	// ErrReadOnlyCorpus is returned when ingestion is attempted against a
	// corpus that does not support writes.
	ErrReadOnlyCorpus = errors.New("corpus does not support ingestion")
	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query text cannot be empty")
)

// Config holds configuration for the dana client.
type Config struct {
	// Retrieval are the default retrieval parameters, used by Ask and as
	// the baseline for tuning. Zero values fall back to the defaults.
	Retrieval types.RetrievalConfig

	// Tables overrides the built-in keyword/stop-word/synonym tables.
	Tables *terms.Tables

	// Judge is the optional completion client used by benchmark judging.
	// When nil, benchmark scores skip the judged component.
	Judge llm.Client

	// Events receives pipeline progress notifications. May be nil.
	// Emission never blocks; slow consumers miss events rather than
	// slowing queries down.
	Events chan<- types.PipelineEvent
}

// Client is the main implementation of the Dana interface.
type Client struct {
	corpus       corpus.Corpus
	llm          llm.Client
	embedder     embedder.Client
	processor    *terms.Processor
	orchestrator *retrieval.Orchestrator
	generator    *answer.Generator
	harness      *eval.Harness
	tuner        *eval.Tuner
	config       *Config
	logger       *slog.Logger
	events       chan<- types.PipelineEvent
}

// NewClient creates a new dana client. The corpus, completion client, and
// embedding client are required; a missing provider is a configuration error,
// not something to degrade around.
func NewClient(corp corpus.Corpus, llmClient llm.Client, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if corp == nil {
		return nil, ErrMissingCorpus
	}
	if llmClient == nil {
		return nil, ErrMissingLLM
	}
	if embedderClient == nil {
		return nil, ErrMissingEmbedder
	}
	if config == nil {
		config = &Config{}
	}
	config.Retrieval = config.Retrieval.Normalized()
	if logger == nil {
		logger = slog.Default()
	}

	processor := terms.NewProcessor(config.Tables)
	scorer := scoring.NewScorer(processor)
	rewriter := rewrite.NewRewriter(llmClient, logger)
	orchestrator := retrieval.NewOrchestrator(processor, embedderClient, corp, scorer, rewriter, config.Events, logger)
	generator := answer.NewGenerator(llmClient, logger)

	c := &Client{
		corpus:       corp,
		llm:          llmClient,
		embedder:     embedderClient,
		processor:    processor,
		orchestrator: orchestrator,
		generator:    generator,
		config:       config,
		logger:       logger,
		events:       config.Events,
	}

	c.harness = eval.NewHarness(c, embedderClient, config.Judge, processor, logger)
	c.tuner = eval.NewTuner(c.harness, nil, logger)

	return c, nil
}

// GetCorpus returns the underlying corpus.
func (c *Client) GetCorpus() corpus.Corpus {
	return c.corpus
}

// GetLLM returns the completion client.
func (c *Client) GetLLM() llm.Client {
	return c.llm
}

// GetEmbedder returns the embedding client.
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// RetrievalConfig returns the client's current default retrieval parameters.
func (c *Client) RetrievalConfig() types.RetrievalConfig {
	return c.config.Retrieval
}

// SetRetrievalConfig replaces the default retrieval parameters, typically
// with a tuned configuration.
func (c *Client) SetRetrievalConfig(cfg types.RetrievalConfig) {
	c.config.Retrieval = cfg.Normalized()
}

// Close closes the corpus and both provider clients.
func (c *Client) Close() error {
	var errs []error
	if err := c.corpus.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.llm.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
