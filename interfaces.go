package dana

import (
	"context"

	"github.com/parsdesk/dana/pkg/eval"
	"github.com/parsdesk/dana/pkg/retrieval"
	"github.com/parsdesk/dana/pkg/types"
)

// This file defines focused interfaces so consumers can depend on the
// smallest surface that meets their needs. The Dana interface composes them.

// Asker answers support questions.
type Asker interface {
	// Ask answers a question using the client's default retrieval
	// parameters.
	Ask(ctx context.Context, query types.Query) (*types.QueryResult, error)

	// Answer runs the pipeline with explicit retrieval parameters and also
	// returns the grounding candidates.
	Answer(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error)

	// Retrieve runs retrieval only, without generation.
	Retrieve(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*retrieval.Output, error)
}

// Ingestor indexes passages into the corpus.
type Ingestor interface {
	// Ingest validates, embeds, and indexes passages.
	Ingest(ctx context.Context, passages []*types.Passage) error

	// IngestFile loads passages from a YAML file and ingests them.
	IngestFile(ctx context.Context, path string) (int, error)
}

// Evaluator scores the pipeline against a benchmark suite.
type Evaluator interface {
	// Benchmark evaluates the suite under the default retrieval parameters.
	Benchmark(ctx context.Context, cases []types.BenchmarkCase) (*eval.SuiteResult, error)

	// BenchmarkWith evaluates the suite under explicit parameters.
	BenchmarkWith(ctx context.Context, cases []types.BenchmarkCase, cfg types.RetrievalConfig) (*eval.SuiteResult, error)

	// Tune runs the strategy grid and adopts the winning configuration.
	Tune(ctx context.Context, cases []types.BenchmarkCase) (*eval.TuningOutcome, error)
}

// Dana is the main interface for the support-desk answering engine.
type Dana interface {
	Asker
	Ingestor
	Evaluator

	// RetrievalConfig returns the current default retrieval parameters.
	RetrievalConfig() types.RetrievalConfig

	// SetRetrievalConfig replaces the default retrieval parameters.
	SetRetrievalConfig(cfg types.RetrievalConfig)

	// Close closes the corpus and the provider clients.
	Close() error
}

// Verify Client implements the composed interface.
var _ Dana = (*Client)(nil)
