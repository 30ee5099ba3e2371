package dto

import (
	"errors"

	"github.com/parsdesk/dana/pkg/types"
)

// IngestRequest is the body of POST /api/v1/ingest/passages.
type IngestRequest struct {
	Passages []*types.Passage `json:"passages" binding:"required"`
}

// Validate performs validation on IngestRequest.
func (r *IngestRequest) Validate() error {
	if len(r.Passages) == 0 {
		return errors.New("passages cannot be empty")
	}
	for _, p := range r.Passages {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IngestResponse is the body returned by the ingest endpoint.
type IngestResponse struct {
	Indexed int `json:"indexed"`
}

// BenchmarkRequest is the body of POST /api/v1/benchmark.
type BenchmarkRequest struct {
	Cases []types.BenchmarkCase `json:"cases" binding:"required"`

	// Optional explicit configuration; the tuned defaults apply otherwise.
	Config *types.RetrievalConfig `json:"config,omitempty"`
}

// Validate performs validation on BenchmarkRequest.
func (r *BenchmarkRequest) Validate() error {
	if len(r.Cases) == 0 {
		return errors.New("cases cannot be empty")
	}
	for i := range r.Cases {
		if err := r.Cases[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TuneRequest is the body of POST /api/v1/tune.
type TuneRequest struct {
	Cases []types.BenchmarkCase `json:"cases" binding:"required"`
}

// Validate performs validation on TuneRequest.
func (r *TuneRequest) Validate() error {
	if len(r.Cases) == 0 {
		return errors.New("cases cannot be empty")
	}
	for i := range r.Cases {
		if err := r.Cases[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
