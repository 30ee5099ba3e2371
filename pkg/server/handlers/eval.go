package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parsdesk/dana"
	"github.com/parsdesk/dana/pkg/eval"
	"github.com/parsdesk/dana/pkg/server/dto"
	"github.com/parsdesk/dana/pkg/telemetry"
)

// EvalHandler handles benchmark and tuning requests. These are operator
// endpoints: long-running and synchronous.
type EvalHandler struct {
	client *dana.Client
	bench  *telemetry.BenchmarkWriter
}

// NewEvalHandler creates a new eval handler. The benchmark writer may be nil
// to skip persisting runs.
func NewEvalHandler(client *dana.Client, bench *telemetry.BenchmarkWriter) *EvalHandler {
	return &EvalHandler{client: client, bench: bench}
}

// Benchmark handles POST /api/v1/benchmark.
func (h *EvalHandler) Benchmark(c *gin.Context) {
	var req dto.BenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	var suite *eval.SuiteResult
	var err error
	if req.Config != nil {
		suite, err = h.client.BenchmarkWith(c.Request.Context(), req.Cases, *req.Config)
	} else {
		suite, err = h.client.Benchmark(c.Request.Context(), req.Cases)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "benchmark failed", Message: err.Error()})
		return
	}

	response := gin.H{
		"mean_score": suite.MeanScore,
		"results":    suite.Results,
	}
	if h.bench != nil {
		if runID, path, err := h.bench.WriteRun(suite.Results); err == nil {
			response["run_id"] = runID
			response["artifact"] = path
		}
	}

	c.JSON(http.StatusOK, response)
}

// Tune handles POST /api/v1/tune. The winning configuration becomes the
// server's new default.
func (h *EvalHandler) Tune(c *gin.Context) {
	var req dto.TuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Message: err.Error()})
		return
	}

	outcome, err := h.client.Tune(c.Request.Context(), req.Cases)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "tuning failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}
