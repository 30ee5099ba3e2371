// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parsdesk/dana"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// probeTimeout bounds each provider probe in the readiness check.
const probeTimeout = 2 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	client *dana.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(client *dana.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "dana",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. It probes the corpus and both providers
// with short timeouts so a hung provider cannot hang the probe.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	allHealthy := true

	probe := func(name string, fn func(ctx context.Context) error) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		duration := time.Since(start)

		if err != nil {
			checks[name] = gin.H{
				"status":   "unhealthy",
				"error":    err.Error(),
				"duration": duration.String(),
			}
			allHealthy = false
			return
		}
		checks[name] = gin.H{
			"status":   "healthy",
			"duration": duration.String(),
		}
	}

	probe("corpus", func(ctx context.Context) error {
		_, err := h.client.GetCorpus().Count(ctx)
		return err
	})
	probe("llm", func(ctx context.Context) error {
		return h.client.GetLLM().HealthCheck(ctx)
	})
	probe("embedder", func(ctx context.Context) error {
		return h.client.GetEmbedder().HealthCheck(ctx)
	})

	status := "ready"
	code := http.StatusOK
	if !allHealthy {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "dana",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
