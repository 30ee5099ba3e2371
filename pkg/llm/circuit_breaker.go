package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/parsdesk/dana/pkg/types"
)

// BreakerConfig holds configuration for circuit breaking around a provider.
type BreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// CircuitBreakerClient wraps a Client with circuit breaking logic.
// An open breaker surfaces as a provider-unreachable condition so the
// orchestrator reports it distinctly from "no results".
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewCircuitBreakerClient creates a new circuit breaker client.
func NewCircuitBreakerClient(client Client, cfg BreakerConfig, logger *slog.Logger, name string) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}

	ratio := cfg.ReadyToTripRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("circuit breaker tripped",
					"breaker", name, "from", from.String(), "to", to.String())
			}
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// Complete implements Client
func (c *CircuitBreakerClient) Complete(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Complete(ctx, messages, temperature)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, NewUnreachableError("completion provider circuit open")
		}
		return nil, err
	}
	return resp.(*types.Response), nil
}

// HealthCheck implements Client
func (c *CircuitBreakerClient) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// Close implements Client
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}
