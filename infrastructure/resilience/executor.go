// Package resilience runs resolved tools with fortify bulkhead, circuit
// breaker and retry policies.
package resilience

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/logging"
)

// Executor runs tools with a shared concurrency limit, a circuit breaker
// per tool source and retries for tools that are safe to repeat. A remote
// server that keeps failing opens only its own breaker.
type Executor struct {
	config   ExecutorConfig
	bulkhead bulkhead.Bulkhead[tool.Result]
	retry    retry.Retry[tool.Result]

	mu       sync.Mutex
	breakers map[string]circuitbreaker.CircuitBreaker[tool.Result]
}

// ExecutorConfig configures the resilient executor.
type ExecutorConfig struct {
	// MaxConcurrent limits concurrent tool executions.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive failures of one
	// source before its breaker opens.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long a breaker stays open.
	CircuitBreakerTimeout time.Duration

	// RetryMaxAttempts is the maximum number of attempts for retryable tools.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// DefaultTimeout bounds each execution.
	DefaultTimeout time.Duration
}

// DefaultExecutorConfig returns a configuration with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       100 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
		DefaultTimeout:          30 * time.Second,
	}
}

// NewExecutor creates a resilient executor.
func NewExecutor(config ExecutorConfig) *Executor {
	defaults := DefaultExecutorConfig()
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = defaults.CircuitBreakerThreshold
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = defaults.CircuitBreakerTimeout
	}
	if config.RetryMaxAttempts <= 0 {
		config.RetryMaxAttempts = 1
	}
	if config.RetryBackoffMultiplier <= 0 {
		config.RetryBackoffMultiplier = defaults.RetryBackoffMultiplier
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaults.DefaultTimeout
	}

	return &Executor{
		config: config,
		bulkhead: bulkhead.New[tool.Result](bulkhead.Config{
			MaxConcurrent: config.MaxConcurrent,
		}),
		retry: retry.New[tool.Result](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		breakers: make(map[string]circuitbreaker.CircuitBreaker[tool.Result]),
	}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

func (e *Executor) breaker(source string) circuitbreaker.CircuitBreaker[tool.Result] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[source]; ok {
		return cb
	}
	threshold := uint32(e.config.CircuitBreakerThreshold) // #nosec G115 -- positive, checked in NewExecutor
	maxRequests := uint32(e.config.MaxConcurrent)         // #nosec G115 -- positive, checked in NewExecutor
	cb := circuitbreaker.New[tool.Result](circuitbreaker.Config{
		MaxRequests: maxRequests,
		Interval:    e.config.CircuitBreakerTimeout,
		Timeout:     e.config.CircuitBreakerTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	e.breakers[source] = cb
	return cb
}

// Execute runs the descriptor's tool.
// Composition order: Bulkhead → Timeout → Circuit Breaker (per source) → Retry (retryable tools only)
func (e *Executor) Execute(ctx context.Context, d tool.Descriptor, input json.RawMessage) (tool.Result, error) {
	if d.Tool == nil {
		return tool.Result{}, tool.ErrToolNotFound
	}
	start := time.Now()
	cb := e.breaker(d.SourceID)

	result, err := e.bulkhead.Execute(ctx, func(ctx context.Context) (tool.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, e.config.DefaultTimeout)
		defer cancel()

		return cb.Execute(ctx, func(ctx context.Context) (tool.Result, error) {
			if d.Tool.Annotations().CanRetry() {
				return e.retry.Do(ctx, func(ctx context.Context) (tool.Result, error) {
					return d.Tool.Execute(ctx, input)
				})
			}
			return d.Tool.Execute(ctx, input)
		})
	})
	if err != nil {
		logging.Warn().
			Add(logging.Component("executor")).
			Add(logging.Source(d.SourceID)).
			Add(logging.ToolName(d.Name)).
			Add(logging.ErrorField(err)).
			Msg("tool execution failed")
		return result, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// ExecuteSimple runs a tool without resilience patterns.
func (e *Executor) ExecuteSimple(ctx context.Context, d tool.Descriptor, input json.RawMessage) (tool.Result, error) {
	if d.Tool == nil {
		return tool.Result{}, tool.ErrToolNotFound
	}
	start := time.Now()
	result, err := d.Tool.Execute(ctx, input)
	if err == nil {
		result.Duration = time.Since(start)
	}
	return result, err
}

// CircuitBreakerState returns the breaker state for a tool source. Sources
// that never executed report closed.
func (e *Executor) CircuitBreakerState(source string) circuitbreaker.State {
	return e.breaker(source).State()
}
