package resilience

import "time"

// Option adjusts an executor's configuration. Breaker and retry tuning is
// done through ExecutorConfig and NewExecutor.
type Option func(*ExecutorConfig)

// WithTimeout bounds every tool execution, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.DefaultTimeout = d
	}
}

// WithMaxConcurrent caps tool executions in flight across all sources.
func WithMaxConcurrent(n int) Option {
	return func(c *ExecutorConfig) {
		c.MaxConcurrent = n
	}
}

// NewExecutorWithOptions applies opts over DefaultExecutorConfig. Zero or
// negative values keep the defaults.
func NewExecutorWithOptions(opts ...Option) *Executor {
	config := DefaultExecutorConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewExecutor(config)
}

// Config returns the configuration in effect after defaults were applied.
func (e *Executor) Config() ExecutorConfig {
	return e.config
}
