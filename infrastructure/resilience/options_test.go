package resilience

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewExecutorWithOptions(t *testing.T) {
	t.Parallel()

	withDefaults := func(mutate func(*ExecutorConfig)) ExecutorConfig {
		c := DefaultExecutorConfig()
		mutate(&c)
		return c
	}

	tests := []struct {
		name string
		opts []Option
		want ExecutorConfig
	}{
		{
			name: "no options uses defaults",
			want: DefaultExecutorConfig(),
		},
		{
			name: "timeout and concurrency",
			opts: []Option{WithTimeout(5 * time.Second), WithMaxConcurrent(2)},
			want: withDefaults(func(c *ExecutorConfig) {
				c.DefaultTimeout = 5 * time.Second
				c.MaxConcurrent = 2
			}),
		},
		{
			name: "later options override earlier ones",
			opts: []Option{WithMaxConcurrent(10), WithMaxConcurrent(25)},
			want: withDefaults(func(c *ExecutorConfig) { c.MaxConcurrent = 25 }),
		},
		{
			name: "non-positive values keep defaults",
			opts: []Option{WithMaxConcurrent(-1), WithTimeout(0)},
			want: DefaultExecutorConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewExecutorWithOptions(tt.opts...).Config()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Config() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
