package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// mockTool implements tool.Tool for testing.
type mockTool struct {
	name        string
	annotations tool.Annotations
	calls       atomic.Int32
	handler     func(call int32) (tool.Result, error)
}

func (m *mockTool) Name() string                  { return m.name }
func (m *mockTool) Description() string           { return "Mock tool" }
func (m *mockTool) InputSchema() tool.Schema      { return tool.EmptySchema() }
func (m *mockTool) Annotations() tool.Annotations { return m.annotations }
func (m *mockTool) Execute(ctx context.Context, _ json.RawMessage) (tool.Result, error) {
	n := m.calls.Add(1)
	if m.handler != nil {
		return m.handler(n)
	}
	return tool.NewResult(json.RawMessage(`{"success":true}`)), nil
}

func remote(source string, t tool.Tool) tool.Descriptor {
	return tool.Descriptor{Name: t.Name(), SourceID: source, SourceKind: tool.SourceRemote, Tool: t}
}

func fastExecutor(opts ...Option) *Executor {
	base := []Option{WithRetryDelay(time.Millisecond), WithTimeout(5 * time.Second)}
	return NewExecutorWithOptions(append(base, opts...)...)
}

var errUnavailable = errors.New("server unavailable")

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("success sets duration", func(t *testing.T) {
		t.Parallel()

		m := &mockTool{name: "read_file", annotations: tool.Annotations{ReadOnly: true}}
		res, err := fastExecutor().Execute(context.Background(), remote("code", m), nil)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if res.OutputString() != `{"success":true}` {
			t.Errorf("Output = %s", res.OutputString())
		}
		if res.Duration == 0 {
			t.Error("Duration not set")
		}
	})

	t.Run("retryable tools are retried", func(t *testing.T) {
		t.Parallel()

		m := &mockTool{
			name:        "search",
			annotations: tool.Annotations{Idempotent: true},
			handler: func(call int32) (tool.Result, error) {
				if call < 3 {
					return tool.Result{}, errUnavailable
				}
				return tool.NewTextResult("found"), nil
			},
		}
		res, err := fastExecutor(WithRetryAttempts(3)).Execute(context.Background(), remote("docs", m), nil)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if m.calls.Load() != 3 {
			t.Errorf("calls = %d, want 3", m.calls.Load())
		}
		if res.OutputString() != `"found"` {
			t.Errorf("Output = %s", res.OutputString())
		}
	})

	t.Run("other tools run once", func(t *testing.T) {
		t.Parallel()

		m := &mockTool{
			name:    "write_file",
			handler: func(int32) (tool.Result, error) { return tool.Result{}, errUnavailable },
		}
		_, err := fastExecutor(WithRetryAttempts(3)).Execute(context.Background(), remote("code", m), nil)
		if !errors.Is(err, errUnavailable) {
			t.Errorf("Execute() error = %v, want %v", err, errUnavailable)
		}
		if m.calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", m.calls.Load())
		}
	})

	t.Run("missing tool", func(t *testing.T) {
		t.Parallel()

		if _, err := fastExecutor().Execute(context.Background(), tool.Descriptor{Name: "ghost"}, nil); !errors.Is(err, tool.ErrToolNotFound) {
			t.Errorf("Execute() error = %v, want %v", err, tool.ErrToolNotFound)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		slow := tool.NewBuilder("slow").
			WithHandler(func(ctx context.Context, _ json.RawMessage) (tool.Result, error) {
				select {
				case <-ctx.Done():
					return tool.Result{}, ctx.Err()
				case <-time.After(10 * time.Second):
					return tool.NewResult(json.RawMessage(`{}`)), nil
				}
			}).
			MustBuild()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := fastExecutor().Execute(ctx, remote("code", slow), nil); err == nil {
			t.Error("Execute() should fail when the context is cancelled")
		}
	})
}

func TestExecutor_BreakerPerSource(t *testing.T) {
	t.Parallel()

	e := fastExecutor(WithCircuitBreakerThreshold(2), WithCircuitBreakerTimeout(time.Minute))
	failing := &mockTool{
		name:    "fetch",
		handler: func(int32) (tool.Result, error) { return tool.Result{}, errUnavailable },
	}
	healthy := &mockTool{name: "echo"}

	for i := 0; i < 2; i++ {
		_, _ = e.Execute(context.Background(), remote("flaky", failing), nil)
	}
	if got := e.CircuitBreakerState("flaky").String(); got != "open" {
		t.Fatalf("flaky breaker = %s, want open", got)
	}

	if _, err := e.Execute(context.Background(), remote("flaky", failing), nil); err == nil {
		t.Error("Execute() on open breaker should fail")
	}
	if failing.calls.Load() != 2 {
		t.Errorf("failing calls = %d, want 2 (open breaker must not call the tool)", failing.calls.Load())
	}

	local := tool.Descriptor{Name: "echo", SourceID: tool.LocalSourceID, SourceKind: tool.SourceLocal, Tool: healthy}
	if _, err := e.Execute(context.Background(), local, nil); err != nil {
		t.Errorf("Execute() on other source error = %v", err)
	}
	if got := e.CircuitBreakerState(tool.LocalSourceID).String(); got != "closed" {
		t.Errorf("local breaker = %s, want closed", got)
	}
}

func TestExecutor_ExecuteSimple(t *testing.T) {
	t.Parallel()

	m := &mockTool{name: "echo"}
	res, err := NewDefaultExecutor().ExecuteSimple(context.Background(), remote("code", m), nil)
	if err != nil {
		t.Fatalf("ExecuteSimple() error = %v", err)
	}
	if res.Duration == 0 {
		t.Error("ExecuteSimple() should set Duration")
	}
}
