package tool_test

import (
	"testing"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

func TestAnnotations_CanRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		annotations tool.Annotations
		expected    bool
	}{
		{"no hints", tool.Annotations{}, false},
		{"read only", tool.Annotations{ReadOnly: true}, true},
		{"idempotent", tool.Annotations{Idempotent: true}, true},
		{"destructive only", tool.Annotations{Destructive: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.annotations.CanRetry(); got != tt.expected {
				t.Errorf("CanRetry() = %v, want %v", got, tt.expected)
			}
		})
	}
}
