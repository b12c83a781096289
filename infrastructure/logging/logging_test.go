package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// testLogger creates a logger that writes to a buffer for testing
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := bolt.NewJSONHandler(buf)
	logger := bolt.New(handler).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stderr {
		t.Errorf("Output = %v, want os.Stderr", config.Output)
	}
}

func TestProductionConfig(t *testing.T) {
	t.Parallel()

	if got := ProductionConfig().Format; got != "json" {
		t.Errorf("Format = %s, want json", got)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO},
		{"", bolt.INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if result := parseLevel(tt.input); result != tt.expected {
				t.Errorf("parseLevel(%s) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"handler", Handler("anthropic"), `"handler":"anthropic"`},
		{"model", Model("claude-sonnet-4"), `"model":"claude-sonnet-4"`},
		{"connection", Connection("code"), `"connection":"code"`},
		{"transport", Transport("network"), `"transport":"network"`},
		{"state", State("connected"), `"state":"connected"`},
		{"tool", ToolName("read_file"), `"tool":"read_file"`},
		{"source", Source("local"), `"source":"local"`},
		{"owner", Owner("code"), `"owner":"code"`},
		{"token", Token("code/*"), `"token":"code/*"`},
		{"tokens", Tokens([]string{"a", "b"}), `"tokens":"a,b"`},
		{"count", Count("tools", 3), `"tools":3`},
		{"duration", Duration(100 * time.Millisecond), `"duration_ms":100`},
		{"reason", Reason("cannot handle model"), `"reason":"cannot handle model"`},
		{"component", Component("router"), `"component":"router"`},
		{"operation", Operation("route"), `"operation":"route"`},
		{"str", Str("k", "v"), `"k":"v"`},
		{"bool", Bool("ok", true), `"ok":true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := testLogger()
			tt.field(logger.Info()).Msg("test")

			if !bytes.Contains(buf.Bytes(), []byte(tt.want)) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestErrorField(t *testing.T) {
	t.Parallel()

	t.Run("with error", func(t *testing.T) {
		t.Parallel()

		logger, buf := testLogger()
		ErrorField(errors.New("connection refused"))(logger.Error()).Msg("test")

		if !bytes.Contains(buf.Bytes(), []byte("connection refused")) {
			t.Errorf("expected error in output: %s", buf.String())
		}
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		logger, buf := testLogger()
		ErrorField(nil)(logger.Info()).Msg("test")

		if bytes.Contains(buf.Bytes(), []byte(`"error"`)) {
			t.Errorf("unexpected error field in output: %s", buf.String())
		}
	})
}

func TestLogEvent_Chaining(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()
	NewEvent(logger.Warn()).
		Add(Connection("code")).
		Add(ToolName("search")).
		Msg("collision")

	for _, want := range []string{`"connection":"code"`, `"tool":"search"`, "collision"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("expected %s in output: %s", want, buf.String())
		}
	}
}

func TestNew_Formats(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	New(Config{Level: "debug", Format: "json", Output: buf}).Debug().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte(`"hello"`)) {
		t.Errorf("expected json message in output: %s", buf.String())
	}
}
