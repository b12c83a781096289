package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"

	"github.com/felixgeelhaar/agent-router/domain/model"
	"github.com/felixgeelhaar/agent-router/domain/tool"
	"github.com/felixgeelhaar/agent-router/infrastructure/resilience"
)

const testConfig = `
name: test-router
handlers:
  - type: anthropic
  - type: ollama
    base_url: http://127.0.0.1:11434
  - type: openai
    api_key: sk-test
connections:
  - name: offline
    transport: subprocess
    command: agent-router-test-missing-server
agents:
  - name: helper
    model: llama3.2
    tools: ["echo", "local/*", "nope"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "router.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := New().
		WithOutput(&stdout, &stderr).
		WithLookuper(envconfig.MapLookuper(map[string]string{
			"AGENT_ROUTER_LOG_LEVEL": "error",
		}))
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()

	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return v
}

func TestApp_Version(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "agent-router version "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestApp_Help(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}
	for _, want := range []string{"route", "connections", "resolve", "assemble", "call", "serve", "validate"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestApp_BadSettings(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := New().
		WithOutput(&stdout, &stderr).
		WithLookuper(envconfig.MapLookuper(map[string]string{
			"AGENT_ROUTER_TRACE_EXPORTER": "zipkin",
		}))
	if err := app.ExecuteWithArgs(context.Background(), []string{"version"}); err == nil {
		t.Error("expected error for unknown trace exporter")
	}
}

func TestApp_Validate(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "validate", "-c", path)
	if err != nil {
		t.Fatalf("validate command failed: %v", err)
	}
	for _, want := range []string{"Configuration is valid", "anthropic (not ready", "ollama (ready)", "offline (subprocess)", "helper"} {
		if !strings.Contains(out, want) {
			t.Errorf("validate output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "validate", "--json", "-c", path)
	if err != nil {
		t.Fatalf("validate --json failed: %v", err)
	}
	report := decode[validateReport](t, out)
	if len(report.Handlers) != 3 || report.Handlers[0].Ready || !report.Handlers[2].Ready {
		t.Errorf("handlers = %+v", report.Handlers)
	}
}

func TestApp_ValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing path", []string{"validate"}},
		{"missing file", []string{"validate", "-c", "/nonexistent/router.yaml"}},
		{"no handlers", []string{"validate", "-c", writeConfig(t, "name: empty\nhandlers: []\n")}},
		{"unknown handler types only", []string{"validate", "-c", writeConfig(t, "handlers:\n  - type: cohere\n")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApp_Schema(t *testing.T) {
	out, err := run(t, "validate", "--schema")
	if err != nil {
		t.Fatalf("validate --schema failed: %v", err)
	}
	if !strings.Contains(out, `"handlers"`) {
		t.Errorf("schema output missing handlers:\n%s", out)
	}

	dest := filepath.Join(t.TempDir(), "schema.json")
	if _, err := run(t, "export-schema", "-o", dest); err != nil {
		t.Fatalf("export-schema failed: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("schema file not written: %v", err)
	}
	if !json.Valid(data) {
		t.Error("exported schema is not valid JSON")
	}
}

func TestApp_Route(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "route", "--json", "-c", path, "gpt-4o")
	if err != nil {
		t.Fatalf("route command failed: %v", err)
	}
	report := decode[routeReport](t, out)
	if report.Handler != "openai" || report.Provider != "openai" {
		t.Errorf("routed to %s (%s)", report.Handler, report.Provider)
	}
	outcomes := make([]model.Outcome, 0, len(report.Attempts))
	for _, a := range report.Attempts {
		outcomes = append(outcomes, a.Outcome)
	}
	want := []model.Outcome{model.OutcomeSkipped, model.OutcomeSkipped, model.OutcomeSelected}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}

	out, err = run(t, "route", "-c", path, "mistral-large")
	if err != nil {
		t.Fatalf("route command failed: %v", err)
	}
	if !strings.Contains(out, "mistral-large → ollama") {
		t.Errorf("route output = %q", out)
	}
}

func TestApp_RouteExhausted(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "route", "--json", "-c", path, "claude-sonnet-4")
	if !errors.Is(err, model.ErrChainExhausted) {
		t.Fatalf("route error = %v, want %v", err, model.ErrChainExhausted)
	}
	report := decode[routeReport](t, out)
	if len(report.Attempts) != 3 || report.Error == "" {
		t.Errorf("report = %+v", report)
	}
}

func TestApp_Connections(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "connections", "--json", "--tools", "-c", path)
	if err != nil {
		t.Fatalf("connections command failed: %v", err)
	}
	report := decode[connectionsReport](t, out)
	if len(report.Connections) != 1 {
		t.Fatalf("connections = %+v", report.Connections)
	}
	c := report.Connections[0]
	if c.Name != "offline" || c.State != "failed" || c.Error == "" || len(c.Tools) != 0 {
		t.Errorf("offline connection = %+v", c)
	}

	var names []string
	for _, v := range report.Global {
		names = append(names, v.Qualified)
	}
	if diff := cmp.Diff([]string{"local/echo", "local/current_time", "local/describe_config"}, names); diff != "" {
		t.Errorf("global tools mismatch (-want +got):\n%s", diff)
	}
	if len(report.Diagnostics) == 0 || report.Diagnostics[0].Kind != "connection_error" {
		t.Errorf("diagnostics = %+v", report.Diagnostics)
	}
}

func TestApp_Resolve(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "resolve", "--json", "-c", path, "describe_config", "local/*", "offline/*", "nope")
	if err != nil {
		t.Fatalf("resolve command failed: %v", err)
	}
	report := decode[resolveReport](t, out)

	var names []string
	for _, v := range report.Tools {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"describe_config", "echo", "current_time"}, names); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"offline/*", "nope"}, report.Unmatched); diff != "" {
		t.Errorf("unmatched mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_Assemble(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "assemble", "--json", "-c", path, "--agent", "helper")
	if err != nil {
		t.Fatalf("assemble command failed: %v", err)
	}
	report := decode[assembleReport](t, out)
	if report.ID == "" || report.Handler != "ollama" || report.Model != "llama3.2" {
		t.Errorf("report = %+v", report)
	}
	if len(report.Tools) != 3 {
		t.Errorf("tools = %+v", report.Tools)
	}
	if diff := cmp.Diff([]string{"nope"}, report.Unmatched); diff != "" {
		t.Errorf("unmatched mismatch (-want +got):\n%s", diff)
	}

	out, err = run(t, "assemble", "-c", path, "--agent", "helper", "--model", "gpt-4o", "--tool", "echo")
	if err != nil {
		t.Fatalf("assemble override failed: %v", err)
	}
	if !strings.Contains(out, "openai (openai)") || !strings.Contains(out, "Tools: 1") {
		t.Errorf("assemble output = %q", out)
	}

	if _, err := run(t, "assemble", "-c", path, "--agent", "ghost"); err == nil {
		t.Error("expected error for unknown agent")
	}
	if _, err := run(t, "assemble", "-c", path, "--tool", "echo"); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestApp_Call(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := run(t, "call", "-c", path, "echo", "--input", `{"message":"hi"}`)
	if err != nil {
		t.Fatalf("call command failed: %v", err)
	}
	if strings.TrimSpace(out) != `"hi"` {
		t.Errorf("call output = %q", out)
	}

	out, err = run(t, "call", "--json", "-c", path, "local/current_time", "--input", `{"timezone":"Mars/Olympus"}`)
	if err == nil {
		t.Error("expected error for tool error result")
	}
	report := decode[callReport](t, out)
	if report.Tool != "local/current_time" || report.Error == "" {
		t.Errorf("report = %+v", report)
	}

	if _, err := run(t, "call", "-c", path, "missing_tool"); !errors.Is(err, tool.ErrToolNotFound) {
		t.Errorf("call missing tool error = %v, want %v", err, tool.ErrToolNotFound)
	}
	if _, err := run(t, "call", "-c", path, "echo", "--input", "{not json"); !errors.Is(err, errInvalidInput) {
		t.Errorf("call invalid input error = %v, want %v", err, errInvalidInput)
	}
}

func TestServeOptions_Executor(t *testing.T) {
	t.Parallel()

	defaults := resilience.DefaultExecutorConfig()
	tests := []struct {
		name        string
		opts        serveOptions
		wantTimeout time.Duration
		wantMax     int
	}{
		{
			name:        "flags unset keep defaults",
			wantTimeout: defaults.DefaultTimeout,
			wantMax:     defaults.MaxConcurrent,
		},
		{
			name:        "flags override",
			opts:        serveOptions{timeout: 2 * time.Second, maxConcurrent: 3},
			wantTimeout: 2 * time.Second,
			wantMax:     3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.opts.executor().Config()
			if cfg.DefaultTimeout != tt.wantTimeout || cfg.MaxConcurrent != tt.wantMax {
				t.Errorf("Config() timeout=%v max=%d, want %v and %d",
					cfg.DefaultTimeout, cfg.MaxConcurrent, tt.wantTimeout, tt.wantMax)
			}
		})
	}
}
