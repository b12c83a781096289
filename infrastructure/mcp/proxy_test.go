package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

func TestConvertResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      *mcpsdk.CallToolResult
		want    string
		wantErr string
	}{
		{
			name: "nil result",
			in:   nil,
			want: `{}`,
		},
		{
			name: "json text passes through",
			in:   &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: `{"ok":true}`}}},
			want: `{"ok":true}`,
		},
		{
			name: "plain text becomes json string",
			in:   &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "hello"}}},
			want: `"hello"`,
		},
		{
			name: "multiple text blocks are joined",
			in: &mcpsdk.CallToolResult{Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: "a"},
				&mcpsdk.TextContent{Text: "b"},
			}},
			want: `"a\nb"`,
		},
		{
			name: "structured content wins",
			in: &mcpsdk.CallToolResult{
				Content:           []mcpsdk.Content{&mcpsdk.TextContent{Text: "ignored"}},
				StructuredContent: map[string]int{"n": 3},
			},
			want: `{"n":3}`,
		},
		{
			name: "empty content",
			in:   &mcpsdk.CallToolResult{},
			want: `{}`,
		},
		{
			name:    "error result",
			in:      &mcpsdk.CallToolResult{IsError: true, Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "file not found"}}},
			wantErr: "file not found",
		},
		{
			name:    "error result without text",
			in:      &mcpsdk.CallToolResult{IsError: true},
			wantErr: "tool execution failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := convertResult(tt.in)
			if tt.wantErr != "" {
				if !got.IsError() || got.Error.Error() != tt.wantErr {
					t.Errorf("Error = %v, want %q", got.Error, tt.wantErr)
				}
				return
			}
			if got.IsError() {
				t.Fatalf("unexpected error result: %v", got.Error)
			}
			if got.OutputString() != tt.want {
				t.Errorf("Output = %s, want %s", got.OutputString(), tt.want)
			}
		})
	}
}

type callSession struct {
	fakeSession
	gotName string
	gotArgs json.RawMessage
	result  *mcpsdk.CallToolResult
	err     error
}

func (s *callSession) CallTool(_ context.Context, name string, args json.RawMessage) (*mcpsdk.CallToolResult, error) {
	s.gotName = name
	s.gotArgs = args
	return s.result, s.err
}

func TestProxyTool(t *testing.T) {
	t.Parallel()

	destructive := false
	def := &mcpsdk.Tool{
		Name:        "read_file",
		Description: "Reads a file",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
		},
		Annotations: &mcpsdk.ToolAnnotations{
			Title:           "Read",
			ReadOnlyHint:    true,
			DestructiveHint: &destructive,
		},
	}

	t.Run("metadata", func(t *testing.T) {
		t.Parallel()

		p := newProxyTool(def, &callSession{})
		if p.Name() != "read_file" || p.Description() != "Reads a file" {
			t.Errorf("Name/Description = %q/%q", p.Name(), p.Description())
		}
		want := tool.Annotations{Title: "Read", ReadOnly: true}
		if p.Annotations() != want {
			t.Errorf("Annotations() = %+v, want %+v", p.Annotations(), want)
		}
		var schema map[string]any
		if err := json.Unmarshal(p.InputSchema().Raw(), &schema); err != nil {
			t.Fatalf("schema not JSON: %v", err)
		}
		if schema["type"] != "object" {
			t.Errorf("schema type = %v", schema["type"])
		}
	})

	t.Run("missing schema defaults to empty object", func(t *testing.T) {
		t.Parallel()

		p := newProxyTool(&mcpsdk.Tool{Name: "noop"}, &callSession{})
		if p.InputSchema().IsEmpty() {
			t.Error("InputSchema() is empty, want default object schema")
		}
	})

	t.Run("execute forwards arguments", func(t *testing.T) {
		t.Parallel()

		s := &callSession{result: &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: `{"content":"hi"}`}},
		}}
		p := newProxyTool(def, s)

		res, err := p.Execute(context.Background(), json.RawMessage(`{"path":"a.txt"}`))
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if s.gotName != "read_file" || string(s.gotArgs) != `{"path":"a.txt"}` {
			t.Errorf("CallTool(%q, %s)", s.gotName, s.gotArgs)
		}
		if res.OutputString() != `{"content":"hi"}` {
			t.Errorf("Output = %s", res.OutputString())
		}
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("broken pipe")
		p := newProxyTool(def, &callSession{err: boom})
		if _, err := p.Execute(context.Background(), nil); !errors.Is(err, boom) {
			t.Errorf("Execute() error = %v, want %v", err, boom)
		}
	})
}
