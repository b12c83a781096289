package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// proxyTool exposes a remote tool as a tool.Tool. Execute calls the tool on
// the connection's session.
type proxyTool struct {
	name        string
	description string
	schema      tool.Schema
	annotations tool.Annotations
	session     Session
}

var _ tool.Tool = (*proxyTool)(nil)

func newProxyTool(def *mcpsdk.Tool, session Session) *proxyTool {
	t := &proxyTool{
		name:        def.Name,
		description: def.Description,
		schema:      tool.EmptySchema(),
		session:     session,
	}
	if raw, err := json.Marshal(def.InputSchema); err == nil {
		if s := tool.NewSchema(raw); !s.IsEmpty() {
			t.schema = s
		}
	}
	if a := def.Annotations; a != nil {
		t.annotations = tool.Annotations{
			Title:      a.Title,
			ReadOnly:   a.ReadOnlyHint,
			Idempotent: a.IdempotentHint,
		}
		if a.DestructiveHint != nil {
			t.annotations.Destructive = *a.DestructiveHint
		}
		if a.OpenWorldHint != nil {
			t.annotations.OpenWorld = *a.OpenWorldHint
		}
	}
	return t
}

func (t *proxyTool) Name() string { return t.name }

func (t *proxyTool) Description() string { return t.description }

func (t *proxyTool) InputSchema() tool.Schema { return t.schema }

func (t *proxyTool) Annotations() tool.Annotations { return t.annotations }

func (t *proxyTool) Execute(ctx context.Context, input json.RawMessage) (tool.Result, error) {
	start := time.Now()
	res, err := t.session.CallTool(ctx, t.name, input)
	if err != nil {
		return tool.Result{}, err
	}
	out := convertResult(res)
	out.Duration = time.Since(start)
	return out, nil
}

// convertResult maps a tools/call result onto a tool.Result. Structured
// content wins over text. A single text block that is valid JSON is passed
// through; other text is returned as a JSON string.
func convertResult(res *mcpsdk.CallToolResult) tool.Result {
	if res == nil {
		return tool.NewResult(json.RawMessage(`{}`))
	}

	texts := make([]string, 0, len(res.Content))
	textOnly := true
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			texts = append(texts, tc.Text)
			continue
		}
		textOnly = false
	}

	if res.IsError {
		msg := strings.Join(texts, "\n")
		if msg == "" {
			msg = "tool execution failed"
		}
		return tool.NewErrorResult(errors.New(msg))
	}

	if res.StructuredContent != nil {
		if raw, err := json.Marshal(res.StructuredContent); err == nil {
			return tool.NewResult(raw)
		}
	}

	if !textOnly {
		if raw, err := json.Marshal(res.Content); err == nil {
			return tool.NewResult(raw)
		}
	}

	switch len(texts) {
	case 0:
		return tool.NewResult(json.RawMessage(`{}`))
	case 1:
		if json.Valid([]byte(texts[0])) {
			return tool.NewResult(json.RawMessage(texts[0]))
		}
		return tool.NewTextResult(texts[0])
	default:
		return tool.NewTextResult(strings.Join(texts, "\n"))
	}
}
