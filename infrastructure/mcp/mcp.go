// Package mcp connects to remote Model Context Protocol tool servers and
// exposes tool sets over MCP. Outbound connections use the official MCP Go
// SDK; the serving side wraps github.com/felixgeelhaar/mcp-go.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/felixgeelhaar/agent-router/domain/connection"
)

var (
	// ErrManagerClosed indicates the manager was torn down.
	ErrManagerClosed = errors.New("connection manager closed")

	// ErrUnknownConnection indicates a connection name that is not configured.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrNotConnected indicates a call on a connection without a session.
	ErrNotConnected = errors.New("connection not connected")
)

// Defaults applied by NewManager.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultMaxConcurrent  = 4
)

// Session is an open session with one tool server.
type Session interface {
	// ListTools returns every tool the server advertises.
	ListTools(ctx context.Context) ([]*mcpsdk.Tool, error)

	// CallTool invokes a tool with JSON arguments.
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (*mcpsdk.CallToolResult, error)

	// Close ends the session.
	Close() error
}

// Dialer opens sessions for connection configurations.
type Dialer interface {
	Dial(ctx context.Context, cfg connection.Config) (Session, error)
}

// DialerFunc adapts a function into a Dialer.
type DialerFunc func(ctx context.Context, cfg connection.Config) (Session, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, cfg connection.Config) (Session, error) {
	return f(ctx, cfg)
}
