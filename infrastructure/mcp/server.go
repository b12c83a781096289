package mcp

import (
	"context"
	"encoding/json"

	mcpgo "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/agent-router/domain/tool"
)

// Executor runs a resolved tool. It lets the server apply timeouts and
// retries per source.
type Executor interface {
	Execute(ctx context.Context, d tool.Descriptor, input json.RawMessage) (tool.Result, error)
}

type directExecutor struct{}

func (directExecutor) Execute(ctx context.Context, d tool.Descriptor, input json.RawMessage) (tool.Result, error) {
	return d.Tool.Execute(ctx, input)
}

// ToolSetServer exposes a resolved tool set over MCP.
type ToolSetServer struct {
	srv        *mcpgo.Server
	info       mcpgo.ServerInfo
	names      []string
	middleware []mcpgo.Middleware
}

// ServerConfig configures a ToolSetServer.
type ServerConfig struct {
	// Name is the server name.
	Name string

	// Version is the server version.
	Version string

	// Description is an optional server description.
	Description string

	// Instructions provides usage instructions for clients.
	Instructions string

	// Tools are the tools to expose.
	Tools []tool.Descriptor

	// Executor runs tool calls (default: direct execution).
	Executor Executor
}

// NewToolSetServer creates an MCP server exposing cfg.Tools.
func NewToolSetServer(cfg ServerConfig) *ToolSetServer {
	info := mcpgo.ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: cfg.Description,
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	var opts []mcpgo.Option
	if cfg.Instructions != "" {
		opts = append(opts, mcpgo.WithInstructions(cfg.Instructions))
	}

	executor := cfg.Executor
	if executor == nil {
		executor = directExecutor{}
	}

	s := &ToolSetServer{
		srv:  mcpgo.NewServer(info, opts...),
		info: info,
	}
	for _, d := range cfg.Tools {
		if d.Tool == nil {
			continue
		}
		s.srv.Tool(d.Name).
			Description(d.Tool.Description()).
			Handler(toolHandler(d, executor))
		s.names = append(s.names, d.Name)
	}
	return s
}

// toolHandler adapts a tool to the mcp-go handler signature. Tool-level
// errors are returned as handler errors.
func toolHandler(d tool.Descriptor, executor Executor) func(context.Context, json.RawMessage) (string, error) {
	return func(ctx context.Context, input json.RawMessage) (string, error) {
		result, err := executor.Execute(ctx, d, input)
		if err != nil {
			return "", err
		}
		if result.IsError() {
			return "", result.Error
		}
		return result.OutputString(), nil
	}
}

// Server returns the underlying mcp-go server.
func (s *ToolSetServer) Server() *mcpgo.Server {
	return s.srv
}

// Info returns the server metadata.
func (s *ToolSetServer) Info() mcpgo.ServerInfo {
	return s.info
}

// ToolNames returns the exposed tool names in registration order.
func (s *ToolSetServer) ToolNames() []string {
	return append([]string(nil), s.names...)
}

// Use adds request middleware. It wraps every JSON-RPC request on both
// transports, in the order given.
func (s *ToolSetServer) Use(middlewares ...mcpgo.Middleware) {
	s.middleware = append(s.middleware, middlewares...)
}

// ServeStdio runs the server over stdin/stdout.
func (s *ToolSetServer) ServeStdio(ctx context.Context, opts ...mcpgo.ServeOption) error {
	return mcpgo.ServeStdio(ctx, s.srv, s.serveOptions(opts)...)
}

// ServeHTTP runs the server over HTTP.
func (s *ToolSetServer) ServeHTTP(ctx context.Context, addr string, opts ...mcpgo.HTTPOption) error {
	return mcpgo.ServeHTTPWithMiddleware(ctx, s.srv, addr, opts, s.serveOptions(nil)...)
}

func (s *ToolSetServer) serveOptions(extra []mcpgo.ServeOption) []mcpgo.ServeOption {
	opts := make([]mcpgo.ServeOption, 0, len(extra)+1)
	if len(s.middleware) > 0 {
		opts = append(opts, mcpgo.WithMiddleware(s.middleware...))
	}
	return append(opts, extra...)
}
