package tool

import (
	"context"
	"encoding/json"
)

// Tool is an invocable capability offered to an agent, either registered
// in-process or proxied from a remote tool server.
type Tool interface {
	// Name returns the stable string identifier for the tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// InputSchema returns the JSON Schema describing the tool input.
	InputSchema() Schema

	// Annotations returns the tool's behavioral hints.
	Annotations() Annotations

	// Execute runs the tool with the given input.
	Execute(ctx context.Context, input json.RawMessage) (Result, error)
}

// Handler is the function signature for tool execution.
type Handler func(ctx context.Context, input json.RawMessage) (Result, error)

// Definition is a concrete implementation of Tool.
type Definition struct {
	name        string
	description string
	inputSchema Schema
	annotations Annotations
	handler     Handler
}

// Name returns the tool name.
func (d *Definition) Name() string {
	return d.name
}

// Description returns the tool description.
func (d *Definition) Description() string {
	return d.description
}

// InputSchema returns the input schema.
func (d *Definition) InputSchema() Schema {
	return d.inputSchema
}

// Annotations returns the tool annotations.
func (d *Definition) Annotations() Annotations {
	return d.annotations
}

// Execute runs the tool handler.
func (d *Definition) Execute(ctx context.Context, input json.RawMessage) (Result, error) {
	if d.handler == nil {
		return Result{}, ErrNoHandler
	}
	return d.handler(ctx, input)
}

// Builder provides a fluent API for constructing tools.
type Builder struct {
	def *Definition
}

// NewBuilder creates a new tool builder with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		def: &Definition{
			name:        name,
			inputSchema: EmptySchema(),
		},
	}
}

// WithDescription sets the tool description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.def.description = desc
	return b
}

// WithInputSchema sets the input schema.
func (b *Builder) WithInputSchema(schema Schema) *Builder {
	if !schema.IsEmpty() {
		b.def.inputSchema = schema
	}
	return b
}

// WithAnnotations sets the tool annotations.
func (b *Builder) WithAnnotations(annotations Annotations) *Builder {
	b.def.annotations = annotations
	return b
}

// ReadOnly marks the tool as free of side effects.
func (b *Builder) ReadOnly() *Builder {
	b.def.annotations.ReadOnly = true
	b.def.annotations.Destructive = false
	return b
}

// WithHandler sets the tool handler function.
func (b *Builder) WithHandler(handler Handler) *Builder {
	b.def.handler = handler
	return b
}

// Build validates and returns the tool.
func (b *Builder) Build() (Tool, error) {
	if b.def.name == "" {
		return nil, ErrEmptyName
	}
	if b.def.handler == nil {
		return nil, ErrNoHandler
	}
	return b.def, nil
}

// MustBuild builds the tool and panics on error.
func (b *Builder) MustBuild() Tool {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
