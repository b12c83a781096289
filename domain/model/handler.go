// Package model defines model-generation clients and the handlers that
// construct them.
package model

import (
	"context"
)

// Client is an opaque, ready-to-use model-generation client produced by a
// handler. Concrete clients expose their underlying SDK client to the host.
type Client interface {
	// Provider returns the name of the integration that built the client.
	Provider() string

	// Model returns the model name the client was built for.
	Model() string

	// Close releases resources held by the client.
	Close() error
}

// Handler is one link in the routing chain. It decides whether it can serve
// a model name and, if so, constructs a client for it.
type Handler interface {
	// Name returns the stable handler identifier used in diagnostics.
	Name() string

	// CanHandle reports whether the handler may serve the model. It must not
	// perform I/O.
	CanHandle(modelName string) bool

	// CreateClient constructs a client for the model. It is only called when
	// CanHandle returned true.
	CreateClient(ctx context.Context, modelName string) (Client, error)
}

// CanHandleFunc decides whether a handler can serve a model name.
type CanHandleFunc func(modelName string) bool

// CreateClientFunc constructs a client for a model name.
type CreateClientFunc func(ctx context.Context, modelName string) (Client, error)

type funcHandler struct {
	name      string
	canHandle CanHandleFunc
	create    CreateClientFunc
}

// NewHandler adapts a name and two functions into a Handler.
func NewHandler(name string, canHandle CanHandleFunc, create CreateClientFunc) Handler {
	return &funcHandler{name: name, canHandle: canHandle, create: create}
}

func (h *funcHandler) Name() string { return h.name }

func (h *funcHandler) CanHandle(modelName string) bool {
	if h.canHandle == nil {
		return false
	}
	return h.canHandle(modelName)
}

func (h *funcHandler) CreateClient(ctx context.Context, modelName string) (Client, error) {
	if h.create == nil {
		return nil, ErrNoFactory
	}
	return h.create(ctx, modelName)
}

// StaticClient is a minimal Client carrying only its identity.
type StaticClient struct {
	ProviderName string
	ModelName    string
}

// Provider returns the provider name.
func (c *StaticClient) Provider() string { return c.ProviderName }

// Model returns the model name.
func (c *StaticClient) Model() string { return c.ModelName }

// Close is a no-op.
func (c *StaticClient) Close() error { return nil }
