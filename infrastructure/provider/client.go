package provider

import (
	"sync"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// Client is a model client wrapping an integration SDK client of type T.
type Client[T any] struct {
	provider string
	model    string
	sdk      T

	closeOnce sync.Once
	closeErr  error
	closer    func() error
}

func newClient[T any](provider, modelName string, sdk T, closer func() error) *Client[T] {
	return &Client[T]{
		provider: provider,
		model:    modelName,
		sdk:      sdk,
		closer:   closer,
	}
}

// Provider returns the integration type.
func (c *Client[T]) Provider() string {
	return c.provider
}

// Model returns the model name.
func (c *Client[T]) Model() string {
	return c.model
}

// SDK returns the underlying SDK client.
func (c *Client[T]) SDK() T {
	return c.sdk
}

// Close releases the SDK client. Later calls return the first result.
func (c *Client[T]) Close() error {
	c.closeOnce.Do(func() {
		if c.closer != nil {
			c.closeErr = c.closer()
		}
	})
	return c.closeErr
}

var _ model.Client = (*Client[struct{}])(nil)
