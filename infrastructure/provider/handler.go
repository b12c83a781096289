// Package provider implements model handlers for the supported model
// integrations. Each handler accepts model names by glob pattern and builds
// a client on the integration's official SDK.
package provider

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// ErrNotConfigured indicates a handler lacks the credentials or settings it
// needs to build clients.
var ErrNotConfigured = errors.New("handler not configured")

// createFunc builds a client for a model the handler accepted.
type createFunc func(ctx context.Context, modelName string) (model.Client, error)

// Handler is a pattern-matching model handler shared by every integration.
type Handler struct {
	name     string
	kind     string
	patterns []string
	// unready is non-nil when the handler is missing configuration. It is
	// computed once at construction so CanHandle never performs I/O.
	unready error
	create  createFunc
}

// Name returns the handler name.
func (h *Handler) Name() string {
	return h.name
}

// Kind returns the integration type.
func (h *Handler) Kind() string {
	return h.kind
}

// Patterns returns the model name patterns the handler accepts.
func (h *Handler) Patterns() []string {
	out := make([]string, len(h.patterns))
	copy(out, h.patterns)
	return out
}

// Ready returns nil when the handler is configured, or the reason it is not.
func (h *Handler) Ready() error {
	return h.unready
}

// CanHandle reports whether the handler is configured and the model name
// matches one of its patterns.
func (h *Handler) CanHandle(modelName string) bool {
	if h.unready != nil {
		return false
	}
	return MatchAny(h.patterns, modelName)
}

// CreateClient builds a client for the model.
func (h *Handler) CreateClient(ctx context.Context, modelName string) (model.Client, error) {
	if h.unready != nil {
		return nil, h.unready
	}
	return h.create(ctx, modelName)
}

var _ model.Handler = (*Handler)(nil)

// MatchAny reports whether name matches any glob pattern, ignoring case.
// Malformed patterns never match.
func MatchAny(patterns []string, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, p := range patterns {
		ok, err := path.Match(strings.ToLower(p), name)
		if err == nil && ok {
			return true
		}
	}
	return false
}

func patternsOr(configured, defaults []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return defaults
}
