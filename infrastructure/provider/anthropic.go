package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// AnthropicConfig configures the Anthropic handler.
type AnthropicConfig struct {
	Name    string        // Handler name (default: "anthropic")
	APIKey  string        // Required: Anthropic API key
	BaseURL string        // Optional endpoint override
	Models  []string      // Accepted model patterns (default: claude-*)
	Timeout time.Duration // Per-request timeout (0 = SDK default)
}

// AnthropicDefaultModels are the patterns accepted when none are configured.
var AnthropicDefaultModels = []string{"claude-*"}

// AnthropicClient is the client type produced by the Anthropic handler.
type AnthropicClient = Client[anthropic.Client]

// NewAnthropicHandler creates a handler for Anthropic Claude models.
func NewAnthropicHandler(cfg AnthropicConfig) *Handler {
	h := &Handler{
		name:     nameOr(cfg.Name, "anthropic"),
		kind:     "anthropic",
		patterns: patternsOr(cfg.Models, AnthropicDefaultModels),
	}
	if cfg.APIKey == "" {
		h.unready = fmt.Errorf("%w: anthropic api key is empty", ErrNotConfigured)
	}

	h.create = func(_ context.Context, modelName string) (model.Client, error) {
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
		}
		return newClient(h.kind, modelName, anthropic.NewClient(opts...), nil), nil
	}
	return h
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
