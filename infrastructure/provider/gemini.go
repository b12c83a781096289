package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// GeminiConfig configures the Gemini handler. Either APIKey (Gemini API) or
// Project and Location (Vertex AI) must be set.
type GeminiConfig struct {
	Name     string        // Handler name (default: "gemini")
	APIKey   string        // Gemini API key
	Project  string        // Vertex AI project
	Location string        // Vertex AI location, e.g. us-central1
	BaseURL  string        // Optional endpoint override
	Models   []string      // Accepted model patterns (default: gemini-*)
	Timeout  time.Duration // Per-request timeout (0 = SDK default)
}

// GeminiDefaultModels are the patterns accepted when none are configured.
var GeminiDefaultModels = []string{"gemini-*"}

// GeminiClient is the client type produced by the Gemini handler.
type GeminiClient = Client[*genai.Client]

// NewGeminiHandler creates a handler for Google Gemini models.
func NewGeminiHandler(cfg GeminiConfig) *Handler {
	h := &Handler{
		name:     nameOr(cfg.Name, "gemini"),
		kind:     "gemini",
		patterns: patternsOr(cfg.Models, GeminiDefaultModels),
	}
	vertex := cfg.Project != "" && cfg.Location != ""
	if cfg.APIKey == "" && !vertex {
		h.unready = fmt.Errorf("%w: gemini needs an api key or a vertex project and location", ErrNotConfigured)
	}

	h.create = func(ctx context.Context, modelName string) (model.Client, error) {
		clientConfig := &genai.ClientConfig{}
		if cfg.APIKey != "" {
			clientConfig.APIKey = cfg.APIKey
			clientConfig.Backend = genai.BackendGeminiAPI
		} else {
			clientConfig.Project = cfg.Project
			clientConfig.Location = cfg.Location
			clientConfig.Backend = genai.BackendVertexAI
		}
		if cfg.BaseURL != "" {
			clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		}

		client, err := genai.NewClient(ctx, clientConfig)
		if err != nil {
			return nil, fmt.Errorf("creating genai client: %w", err)
		}
		return newClient(h.kind, modelName, client, nil), nil
	}
	return h
}
