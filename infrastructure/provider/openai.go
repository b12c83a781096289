package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// OpenAIConfig configures the OpenAI handler.
type OpenAIConfig struct {
	Name    string        // Handler name (default: "openai")
	APIKey  string        // Required: OpenAI API key
	BaseURL string        // Optional endpoint override
	Models  []string      // Accepted model patterns
	Timeout time.Duration // Per-request timeout (0 = SDK default)
}

// OpenAIDefaultModels are the patterns accepted when none are configured.
var OpenAIDefaultModels = []string{"gpt-*", "o1*", "o3*", "o4*", "chatgpt-*"}

// OpenAIClient is the client type produced by the OpenAI and Ollama handlers.
type OpenAIClient = Client[openai.Client]

// NewOpenAIHandler creates a handler for OpenAI models.
func NewOpenAIHandler(cfg OpenAIConfig) *Handler {
	h := &Handler{
		name:     nameOr(cfg.Name, "openai"),
		kind:     "openai",
		patterns: patternsOr(cfg.Models, OpenAIDefaultModels),
	}
	if cfg.APIKey == "" {
		h.unready = fmt.Errorf("%w: openai api key is empty", ErrNotConfigured)
	}

	h.create = func(_ context.Context, modelName string) (model.Client, error) {
		return newClient(h.kind, modelName, openai.NewClient(openAIOptions(cfg.APIKey, cfg.BaseURL, cfg.Timeout)...), nil), nil
	}
	return h
}

// OllamaConfig configures the Ollama handler.
type OllamaConfig struct {
	Name    string        // Handler name (default: "ollama")
	BaseURL string        // Required: Ollama server, e.g. http://localhost:11434
	Models  []string      // Accepted model patterns
	Timeout time.Duration // Per-request timeout (0 = SDK default)
}

// OllamaDefaultModels are the patterns accepted when none are configured.
var OllamaDefaultModels = []string{"llama*", "mistral*", "qwen*", "phi*", "gemma*", "codellama*", "deepseek*"}

// NewOllamaHandler creates a handler for models served by Ollama through its
// OpenAI-compatible endpoint.
func NewOllamaHandler(cfg OllamaConfig) *Handler {
	h := &Handler{
		name:     nameOr(cfg.Name, "ollama"),
		kind:     "ollama",
		patterns: patternsOr(cfg.Models, OllamaDefaultModels),
	}
	if cfg.BaseURL == "" {
		h.unready = fmt.Errorf("%w: ollama base url is empty", ErrNotConfigured)
	}

	h.create = func(_ context.Context, modelName string) (model.Client, error) {
		opts := openAIOptions("ollama", OllamaEndpoint(cfg.BaseURL), cfg.Timeout)
		return newClient(h.kind, modelName, openai.NewClient(opts...), nil), nil
	}
	return h
}

// OllamaEndpoint returns the OpenAI-compatible endpoint of an Ollama server.
func OllamaEndpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/"
	}
	return base + "/v1/"
}

func openAIOptions(apiKey, baseURL string, timeout time.Duration) []option.RequestOption {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return opts
}
