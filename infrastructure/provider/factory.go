package provider

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/agent-router/domain/config"
)

// NewHandler builds the handler for one configured integration.
func NewHandler(cfg config.HandlerConfig) (*Handler, error) {
	timeout := cfg.Timeout.Duration()

	switch strings.ToLower(cfg.Type) {
	case config.HandlerAnthropic:
		return NewAnthropicHandler(AnthropicConfig{
			Name:    cfg.Name,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Models:  cfg.Models,
			Timeout: timeout,
		}), nil
	case config.HandlerOpenAI:
		return NewOpenAIHandler(OpenAIConfig{
			Name:    cfg.Name,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Models:  cfg.Models,
			Timeout: timeout,
		}), nil
	case config.HandlerGemini:
		return NewGeminiHandler(GeminiConfig{
			Name:     cfg.Name,
			APIKey:   cfg.APIKey,
			Project:  cfg.Project,
			Location: cfg.Location,
			BaseURL:  cfg.BaseURL,
			Models:   cfg.Models,
			Timeout:  timeout,
		}), nil
	case config.HandlerBedrock:
		return NewBedrockHandler(BedrockConfig{
			Name:            cfg.Name,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			SessionToken:    cfg.SessionToken,
			Models:          cfg.Models,
		}), nil
	case config.HandlerOllama:
		return NewOllamaHandler(OllamaConfig{
			Name:    cfg.Name,
			BaseURL: cfg.BaseURL,
			Models:  cfg.Models,
			Timeout: timeout,
		}), nil
	case config.HandlerCopilot:
		return NewCopilotHandler(CopilotConfig{
			Name:    cfg.Name,
			CLIPath: cfg.CLIPath,
			CLIUrl:  cfg.CLIUrl,
			Models:  cfg.Models,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownHandlerType, cfg.Type)
	}
}
