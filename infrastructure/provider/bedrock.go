package provider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/felixgeelhaar/agent-router/domain/model"
)

// BedrockConfig configures the AWS Bedrock handler.
type BedrockConfig struct {
	Name            string   // Handler name (default: "bedrock")
	Region          string   // Required: AWS region (e.g., "us-east-1")
	AccessKeyID     string   // Optional: AWS access key (uses default credential chain if empty)
	SecretAccessKey string   // Optional: AWS secret key
	SessionToken    string   // Optional: AWS session token
	Models          []string // Accepted model ID patterns
}

// BedrockDefaultModels are the patterns accepted when none are configured.
// The last entry covers cross-region inference profiles such as
// "us.anthropic.claude-3-5-sonnet-20241022-v2:0".
var BedrockDefaultModels = []string{
	"anthropic.*",
	"amazon.*",
	"meta.*",
	"mistral.*",
	"cohere.*",
	"ai21.*",
	"*.anthropic.*",
}

// BedrockClient is the client type produced by the Bedrock handler.
type BedrockClient = Client[*bedrockruntime.Client]

// NewBedrockHandler creates a handler for models hosted on AWS Bedrock.
func NewBedrockHandler(cfg BedrockConfig) *Handler {
	h := &Handler{
		name:     nameOr(cfg.Name, "bedrock"),
		kind:     "bedrock",
		patterns: patternsOr(cfg.Models, BedrockDefaultModels),
	}
	if cfg.Region == "" {
		h.unready = fmt.Errorf("%w: bedrock region is empty", ErrNotConfigured)
	}

	h.create = func(ctx context.Context, modelName string) (model.Client, error) {
		opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
			))
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return newClient(h.kind, modelName, bedrockruntime.NewFromConfig(awsCfg), nil), nil
	}
	return h
}
