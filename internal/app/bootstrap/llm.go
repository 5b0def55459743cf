package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/internal/llm"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// BuildLLMClient selects the primary provider and, when configured, wraps it
// with a secondary for failover. A nil client without error means no
// provider is configured and calls run on the fallback script alone.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (llm.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	primary, err := buildProvider(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		logger.Warn("primary llm unavailable; replies come from the fallback script", "provider", cfg.LLMProvider, "error", err)
		return nil, nil
	}

	secondaryName := strings.TrimSpace(cfg.LLMSecondaryProvider)
	if secondaryName == "" || secondaryName == cfg.LLMProvider {
		logger.Info("llm configured", "provider", cfg.LLMProvider)
		return primary, nil
	}
	secondary, err := buildProvider(ctx, secondaryName, cfg, awsCfg)
	if err != nil {
		logger.Warn("secondary llm unavailable; running without failover", "provider", secondaryName, "error", err)
		return primary, nil
	}
	logger.Info("llm configured", "provider", cfg.LLMProvider, "secondary", secondaryName)
	return llm.NewFailoverClient(primary, secondary, logger), nil
}

func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, awsCfg *aws.Config) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "groq", "openai", "":
		provider := name
		if provider == "" {
			provider = "groq"
		}
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			Provider: provider,
			APIKey:   cfg.LLMAPIKey,
			BaseURL:  cfg.LLMBaseURL,
			Model:    cfg.LLMModel,
			Timeout:  cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for bedrock")
		}
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: aws config is required for bedrock")
		}
		return llm.NewBedrockClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown llm provider %q", name)
	}
}
