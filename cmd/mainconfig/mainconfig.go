// Package mainconfig holds the AWS SDK setup shared by the binaries.
package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// UsesAWS reports whether any configured backend talks to AWS: the transcript
// archive, SES email or a Bedrock model.
func UsesAWS(cfg *appconfig.Config) bool {
	if cfg == nil {
		return false
	}
	return strings.TrimSpace(cfg.ArchiveBucket) != "" ||
		strings.EqualFold(cfg.EmailProvider, "ses") ||
		strings.EqualFold(cfg.LLMProvider, "bedrock") ||
		strings.EqualFold(cfg.LLMSecondaryProvider, "bedrock")
}

// LoadAWSConfig resolves region and credentials. Static keys win over the
// default chain; AWS_ENDPOINT_OVERRIDE points every client at LocalStack.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}

// LoadOptionalAWS returns nil when nothing needs AWS or the SDK config cannot
// be resolved; callers then fall back to their non-AWS backends.
func LoadOptionalAWS(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *aws.Config {
	if !UsesAWS(cfg) {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		return nil
	}
	return &awsCfg
}
