package secrets

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/coursedesk/checkout-service/internal/domain/ports"
)

// Resolve fetches the named secrets through the backend selected by
// SECRETS_BACKEND and exports them as environment variables for config
// loading. "aws" reads from AWS Secrets Manager; anything else reads the
// environment directly.
func Resolve(ctx context.Context, logger *zap.Logger, names ...string) error {
	var source ports.SecretSource
	if os.Getenv("SECRETS_BACKEND") == "aws" {
		awsSource, err := NewAWSSecretSource(ctx, AWSSecretSourceConfig{
			Region:   os.Getenv("AWS_REGION"),
			Endpoint: os.Getenv("AWS_SECRETS_ENDPOINT"),
		}, logger)
		if err != nil {
			return err
		}
		source = awsSource
	} else {
		source = NewEnvSecretSource(logger)
	}

	for _, name := range names {
		value, err := source.GetSecret(ctx, name)
		if err != nil {
			return err
		}
		if err := os.Setenv(name, value); err != nil {
			return err
		}
	}
	return nil
}
