package secrets

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// EnvSecretSource resolves secrets from environment variables.
// WARNING: for development only. Use AWS Secrets Manager in production.
type EnvSecretSource struct {
	logger *zap.Logger
}

// NewEnvSecretSource creates an environment-backed secret source
func NewEnvSecretSource(logger *zap.Logger) *EnvSecretSource {
	return &EnvSecretSource{logger: logger}
}

// GetSecret reads the secret from the environment variable of the same name
func (s *EnvSecretSource) GetSecret(_ context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("secret not set: %s", name)
	}

	s.logger.Debug("resolved secret from environment", zap.String("name", name))
	return value, nil
}
