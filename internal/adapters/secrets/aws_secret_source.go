package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// AWSSecretSourceConfig configures the AWS Secrets Manager source
type AWSSecretSourceConfig struct {
	Region string

	// Optional AWS profile, for local development
	Profile string

	// Optional custom endpoint, for LocalStack testing
	Endpoint string

	// Cache TTL for resolved secrets (default: 5 minutes)
	CacheTTL time.Duration
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// AWSSecretSource resolves secrets from AWS Secrets Manager with a small
// in-memory cache to avoid repeated API calls during startup.
type AWSSecretSource struct {
	client *secretsmanager.Client
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedSecret
}

// NewAWSSecretSource creates an AWS Secrets Manager secret source
func NewAWSSecretSource(ctx context.Context, cfg AWSSecretSourceConfig, logger *zap.Logger) (*AWSSecretSource, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	logger.Info("AWS Secrets Manager source initialized",
		zap.String("region", cfg.Region),
		zap.Duration("cache_ttl", ttl),
	)

	return &AWSSecretSource{
		client: secretsmanager.NewFromConfig(awsCfg, clientOpts...),
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]cachedSecret),
	}, nil
}

// GetSecret resolves a secret by id, serving from cache when fresh
func (s *AWSSecretSource) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	if entry, ok := s.cache[name]; ok && time.Now().Before(entry.expiresAt) {
		s.mu.Unlock()
		return entry.value, nil
	}
	s.mu.Unlock()

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.mu.Lock()
	s.cache[name] = cachedSecret{
		value:     *out.SecretString,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	s.logger.Debug("resolved secret from AWS Secrets Manager", zap.String("name", name))
	return *out.SecretString, nil
}
