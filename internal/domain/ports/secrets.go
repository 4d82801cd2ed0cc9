package ports

import "context"

// SecretSource resolves named secrets at startup (processor API key,
// webhook signing secret). Read-only: this service never writes or
// rotates secrets.
type SecretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
}
