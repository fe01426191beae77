package ports

import "context"

// Supplies credentials on demand (API keys, DSNs).
type SecretSource interface {
	Lookup(ctx context.Context, name string) (string, error)
}
