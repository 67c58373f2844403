package config

import "context"

// SecretProvider resolves secret references to plaintext values.
type SecretProvider interface {
	// GetParametersBatch resolves keys in one call. Keys that cannot be
	// resolved are omitted from the result.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
