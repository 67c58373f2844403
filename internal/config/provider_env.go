package config

import (
	"context"
	"os"
)

// EnvVarProvider resolves each secret reference as the name of another
// environment variable. Platforms that mount secrets under their own names
// (DATABASE_URL_SECRET_REF=RDS_PRIMARY_URL) need nothing more.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetParametersBatch looks each key up with os.LookupEnv. Unset keys are
// omitted.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			result[key] = val
		}
	}
	return result, nil
}
