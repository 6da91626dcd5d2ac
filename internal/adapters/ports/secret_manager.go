package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., DB password)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving secrets from a secret
// management service. Supported backends: AWS Secrets Manager, HashiCorp
// Vault, and a local env-backed implementation for development.
// Implementations are responsible for authentication with the backend and
// for caching secrets with a sensible TTL.
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - AWS: "commission-service/database/password"
	//   - Vault: "secret/data/commission-service/database"
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
