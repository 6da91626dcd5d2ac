package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/adapters/ports"
)

// VaultConfig contains configuration for HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// Cache TTL
	CacheTTL time.Duration

	// Enable caching
	EnableCache bool

	// TLS configuration
	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration for Vault adapter
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:     address,
		MountPath:   "secret",
		CacheTTL:    5 * time.Minute,
		EnableCache: true,
	}
}

// vaultAdapter implements the SecretManagerAdapter port for HashiCorp Vault
// using the KV v2 secrets engine
type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultAdapter creates a new HashiCorp Vault adapter
func NewVaultAdapter(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		tlsConfig := &vault.TLSConfig{Insecure: true}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("vault token is required")
	}
	client.SetToken(cfg.Token)

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", cfg.MountPath),
	)

	return &vaultAdapter{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.EnableCache, cfg.CacheTTL),
	}, nil
}

// GetSecret retrieves a secret from the KV v2 engine. The secret value is
// expected under the "value" key of the secret data.
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		return cached, nil
	}

	kv := a.client.KVv2(a.config.MountPath)
	kvSecret, err := kv.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %q from vault: %w", path, err)
	}

	value, ok := kvSecret.Data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %q has no string 'value' key", path)
	}

	secret := &ports.Secret{
		Value:   value,
		Version: fmt.Sprintf("%d", kvSecret.VersionMetadata.Version),
	}
	if !kvSecret.VersionMetadata.CreatedTime.IsZero() {
		secret.CreatedAt = kvSecret.VersionMetadata.CreatedTime.Format(time.RFC3339)
	}

	a.cache.put(path, secret)
	return secret, nil
}
