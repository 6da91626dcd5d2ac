package secrets

import (
	"time"

	"github.com/partnerhub/commission-service/internal/adapters/ports"
)

// secretCache implements a simple in-memory cache for secrets
type secretCache struct {
	entries map[string]*cacheEntry
	enabled bool
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *ports.Secret
	expiresAt time.Time
}

func (c *secretCache) get(path string) *ports.Secret {
	if !c.enabled {
		return nil
	}
	entry, ok := c.entries[path]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.secret
}

func (c *secretCache) put(path string, secret *ports.Secret) {
	if !c.enabled {
		return
	}
	c.entries[path] = &cacheEntry{
		secret:    secret,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func newSecretCache(enabled bool, ttl time.Duration) *secretCache {
	return &secretCache{
		entries: make(map[string]*cacheEntry),
		enabled: enabled,
		ttl:     ttl,
	}
}
