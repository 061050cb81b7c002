package ai

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// CachedBackend memoizes non-empty replies by prompt.
type CachedBackend struct {
	next  Backend
	cache *ttlcache.Cache[string, string]
}

// NewCachedBackend wraps next with a reply cache whose entries live for ttl.
func NewCachedBackend(next Backend, ttl time.Duration) *CachedBackend {
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()
	return &CachedBackend{next: next, cache: c}
}

// Generate returns the cached reply for prompt or asks the wrapped backend.
func (b *CachedBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if item := b.cache.Get(prompt); item != nil {
		return item.Value(), nil
	}

	out, err := b.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if out != "" {
		b.cache.Set(prompt, out, ttlcache.DefaultTTL)
	}
	return out, nil
}

// Len returns the number of cached replies.
func (b *CachedBackend) Len() int {
	return b.cache.Len()
}

// Close stops the cache expiration loop.
func (b *CachedBackend) Close() {
	b.cache.Stop()
}
