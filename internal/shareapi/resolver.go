package shareapi

import (
	"context"
	"sync"
)

// Resolver caches share metadata per token for the lifetime of one run.
// Metadata is immutable per token, so a successful fetch is never repeated;
// failures are not cached because they may be transient network errors.
type Resolver struct {
	client *Client

	mu    sync.RWMutex
	cache map[string]*ShareInfo
}

// NewResolver creates a Resolver over the given client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{
		client: client,
		cache:  make(map[string]*ShareInfo),
	}
}

// Resolve returns the share metadata for a token, fetching it at most once.
func (r *Resolver) Resolve(ctx context.Context, token string) (*ShareInfo, error) {
	r.mu.RLock()
	info, ok := r.cache[token]
	r.mu.RUnlock()

	if ok {
		return info, nil
	}

	info, err := r.client.Info(ctx, token)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[token] = info
	r.mu.Unlock()

	return info, nil
}
