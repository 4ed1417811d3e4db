package client

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const tokenCacheKey = "csrf_token"

// tokenSource owns the anti-forgery token cache. The API client is its
// only consumer; everything else sees tokens indirectly through the
// X-CSRFToken header.
type tokenSource struct {
	cache *cache.Cache
	fetch func(ctx context.Context) (string, error)
}

func newTokenSource(fetch func(ctx context.Context) (string, error)) *tokenSource {
	// Tokens live for an hour, matching the usual server session window;
	// expired entries purge every 10 minutes.
	return &tokenSource{
		cache: cache.New(1*time.Hour, 10*time.Minute),
		fetch: fetch,
	}
}

// Token returns the cached token, fetching one lazily on first use or
// after an invalidation.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	if x, found := t.cache.Get(tokenCacheKey); found {
		return x.(string), nil
	}

	token, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}

	t.cache.Set(tokenCacheKey, token, cache.DefaultExpiration)
	return token, nil
}

func (t *tokenSource) Invalidate() {
	t.cache.Delete(tokenCacheKey)
}
