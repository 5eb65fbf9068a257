package hotelsearch

import (
	"context"
	"time"

	"travelhost-backend/lib/scrapers/travelhost"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// searcher is the slice of travelhost.Client the orchestrator drives.
type searcher interface {
	EnsureLoggedIn(ctx context.Context) error
	Vendors(ctx context.Context) ([]travelhost.Vendor, error)
	Origins(ctx context.Context) ([]travelhost.Market, error)
	Destinations(ctx context.Context) ([]travelhost.Market, error)
	SearchVendor(ctx context.Context, vendor travelhost.Vendor, params travelhost.SearchParams) ([]travelhost.HotelResult, error)
}

// clientCache keeps one live client per logical user. A client is not
// safe for concurrent use, so a caller must not share one identity
// across goroutines.
type clientCache struct {
	cache *expirable.LRU[string, searcher]
	dial  func(creds travelhost.Credentials) (searcher, error)
}

func newClientCache(dial func(creds travelhost.Credentials) (searcher, error)) clientCache {
	return clientCache{
		cache: expirable.NewLRU[string, searcher](2048, nil, time.Minute*15),
		dial:  dial,
	}
}

func (c clientCache) get(creds travelhost.Credentials) (searcher, error) {
	client, ok := c.cache.Get(creds.Identity())
	if ok {
		return client, nil
	}
	client, err := c.dial(creds)
	if err != nil {
		return nil, err
	}
	c.cache.Add(creds.Identity(), client)
	return client, nil
}
