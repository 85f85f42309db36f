package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mmynk/karkkilista/internal/models"
)

// Default owner cache settings.
const (
	DefaultOwnerCacheSize = 1024
	DefaultOwnerCacheTTL  = 10 * time.Minute
)

// ownerCache keeps owner profiles in memory. Profiles are written once at
// registration and never change, so the TTL only bounds memory held by idle
// entries.
type ownerCache struct {
	lru *expirable.LRU[string, models.Owner]
}

// newOwnerCache creates a cache holding at most size profiles for ttl each.
// Non-positive values fall back to the defaults.
func newOwnerCache(size int, ttl time.Duration) *ownerCache {
	if size <= 0 {
		size = DefaultOwnerCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultOwnerCacheTTL
	}
	return &ownerCache{
		lru: expirable.NewLRU[string, models.Owner](size, nil, ttl),
	}
}

func (c *ownerCache) Get(ownerID string) (models.Owner, bool) {
	return c.lru.Get(ownerID)
}

func (c *ownerCache) Set(owner models.Owner) {
	c.lru.Add(owner.ID, owner)
}

func (c *ownerCache) Len() int {
	return c.lru.Len()
}
