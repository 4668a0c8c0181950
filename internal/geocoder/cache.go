package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chrisdamba/tripsim/internal/models"
)

const cacheKeyPrefix = "tripsim:geocode"

// Cache stores encoded lookup results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CacheHitRecorder is told when a lookup was answered from the cache.
type CacheHitRecorder interface {
	GeocodeCacheHit()
}

// Cached serves repeated queries from a Cache. Only successful, non-empty
// results are stored; cache failures fall through to the wrapped geocoder.
type Cached struct {
	next    Geocoder
	cache   Cache
	ttl     time.Duration
	metrics CacheHitRecorder
}

func NewCached(next Geocoder, cache Cache, ttl time.Duration, m CacheHitRecorder) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, metrics: m}
}

type cachedPlace struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func (c *Cached) Search(ctx context.Context, query string, limit int) Result {
	key := cacheKey(query, limit)

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		log.Printf("geocode cache get %s: %v", key, err)
	} else if ok {
		var stored []cachedPlace
		if err := json.Unmarshal(data, &stored); err != nil {
			log.Printf("geocode cache decode %s: %v", key, err)
		} else {
			if c.metrics != nil {
				c.metrics.GeocodeCacheHit()
			}
			places := make([]models.Place, len(stored))
			for i, p := range stored {
				places[i] = models.Place{DisplayName: p.DisplayName, Lat: p.Lat, Lon: p.Lon}
			}
			return OK(places)
		}
	}

	res := c.next.Search(ctx, query, limit)
	if res.Err != nil || len(res.Places) == 0 {
		return res
	}

	stored := make([]cachedPlace, len(res.Places))
	for i, p := range res.Places {
		stored[i] = cachedPlace{DisplayName: p.DisplayName, Lat: p.Lat, Lon: p.Lon}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		log.Printf("geocode cache encode %s: %v", key, err)
		return res
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		log.Printf("geocode cache set %s: %v", key, err)
	}
	return res
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("%s:%d:%s", cacheKeyPrefix, limit, strings.ToLower(strings.TrimSpace(query)))
}
