package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/shared/pkg/ware_cache"
)

// cachedDirectoryImpl caches zone lookups. Zones are static, everything
// else goes to the wrapped directory.
type cachedDirectoryImpl struct {
	Directory
	cache      ware_cache.Cache
	expiration time.Duration
}

func NewCachedDirectory(dir Directory, cache ware_cache.Cache, expiration time.Duration) *cachedDirectoryImpl {
	return &cachedDirectoryImpl{
		Directory:  dir,
		cache:      cache,
		expiration: expiration,
	}
}

// Zone implements Directory.
func (c *cachedDirectoryImpl) Zone(ctx context.Context, zoneID uint) (*collection_model.Zone, error) {
	var err error
	key := fmt.Sprintf("collection/zone/%d", zoneID)

	zone := collection_model.Zone{}
	err = c.cache.Get(ctx, key, &zone)
	if err == nil {
		return &zone, nil
	}

	if !errors.Is(err, ware_cache.ErrCacheMiss) {
		slog.Warn("zone cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	found, err := c.Directory.Zone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	err = c.cache.Add(ctx, &ware_cache.CacheItem{
		Key:        key,
		Expiration: c.expiration,
		Data:       found,
	})
	if err != nil {
		slog.Warn("zone cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return found, nil
}
