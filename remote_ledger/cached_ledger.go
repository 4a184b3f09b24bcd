package remote_ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/shared/pkg/ware_cache"
)

// cachedLedgerImpl serves report reads from a cache. Reads that require a
// server round trip bypass it, and cache hits are marked SourceCache.
// A committed batch evicts every cached read of the zones it touched.
type cachedLedgerImpl struct {
	RemoteLedger
	cache      ware_cache.Cache
	expiration time.Duration

	mu   sync.Mutex
	keys map[uint]map[string]struct{}
}

func NewCachedLedger(ledger RemoteLedger, cache ware_cache.Cache, expiration time.Duration) *cachedLedgerImpl {
	return &cachedLedgerImpl{
		RemoteLedger: ledger,
		cache:        cache,
		expiration:   expiration,
		keys:         map[uint]map[string]struct{}{},
	}
}

func zoneSinceKey(zoneID uint, since time.Time) string {
	return fmt.Sprintf("collection/pagos/zone/%d/since/%d", zoneID, since.Unix())
}

// QueryByZoneSince implements RemoteLedger.
func (c *cachedLedgerImpl) QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time, opt QueryOption) (*Snapshot, error) {
	key := zoneSinceKey(zoneID, since)

	if opt.ForceServer {
		return c.RemoteLedger.QueryByZoneSince(ctx, zoneID, since, opt)
	}

	list := collection_model.PaymentList{}
	err := c.cache.Get(ctx, key, &list)
	if err == nil {
		return &Snapshot{
			Payments: list,
			Source:   SourceCache,
		}, nil
	}

	if !errors.Is(err, ware_cache.ErrCacheMiss) {
		slog.Warn("remote ledger cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	snap, err := c.RemoteLedger.QueryByZoneSince(ctx, zoneID, since, opt)
	if err != nil {
		return snap, err
	}

	err = c.cache.Add(ctx, &ware_cache.CacheItem{
		Key:        key,
		Expiration: c.expiration,
		Data:       &snap.Payments,
	})
	if err != nil {
		slog.Warn("remote ledger cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		return snap, nil
	}

	c.mu.Lock()
	if c.keys[zoneID] == nil {
		c.keys[zoneID] = map[string]struct{}{}
	}
	c.keys[zoneID][key] = struct{}{}
	c.mu.Unlock()

	return snap, nil
}

// BatchInsert implements RemoteLedger.
func (c *cachedLedgerImpl) BatchInsert(ctx context.Context, payments collection_model.PaymentList) error {
	err := c.RemoteLedger.BatchInsert(ctx, payments)
	if err != nil {
		return err
	}

	zones := map[uint]struct{}{}
	for _, pay := range payments {
		zones[pay.ZoneID] = struct{}{}
	}

	for zoneID := range zones {
		c.evictZone(ctx, zoneID)
	}

	return nil
}

func (c *cachedLedgerImpl) evictZone(ctx context.Context, zoneID uint) {
	c.mu.Lock()
	keys := c.keys[zoneID]
	delete(c.keys, zoneID)
	c.mu.Unlock()

	for key := range keys {
		err := c.cache.Delete(ctx, key)
		if err != nil {
			slog.Warn("remote ledger cache evict failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}
