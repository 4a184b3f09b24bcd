package directory

import (
	"context"
	"errors"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
)

var (
	ErrCollectorNotFound = errors.New("collector not found")
	ErrZoneNotFound      = errors.New("zone not found")
)

type SaleList []*collection_model.Sale

type SaleSubscription = collection_core.Subscription[SaleList]

// Directory answers who the collector is and what the zone holds. It is
// read-only except for InitialLoad.
type Directory interface {
	CollectorByEmail(ctx context.Context, email string) (*collection_model.Collector, error)
	Zone(ctx context.Context, zoneID uint) (*collection_model.Zone, error)
	SalesByZone(ctx context.Context, zoneID uint) (SaleList, error)
	WatchSalesByZone(ctx context.Context, zoneID uint) (*SaleSubscription, error)
	// InitialLoad starts a new collection week: every zone sale goes back to
	// pending and the collector's initial load mark moves to at, in one write.
	InitialLoad(ctx context.Context, collectorID string, zoneID uint, at time.Time) error
}

func saleListChanged(prev, next SaleList) bool {
	if len(prev) != len(next) {
		return true
	}

	for i := range prev {
		a, b := prev[i], next[i]
		if a.ID != b.ID || a.CollectionStatus != b.CollectionStatus || !a.Date.Equal(b.Date) {
			return true
		}
	}

	return false
}
