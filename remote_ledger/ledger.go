package remote_ledger

import (
	"context"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
)

type Source int

const (
	SourceServer Source = iota
	SourceCache
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "server"
}

type QueryOption struct {
	// ForceServer requires a server round trip. Reconciliation always sets it.
	ForceServer bool
}

type Snapshot struct {
	Payments collection_model.PaymentList
	Source   Source
}

type PaymentSubscription = collection_core.Subscription[collection_model.PaymentList]

type RemoteLedger interface {
	QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time, opt QueryOption) (*Snapshot, error)
	QueryBySale(ctx context.Context, saleRef uint) (collection_model.PaymentList, error)
	// BatchInsert makes every payment visible or none of them. Ids that
	// already exist are left untouched.
	BatchInsert(ctx context.Context, payments collection_model.PaymentList) error
	WatchByZoneAndRange(ctx context.Context, zoneID uint, from, to time.Time) (*PaymentSubscription, error)
	// MaxBatchSize is the largest batch the backend commits atomically, 0 when unbounded.
	MaxBatchSize() int
}
