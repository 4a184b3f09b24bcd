package collection_mock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/remote_ledger"
)

var ErrCommitInterrupted = errors.New("commit interrupted")

// MemoryLedger is an in-process remote ledger for tests. Commits are staged
// and only published when every write succeeded.
type MemoryLedger struct {
	mu       sync.Mutex
	payments map[string]*collection_model.Payment

	// FailCommitAfter interrupts a commit after that many staged writes, -1 disables it.
	FailCommitAfter int

	// ServeFromCache marks every read as a cache read.
	ServeFromCache bool

	// QueryErr is returned by every query when set.
	QueryErr error

	MaxBatch int

	Commits       int
	WrittenIDs    []string
	ForcedQueries int
}

var _ remote_ledger.RemoteLedger = (*MemoryLedger)(nil)

func NewMemoryLedger(seed ...*collection_model.Payment) *MemoryLedger {
	m := &MemoryLedger{
		payments:        map[string]*collection_model.Payment{},
		FailCommitAfter: -1,
	}

	for _, pay := range seed {
		cp := *pay
		m.payments[pay.ID] = &cp
	}

	return m
}

func (m *MemoryLedger) filter(fn func(p *collection_model.Payment) bool) collection_model.PaymentList {
	list := collection_model.PaymentList{}
	for _, pay := range m.payments {
		if fn(pay) {
			cp := *pay
			list = append(list, &cp)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].PaidAt.Equal(list[j].PaidAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].PaidAt.Before(list[j].PaidAt)
	})

	return list
}

func (m *MemoryLedger) source() remote_ledger.Source {
	if m.ServeFromCache {
		return remote_ledger.SourceCache
	}
	return remote_ledger.SourceServer
}

// QueryByZoneSince implements remote_ledger.RemoteLedger.
func (m *MemoryLedger) QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time, opt remote_ledger.QueryOption) (*remote_ledger.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryErr != nil {
		return &remote_ledger.Snapshot{}, collection_core.NewStoreError("memory ledger", "query", m.QueryErr)
	}

	if opt.ForceServer {
		m.ForcedQueries++
	}

	return &remote_ledger.Snapshot{
		Payments: m.filter(func(p *collection_model.Payment) bool {
			return p.ZoneID == zoneID && !p.PaidAt.Before(since)
		}),
		Source: m.source(),
	}, nil
}

// QueryBySale implements remote_ledger.RemoteLedger.
func (m *MemoryLedger) QueryBySale(ctx context.Context, saleRef uint) (collection_model.PaymentList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.QueryErr != nil {
		return collection_model.PaymentList{}, collection_core.NewStoreError("memory ledger", "query sale", m.QueryErr)
	}

	return m.filter(func(p *collection_model.Payment) bool {
		return p.SaleRef == saleRef
	}), nil
}

// BatchInsert implements remote_ledger.RemoteLedger.
func (m *MemoryLedger) BatchInsert(ctx context.Context, payments collection_model.PaymentList) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := map[string]*collection_model.Payment{}
	for i, pay := range payments {
		if m.FailCommitAfter >= 0 && i >= m.FailCommitAfter {
			return collection_core.NewStoreError("memory ledger", "batch insert", ErrCommitInterrupted)
		}

		if _, ok := m.payments[pay.ID]; ok {
			continue
		}

		cp := *pay
		staged[pay.ID] = &cp
	}

	for id, pay := range staged {
		m.payments[id] = pay
		m.WrittenIDs = append(m.WrittenIDs, id)
	}
	m.Commits++

	return nil
}

// WatchByZoneAndRange implements remote_ledger.RemoteLedger. It emits the
// current state once.
func (m *MemoryLedger) WatchByZoneAndRange(ctx context.Context, zoneID uint, from, to time.Time) (*remote_ledger.PaymentSubscription, error) {
	m.mu.Lock()
	queryErr := m.QueryErr
	list := m.filter(func(p *collection_model.Payment) bool {
		return p.ZoneID == zoneID && !p.PaidAt.Before(from) && !p.PaidAt.After(to)
	})
	m.mu.Unlock()

	if queryErr != nil {
		return nil, collection_core.NewStoreError("memory ledger", "watch", queryErr)
	}

	return collection_core.NewSubscription(ctx, func(ctx context.Context, emit func(collection_model.PaymentList) bool) error {
		emit(list)
		<-ctx.Done()
		return nil
	}), nil
}

// MaxBatchSize implements remote_ledger.RemoteLedger.
func (m *MemoryLedger) MaxBatchSize() int {
	return m.MaxBatch
}

func (m *MemoryLedger) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.payments[id]
	return ok
}

func (m *MemoryLedger) Get(id string) *collection_model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()

	pay, ok := m.payments[id]
	if !ok {
		return nil
	}
	cp := *pay
	return &cp
}

func (m *MemoryLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.payments)
}
