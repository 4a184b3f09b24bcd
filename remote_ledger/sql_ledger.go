package remote_ledger

import (
	"context"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sqlStoreName = "remote sql ledger"

var DefaultPollInterval = 5 * time.Second

// sqlLedgerImpl keeps the ledger in the back office database. Every read
// goes to the database, so snapshots are always server reads.
type sqlLedgerImpl struct {
	db           *gorm.DB
	pollInterval time.Duration
}

func NewSqlLedger(db *gorm.DB) *sqlLedgerImpl {
	return &sqlLedgerImpl{
		db:           db,
		pollInterval: DefaultPollInterval,
	}
}

func (s *sqlLedgerImpl) WithPollInterval(d time.Duration) *sqlLedgerImpl {
	s.pollInterval = d
	return s
}

func MigrateSql(db *gorm.DB) error {
	err := db.AutoMigrate(&collection_model.Payment{})
	return collection_core.NewStoreError(sqlStoreName, "migrate", err)
}

// QueryByZoneSince implements RemoteLedger.
func (s *sqlLedgerImpl) QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time, opt QueryOption) (*Snapshot, error) {
	result := &Snapshot{
		Payments: collection_model.PaymentList{},
		Source:   SourceServer,
	}

	err := s.db.
		WithContext(ctx).
		Model(&collection_model.Payment{}).
		Where("zone_id = ?", zoneID).
		Where("paid_at >= ?", since.UTC()).
		Order("paid_at asc").
		Find(&result.Payments).
		Error

	if err != nil {
		return result, collection_core.NewStoreError(sqlStoreName, "query", err)
	}

	return result, nil
}

// QueryBySale implements RemoteLedger.
func (s *sqlLedgerImpl) QueryBySale(ctx context.Context, saleRef uint) (collection_model.PaymentList, error) {
	list := collection_model.PaymentList{}
	err := s.db.
		WithContext(ctx).
		Model(&collection_model.Payment{}).
		Where("sale_ref = ?", saleRef).
		Order("paid_at asc").
		Find(&list).
		Error

	if err != nil {
		return list, collection_core.NewStoreError(sqlStoreName, "query sale", err)
	}

	return list, nil
}

// BatchInsert implements RemoteLedger. Timestamps are stored in UTC so
// range filters agree on backends that compare them as text.
func (s *sqlLedgerImpl) BatchInsert(ctx context.Context, payments collection_model.PaymentList) error {
	if len(payments) == 0 {
		return nil
	}

	err := s.db.
		WithContext(ctx).
		Transaction(func(tx *gorm.DB) error {
			for _, pay := range payments {
				row := *pay
				row.PaidAt = pay.PaidAt.UTC()

				err := tx.
					Clauses(clause.OnConflict{DoNothing: true}).
					Create(&row).
					Error

				if err != nil {
					return err
				}
			}

			return nil
		})

	return collection_core.NewStoreError(sqlStoreName, "batch insert", err)
}

// WatchByZoneAndRange implements RemoteLedger.
func (s *sqlLedgerImpl) WatchByZoneAndRange(ctx context.Context, zoneID uint, from, to time.Time) (*PaymentSubscription, error) {
	read := func(ctx context.Context) (collection_model.PaymentList, error) {
		list := collection_model.PaymentList{}
		err := s.db.
			WithContext(ctx).
			Model(&collection_model.Payment{}).
			Where("zone_id = ?", zoneID).
			Where("paid_at >= ?", from.UTC()).
			Where("paid_at <= ?", to.UTC()).
			Order("paid_at asc").
			Find(&list).
			Error

		return list, collection_core.NewStoreError(sqlStoreName, "watch", err)
	}

	produce := collection_core.Poll(s.pollInterval, read, paymentListChanged)
	return collection_core.NewSubscription(ctx, produce), nil
}

// MaxBatchSize implements RemoteLedger.
func (s *sqlLedgerImpl) MaxBatchSize() int {
	return 0
}

func paymentListChanged(prev, next collection_model.PaymentList) bool {
	if len(prev) != len(next) {
		return true
	}

	for i := range prev {
		if prev[i].ID != next[i].ID {
			return true
		}
	}

	return false
}
