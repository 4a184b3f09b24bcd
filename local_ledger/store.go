package local_ledger

import (
	"context"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const storeName = "local ledger"

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

// OpenSqlite opens the device database file and makes sure PAGOS exists.
func OpenSqlite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, collection_core.NewStoreError(storeName, "open", err)
	}

	err = Migrate(db)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&collection_model.LocalPayment{})
	return collection_core.NewStoreError(storeName, "migrate", err)
}

// Append stores a payment captured on the device. The id is kept as is; an
// existing id is an error.
func (s *Store) Append(ctx context.Context, pay *collection_model.Payment) error {
	if pay.ID == "" {
		pay.ID = collection_model.NewPaymentID()
	}

	var legacy int
	if pay.SyncedToLegacy {
		legacy = 1
	}

	row := collection_model.LocalPayment{
		ID:            pay.ID,
		ZoneID:        pay.ZoneID,
		SaleRef:       pay.SaleRef,
		PaidAt:        collection_core.FormatLocalTime(pay.PaidAt),
		Amount:        pay.Amount.InexactFloat64(),
		MethodCode:    int(pay.MethodCode),
		ClientName:    pay.ClientName,
		SavedInLegacy: legacy,
	}

	err := s.db.
		WithContext(ctx).
		Create(&row).
		Error

	return collection_core.NewStoreError(storeName, "append", err)
}

// lowerBound is the calendar day, as text, of the earliest local reading
// since can have. Every row layout starts with that day so it sorts at or
// above it.
func lowerBound(since time.Time) string {
	return since.UTC().Add(-collection_core.MaxZoneOffset).Format("2006-01-02")
}

// QueryByZoneSince returns the zone rows that may fall at or after since.
// Timestamps are text and zoneless ones are read in the session zone, so the
// result is a superset and callers filter on the parsed time.
func (s *Store) QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time) ([]*collection_model.LocalPayment, error) {
	rows := []*collection_model.LocalPayment{}

	err := s.db.
		WithContext(ctx).
		Model(&collection_model.LocalPayment{}).
		Where("zona_cliente_id = ?", zoneID).
		Where("fecha_hora_pago >= ?", lowerBound(since)).
		Order("fecha_hora_pago asc").
		Find(&rows).
		Error

	if err != nil {
		return rows, collection_core.NewStoreError(storeName, "query", err)
	}

	return rows, nil
}

func (s *Store) Count(ctx context.Context, zoneID uint) (int64, error) {
	var count int64
	err := s.db.
		WithContext(ctx).
		Model(&collection_model.LocalPayment{}).
		Where("zona_cliente_id = ?", zoneID).
		Count(&count).
		Error

	return count, collection_core.NewStoreError(storeName, "count", err)
}

// PurgeAll deletes every local row. It is a maintenance operation and is
// never called by reconciliation.
func (s *Store) PurgeAll(ctx context.Context) error {
	err := s.db.
		WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&collection_model.LocalPayment{}).
		Error

	return collection_core.NewStoreError(storeName, "purge", err)
}
