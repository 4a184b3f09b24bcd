package directory

import (
	"context"
	"errors"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"gorm.io/gorm"
)

const sqlStoreName = "sql directory"

var DefaultPollInterval = 5 * time.Second

type sqlDirectoryImpl struct {
	db           *gorm.DB
	pollInterval time.Duration
}

func NewSqlDirectory(db *gorm.DB) *sqlDirectoryImpl {
	return &sqlDirectoryImpl{
		db:           db,
		pollInterval: DefaultPollInterval,
	}
}

func (s *sqlDirectoryImpl) WithPollInterval(d time.Duration) *sqlDirectoryImpl {
	s.pollInterval = d
	return s
}

func MigrateSql(db *gorm.DB) error {
	err := db.AutoMigrate(
		&collection_model.Collector{},
		&collection_model.Zone{},
		&collection_model.Sale{},
	)
	return collection_core.NewStoreError(sqlStoreName, "migrate", err)
}

// CollectorByEmail implements Directory.
func (s *sqlDirectoryImpl) CollectorByEmail(ctx context.Context, email string) (*collection_model.Collector, error) {
	var collector collection_model.Collector
	err := s.db.
		WithContext(ctx).
		Model(&collection_model.Collector{}).
		Where("email = ?", email).
		First(&collector).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCollectorNotFound
	}

	if err != nil {
		return nil, collection_core.NewStoreError(sqlStoreName, "collector", err)
	}

	return &collector, nil
}

// Zone implements Directory.
func (s *sqlDirectoryImpl) Zone(ctx context.Context, zoneID uint) (*collection_model.Zone, error) {
	var zone collection_model.Zone
	err := s.db.
		WithContext(ctx).
		Model(&collection_model.Zone{}).
		Where("zone_id = ?", zoneID).
		First(&zone).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrZoneNotFound
	}

	if err != nil {
		return nil, collection_core.NewStoreError(sqlStoreName, "zone", err)
	}

	return &zone, nil
}

// SalesByZone implements Directory.
func (s *sqlDirectoryImpl) SalesByZone(ctx context.Context, zoneID uint) (SaleList, error) {
	sales := SaleList{}
	err := s.db.
		WithContext(ctx).
		Model(&collection_model.Sale{}).
		Where("zone_id = ?", zoneID).
		Order("date asc").
		Order("id asc").
		Find(&sales).
		Error

	if err != nil {
		return sales, collection_core.NewStoreError(sqlStoreName, "sales", err)
	}

	return sales, nil
}

// WatchSalesByZone implements Directory.
func (s *sqlDirectoryImpl) WatchSalesByZone(ctx context.Context, zoneID uint) (*SaleSubscription, error) {
	read := func(ctx context.Context) (SaleList, error) {
		return s.SalesByZone(ctx, zoneID)
	}

	return collection_core.NewSubscription(ctx, collection_core.Poll(s.pollInterval, read, saleListChanged)), nil
}

// InitialLoad implements Directory.
func (s *sqlDirectoryImpl) InitialLoad(ctx context.Context, collectorID string, zoneID uint, at time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&collection_model.Sale{}).
			Where("zone_id = ?", zoneID).
			Update("collection_status", collection_model.StatusPending).
			Error

		if err != nil {
			return err
		}

		res := tx.
			Model(&collection_model.Collector{}).
			Where("id = ?", collectorID).
			Update("initial_load_at", at)

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrCollectorNotFound
		}

		return nil
	})

	if errors.Is(err, ErrCollectorNotFound) {
		return err
	}

	return collection_core.NewStoreError(sqlStoreName, "initial load", err)
}
