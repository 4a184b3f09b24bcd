package collection_mock

import (
	"testing"
	"time"

	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"
	"gorm.io/gorm"
)

func StrPtr(s string) *string {
	return &s
}

// NewPayment builds a remote shaped payment for fixtures.
func NewPayment(id string, zoneID uint, amount int64, method collection_model.MethodCode, paidAt time.Time) *collection_model.Payment {
	return &collection_model.Payment{
		ID:         id,
		ZoneID:     zoneID,
		SaleRef:    1,
		PaidAt:     paidAt,
		Amount:     decimal.NewFromInt(amount),
		MethodCode: method,
		ClientName: StrPtr("cliente " + id),
	}
}

// PopulateLocalPayments writes raw PAGOS rows, bypassing the store so
// fixtures can carry timestamps in any format the capture flow wrote.
func PopulateLocalPayments(db *gorm.DB, rows ...*collection_model.LocalPayment) moretest.SetupFunc {
	return func(t *testing.T) func() error {
		err := db.AutoMigrate(&collection_model.LocalPayment{})
		assert.Nil(t, err)

		for _, row := range rows {
			err = db.Create(row).Error
			assert.Nil(t, err)
		}

		return nil
	}
}

func PopulateRemotePayments(db *gorm.DB, payments ...*collection_model.Payment) moretest.SetupFunc {
	return func(t *testing.T) func() error {
		err := db.AutoMigrate(&collection_model.Payment{})
		assert.Nil(t, err)

		for _, pay := range payments {
			err = db.Create(pay).Error
			assert.Nil(t, err)
		}

		return nil
	}
}

func PopulateDirectory(db *gorm.DB, collector *collection_model.Collector, zone *collection_model.Zone, sales ...*collection_model.Sale) moretest.SetupFunc {
	return func(t *testing.T) func() error {
		err := db.AutoMigrate(
			&collection_model.Collector{},
			&collection_model.Zone{},
			&collection_model.Sale{},
		)
		assert.Nil(t, err)

		if collector != nil {
			assert.Nil(t, db.Create(collector).Error)
		}

		if zone != nil {
			assert.Nil(t, db.Create(zone).Error)
		}

		for _, sale := range sales {
			assert.Nil(t, db.Create(sale).Error)
		}

		return nil
	}
}
