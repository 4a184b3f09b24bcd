package reconcile_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	row := localRow("x1", 150.5, collection_model.MethodTransfer, "2024-03-01T10:00:00")
	row.SavedInLegacy = 1
	row.ClientName = nil

	pay, err := reconcile.Normalize(row, cst)
	assert.Nil(t, err)
	assert.Equal(t, "x1", pay.ID)
	assert.Equal(t, uint(7), pay.ZoneID)
	assert.Equal(t, uint(10), pay.SaleRef)
	assert.True(t, pay.PaidAt.Equal(time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)))
	assert.True(t, pay.Amount.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, collection_model.MethodTransfer, pay.MethodCode)
	assert.True(t, pay.SyncedToLegacy)
	assert.Nil(t, pay.ClientName)

	t.Run("test canonical layout keeps instant", func(t *testing.T) {
		row := localRow("x2", 1, collection_model.MethodCash, "2024-03-01T16:00:00.000Z")
		pay, err := reconcile.Normalize(row, cst)
		assert.Nil(t, err)
		assert.True(t, pay.PaidAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, cst)))
		assert.False(t, pay.SyncedToLegacy)
	})

	t.Run("test negative amount", func(t *testing.T) {
		row := localRow("neg", -1, collection_model.MethodCash, "2024-03-01T10:00:00")
		_, err := reconcile.Normalize(row, cst)
		assert.True(t, errors.Is(err, collection_core.ErrTransformError))
	})

	t.Run("test empty id", func(t *testing.T) {
		row := localRow("", 1, collection_model.MethodCash, "2024-03-01T10:00:00")
		_, err := reconcile.Normalize(row, cst)
		assert.True(t, errors.Is(err, collection_core.ErrTransformError))
	})
}

func TestMissing(t *testing.T) {
	local := []*collection_model.LocalPayment{
		localRow("A", 1, collection_model.MethodCash, "2024-03-01T10:00:00"),
		localRow("B", 1, collection_model.MethodCash, "2024-03-01T10:00:00"),
		localRow("C", 1, collection_model.MethodCash, "2024-03-01T10:00:00"),
		localRow("A", 1, collection_model.MethodCash, "2024-03-01T10:00:00"),
	}
	remote := collection_model.PaymentList{
		collection_mock.NewPayment("B", 7, 1, collection_model.MethodCash, cst2024()),
	}

	missing := reconcile.Missing(local, remote)
	ids := []string{}
	for _, row := range missing {
		ids = append(ids, row.ID)
	}
	assert.Equal(t, []string{"A", "C"}, ids)

	t.Run("test nothing missing", func(t *testing.T) {
		all := collection_model.PaymentList{
			collection_mock.NewPayment("A", 7, 1, collection_model.MethodCash, cst2024()),
			collection_mock.NewPayment("B", 7, 1, collection_model.MethodCash, cst2024()),
			collection_mock.NewPayment("C", 7, 1, collection_model.MethodCash, cst2024()),
		}
		assert.Empty(t, reconcile.Missing(local, all))
	})
}
