package reconcile

import (
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/shopspring/decimal"
)

// Normalize converts a device row into the remote shape. The id is kept so
// the remote document is addressable by the same key.
func Normalize(row *collection_model.LocalPayment, loc *time.Location) (*collection_model.Payment, error) {
	if row.ID == "" {
		return nil, &Error{
			Kind: collection_core.ErrTransformError,
			Step: StepNormalize,
			Err:  collection_core.ErrTransformError,
		}
	}

	paidAt, err := collection_core.ParseLocalTime(row.PaidAt, loc)
	if err != nil {
		return nil, &Error{
			Kind:      collection_core.ErrTransformError,
			Step:      StepNormalize,
			PaymentID: row.ID,
			Err:       err,
		}
	}

	amount := decimal.NewFromFloat(row.Amount)
	if amount.IsNegative() {
		return nil, &Error{
			Kind:      collection_core.ErrTransformError,
			Step:      StepNormalize,
			PaymentID: row.ID,
			Err:       errNegativeAmount,
		}
	}

	return &collection_model.Payment{
		ID:             row.ID,
		ZoneID:         row.ZoneID,
		SaleRef:        row.SaleRef,
		PaidAt:         paidAt,
		Amount:         amount,
		MethodCode:     collection_model.MethodCode(row.MethodCode),
		ClientName:     row.ClientName,
		SyncedToLegacy: row.SavedInLegacy != 0,
	}, nil
}
