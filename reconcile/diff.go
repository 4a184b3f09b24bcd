package reconcile

import (
	"errors"

	"github.com/pdcgo/collection_service/collection_model"
)

var errNegativeAmount = errors.New("amount is negative")

// Missing returns the local rows whose id is absent from remote, in local
// order. Only ids are compared: a remote record with the same id is already
// synchronized whatever its other fields hold.
func Missing(local []*collection_model.LocalPayment, remote collection_model.PaymentList) []*collection_model.LocalPayment {
	remoteIDs := remote.IDSet()
	seen := map[string]struct{}{}

	missing := []*collection_model.LocalPayment{}
	for _, row := range local {
		if _, ok := remoteIDs[row.ID]; ok {
			continue
		}
		if _, ok := seen[row.ID]; ok {
			continue
		}

		seen[row.ID] = struct{}{}
		missing = append(missing, row)
	}

	return missing
}
