package collection_model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MethodCode int

const (
	MethodOther    MethodCode = 0
	MethodCash     MethodCode = 1
	MethodTransfer MethodCode = 2
	MethodWaived   MethodCode = 3
)

func (m MethodCode) String() string {
	switch m {
	case MethodCash:
		return "cash"
	case MethodTransfer:
		return "transfer"
	case MethodWaived:
		return "waived"
	default:
		return "other"
	}
}

// IsCollected reports whether the method moves money (cash or transfer).
func (m MethodCode) IsCollected() bool {
	return m == MethodCash || m == MethodTransfer
}

type Payment struct {
	ID             string          `json:"id" gorm:"primarykey;size:64"`
	ZoneID         uint            `json:"zone_id" gorm:"index:zone_paid_at"`
	SaleRef        uint            `json:"sale_ref" gorm:"index"`
	PaidAt         time.Time       `json:"paid_at" gorm:"index:zone_paid_at"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(14,2)"`
	MethodCode     MethodCode      `json:"method_code"`
	ClientName     *string         `json:"client_name"`
	SyncedToLegacy bool            `json:"synced_to_legacy"`
}

// GetEntityID implements authorization_iface.Entity.
func (p *Payment) GetEntityID() string {
	return "collection/payment"
}

func (p *Payment) ClientNameOr(def string) string {
	if p.ClientName == nil {
		return def
	}
	return *p.ClientName
}

// NewPaymentID returns a time ordered random id. Devices never share an
// id space, so ids must not depend on the device clock alone.
func NewPaymentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type PaymentList []*Payment

func (list PaymentList) IDs() []string {
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids
}

func (list PaymentList) IDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, p := range list {
		set[p.ID] = struct{}{}
	}
	return set
}
