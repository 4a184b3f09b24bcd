package remote_ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	PaymentCollection = "pagos"

	// firestore commits at most 500 writes in one transaction
	FirestoreMaxBatch = 500

	firestoreStoreName = "remote firestore ledger"
)

type paymentDoc struct {
	ZoneID         int64     `firestore:"ZONA_CLIENTE_ID"`
	SaleRef        int64     `firestore:"DOCTO_CC_ID"`
	PaidAt         time.Time `firestore:"FECHA_HORA_PAGO"`
	Amount         float64   `firestore:"IMPORTE"`
	MethodCode     int64     `firestore:"FORMA_COBRO_ID"`
	ClientName     *string   `firestore:"NOMBRE_CLIENTE"`
	SyncedToLegacy bool      `firestore:"GUARDADO_EN_LEGACY"`
}

func newPaymentDoc(pay *collection_model.Payment) *paymentDoc {
	return &paymentDoc{
		ZoneID:         int64(pay.ZoneID),
		SaleRef:        int64(pay.SaleRef),
		PaidAt:         pay.PaidAt,
		Amount:         pay.Amount.InexactFloat64(),
		MethodCode:     int64(pay.MethodCode),
		ClientName:     pay.ClientName,
		SyncedToLegacy: pay.SyncedToLegacy,
	}
}

func (d *paymentDoc) payment(id string) *collection_model.Payment {
	return &collection_model.Payment{
		ID:             id,
		ZoneID:         uint(d.ZoneID),
		SaleRef:        uint(d.SaleRef),
		PaidAt:         d.PaidAt,
		Amount:         decimal.NewFromFloat(d.Amount),
		MethodCode:     collection_model.MethodCode(d.MethodCode),
		ClientName:     d.ClientName,
		SyncedToLegacy: d.SyncedToLegacy,
	}
}

// firestoreLedgerImpl talks to the shared collection. The server client
// has no offline cache, so every read it returns is a server read.
type firestoreLedgerImpl struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreLedger(client *firestore.Client) *firestoreLedgerImpl {
	return &firestoreLedgerImpl{
		client:     client,
		collection: PaymentCollection,
	}
}

func (f *firestoreLedgerImpl) col() *firestore.CollectionRef {
	return f.client.Collection(f.collection)
}

func (f *firestoreLedgerImpl) readAll(docs *firestore.DocumentIterator) (collection_model.PaymentList, error) {
	defer docs.Stop()

	list := collection_model.PaymentList{}
	for {
		doc, err := docs.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return list, err
		}

		var data paymentDoc
		err = doc.DataTo(&data)
		if err != nil {
			return list, fmt.Errorf("decode payment %s: %w", doc.Ref.ID, err)
		}

		list = append(list, data.payment(doc.Ref.ID))
	}

	return list, nil
}

// QueryByZoneSince implements RemoteLedger.
func (f *firestoreLedgerImpl) QueryByZoneSince(ctx context.Context, zoneID uint, since time.Time, opt QueryOption) (*Snapshot, error) {
	query := f.col().
		Where("ZONA_CLIENTE_ID", "==", int64(zoneID)).
		Where("FECHA_HORA_PAGO", ">=", since)

	list, err := f.readAll(query.Documents(ctx))
	if err != nil {
		return &Snapshot{Source: SourceServer}, collection_core.NewStoreError(firestoreStoreName, "query", err)
	}

	return &Snapshot{
		Payments: list,
		Source:   SourceServer,
	}, nil
}

// QueryBySale implements RemoteLedger.
func (f *firestoreLedgerImpl) QueryBySale(ctx context.Context, saleRef uint) (collection_model.PaymentList, error) {
	query := f.col().
		Where("DOCTO_CC_ID", "==", int64(saleRef))

	list, err := f.readAll(query.Documents(ctx))
	return list, collection_core.NewStoreError(firestoreStoreName, "query sale", err)
}

// BatchInsert implements RemoteLedger. One transaction reads every target
// document and creates only the absent ones, so the batch is all or nothing
// and an id already present is never overwritten.
func (f *firestoreLedgerImpl) BatchInsert(ctx context.Context, payments collection_model.PaymentList) error {
	if len(payments) == 0 {
		return nil
	}

	if len(payments) > FirestoreMaxBatch {
		return fmt.Errorf("%w: %d payments, limit %d", collection_core.ErrPartialBatchRisk, len(payments), FirestoreMaxBatch)
	}

	refs := make([]*firestore.DocumentRef, len(payments))
	for i, pay := range payments {
		refs[i] = f.col().Doc(pay.ID)
	}

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}

		for i, snap := range snaps {
			if snap.Exists() {
				continue
			}

			err = tx.Create(refs[i], newPaymentDoc(payments[i]))
			if err != nil {
				return err
			}
		}

		return nil
	})

	return collection_core.NewStoreError(firestoreStoreName, "batch insert", err)
}

// WatchByZoneAndRange implements RemoteLedger.
func (f *firestoreLedgerImpl) WatchByZoneAndRange(ctx context.Context, zoneID uint, from, to time.Time) (*PaymentSubscription, error) {
	query := f.col().
		Where("ZONA_CLIENTE_ID", "==", int64(zoneID)).
		Where("FECHA_HORA_PAGO", ">=", from).
		Where("FECHA_HORA_PAGO", "<=", to)

	produce := func(ctx context.Context, emit func(collection_model.PaymentList) bool) error {
		snaps := query.Snapshots(ctx)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return nil
				}
				return collection_core.NewStoreError(firestoreStoreName, "watch", err)
			}

			list, err := f.readAll(snap.Documents)
			if err != nil {
				return collection_core.NewStoreError(firestoreStoreName, "watch", err)
			}

			if !emit(list) {
				return nil
			}
		}
	}

	return collection_core.NewSubscription(ctx, produce), nil
}

// MaxBatchSize implements RemoteLedger.
func (f *firestoreLedgerImpl) MaxBatchSize() int {
	return FirestoreMaxBatch
}
