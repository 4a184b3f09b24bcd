package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	UserCollection = "users"
	ZoneCollection = "zonas_cliente"
	SaleCollection = "ventas"

	firestoreStoreName = "firestore directory"
)

type userDoc struct {
	Email         string    `firestore:"EMAIL"`
	Name          string    `firestore:"NOMBRE"`
	Phone         string    `firestore:"TELEFONO"`
	CollectorID   int64     `firestore:"COBRADOR_ID"`
	ZoneID        int64     `firestore:"ZONA_CLIENTE_ID"`
	InitialLoadAt time.Time `firestore:"FECHA_CARGA_INICIAL"`
	CreatedAt     time.Time `firestore:"CREATED_AT"`
}

type zoneDoc struct {
	ZoneID int64  `firestore:"ZONA_CLIENTE_ID"`
	Name   string `firestore:"ZONA_CLIENTE"`
}

type saleDoc struct {
	DoctoCCID        int64     `firestore:"DOCTO_CC_ID"`
	ZoneID           int64     `firestore:"ZONA_CLIENTE_ID"`
	ClientName       string    `firestore:"CLIENTE"`
	Date             time.Time `firestore:"FECHA"`
	CollectionStatus string    `firestore:"ESTADO_COBRANZA"`
}

type firestoreDirectoryImpl struct {
	client *firestore.Client
}

func NewFirestoreDirectory(client *firestore.Client) *firestoreDirectoryImpl {
	return &firestoreDirectoryImpl{
		client: client,
	}
}

func firstDoc(docs *firestore.DocumentIterator) (*firestore.DocumentSnapshot, error) {
	defer docs.Stop()
	return docs.Next()
}

// CollectorByEmail implements Directory.
func (f *firestoreDirectoryImpl) CollectorByEmail(ctx context.Context, email string) (*collection_model.Collector, error) {
	query := f.client.Collection(UserCollection).
		Where("EMAIL", "==", email).
		Limit(1)

	doc, err := firstDoc(query.Documents(ctx))
	if errors.Is(err, iterator.Done) {
		return nil, ErrCollectorNotFound
	}
	if err != nil {
		return nil, collection_core.NewStoreError(firestoreStoreName, "collector", err)
	}

	var data userDoc
	err = doc.DataTo(&data)
	if err != nil {
		return nil, collection_core.NewStoreError(firestoreStoreName, "collector", err)
	}

	return &collection_model.Collector{
		ID:            doc.Ref.ID,
		Email:         data.Email,
		Name:          data.Name,
		Phone:         data.Phone,
		CollectorID:   uint(data.CollectorID),
		ZoneID:        uint(data.ZoneID),
		InitialLoadAt: data.InitialLoadAt,
		CreatedAt:     data.CreatedAt,
	}, nil
}

// Zone implements Directory.
func (f *firestoreDirectoryImpl) Zone(ctx context.Context, zoneID uint) (*collection_model.Zone, error) {
	query := f.client.Collection(ZoneCollection).
		Where("ZONA_CLIENTE_ID", "==", int64(zoneID)).
		Limit(1)

	doc, err := firstDoc(query.Documents(ctx))
	if errors.Is(err, iterator.Done) {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, collection_core.NewStoreError(firestoreStoreName, "zone", err)
	}

	var data zoneDoc
	err = doc.DataTo(&data)
	if err != nil {
		return nil, collection_core.NewStoreError(firestoreStoreName, "zone", err)
	}

	return &collection_model.Zone{
		ID:     doc.Ref.ID,
		ZoneID: uint(data.ZoneID),
		Name:   data.Name,
	}, nil
}

func (f *firestoreDirectoryImpl) salesQuery(zoneID uint) firestore.Query {
	return f.client.Collection(SaleCollection).
		Where("ZONA_CLIENTE_ID", "==", int64(zoneID)).
		OrderBy("FECHA", firestore.Asc)
}

func readSales(docs *firestore.DocumentIterator) (SaleList, error) {
	defer docs.Stop()

	sales := SaleList{}
	for {
		doc, err := docs.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return sales, err
		}

		var data saleDoc
		err = doc.DataTo(&data)
		if err != nil {
			return sales, fmt.Errorf("decode sale %s: %w", doc.Ref.ID, err)
		}

		sales = append(sales, &collection_model.Sale{
			ID:               doc.Ref.ID,
			DoctoCCID:        uint(data.DoctoCCID),
			ZoneID:           uint(data.ZoneID),
			ClientName:       data.ClientName,
			Date:             data.Date,
			CollectionStatus: collection_model.CollectionStatus(data.CollectionStatus),
		})
	}

	return sales, nil
}

// SalesByZone implements Directory.
func (f *firestoreDirectoryImpl) SalesByZone(ctx context.Context, zoneID uint) (SaleList, error) {
	sales, err := readSales(f.salesQuery(zoneID).Documents(ctx))
	return sales, collection_core.NewStoreError(firestoreStoreName, "sales", err)
}

// WatchSalesByZone implements Directory.
func (f *firestoreDirectoryImpl) WatchSalesByZone(ctx context.Context, zoneID uint) (*SaleSubscription, error) {
	query := f.salesQuery(zoneID)

	produce := func(ctx context.Context, emit func(SaleList) bool) error {
		snaps := query.Snapshots(ctx)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return nil
				}
				return collection_core.NewStoreError(firestoreStoreName, "watch sales", err)
			}

			sales, err := readSales(snap.Documents)
			if err != nil {
				return collection_core.NewStoreError(firestoreStoreName, "watch sales", err)
			}

			if !emit(sales) {
				return nil
			}
		}
	}

	return collection_core.NewSubscription(ctx, produce), nil
}

// InitialLoad implements Directory.
func (f *firestoreDirectoryImpl) InitialLoad(ctx context.Context, collectorID string, zoneID uint, at time.Time) error {
	userRef := f.client.Collection(UserCollection).Doc(collectorID)

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(userRef)
		if status.Code(err) == codes.NotFound {
			return ErrCollectorNotFound
		}
		if err != nil {
			return err
		}

		saleRefs, err := tx.Documents(f.client.Collection(SaleCollection).Where("ZONA_CLIENTE_ID", "==", int64(zoneID))).GetAll()
		if err != nil {
			return err
		}

		for _, sale := range saleRefs {
			err = tx.Update(sale.Ref, []firestore.Update{
				{Path: "ESTADO_COBRANZA", Value: string(collection_model.StatusPending)},
			})
			if err != nil {
				return err
			}
		}

		return tx.Update(userRef, []firestore.Update{
			{Path: "FECHA_CARGA_INICIAL", Value: at},
		})
	})

	if errors.Is(err, ErrCollectorNotFound) {
		return err
	}

	return collection_core.NewStoreError(firestoreStoreName, "initial load", err)
}
