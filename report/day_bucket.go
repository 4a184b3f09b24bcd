package report

import (
	"context"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/directory"
)

// Weekdays are indexed by time.Weekday.
var Weekdays = [7]string{
	"domingo",
	"lunes",
	"martes",
	"miercoles",
	"jueves",
	"viernes",
	"sabado",
}

type SalesByDay map[string][]*collection_model.Sale

// BucketByDay groups sales by the weekday of their date in loc. Every
// weekday is present, sales keep their input order.
func BucketByDay(sales []*collection_model.Sale, loc *time.Location) SalesByDay {
	if loc == nil {
		loc = time.Local
	}

	byDay := SalesByDay{}
	for _, name := range Weekdays {
		byDay[name] = []*collection_model.Sale{}
	}

	for _, sale := range sales {
		name := Weekdays[sale.Date.In(loc).Weekday()]
		byDay[name] = append(byDay[name], sale)
	}

	return byDay
}

func (s SalesByDay) Count() int {
	count := 0
	for _, sales := range s {
		count += len(sales)
	}
	return count
}

// WatchSalesByDay rebuilds the buckets on every sales snapshot.
func WatchSalesByDay(ctx context.Context, dir directory.Directory, zoneID uint, loc *time.Location) (*collection_core.Subscription[SalesByDay], error) {
	sales, err := dir.WatchSalesByZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	return collection_core.NewSubscription(ctx, func(ctx context.Context, emit func(SalesByDay) bool) error {
		defer sales.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case list, ok := <-sales.C:
				if !ok {
					return sales.Err()
				}

				if !emit(BucketByDay(list, loc)) {
					return nil
				}
			}
		}
	}), nil
}
