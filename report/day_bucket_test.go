package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/report"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func sale(id string, date time.Time) *collection_model.Sale {
	return &collection_model.Sale{
		ID:               id,
		DoctoCCID:        1,
		ZoneID:           7,
		ClientName:       "cliente " + id,
		Date:             date,
		CollectionStatus: collection_model.StatusPending,
	}
}

func TestBucketByDay(t *testing.T) {
	// 2024-03-03 is a sunday
	lateSunday := time.Date(2024, 3, 3, 23, 59, 0, 0, cst)
	mondayMidnight := time.Date(2024, 3, 4, 0, 0, 0, 0, cst)

	assert.Equal(t, time.Monday, lateSunday.UTC().Weekday())

	byDay := report.BucketByDay([]*collection_model.Sale{
		sale("s1", lateSunday.UTC()),
		sale("s2", mondayMidnight),
		sale("s3", lateSunday.Add(-time.Hour)),
	}, cst)

	assert.Len(t, byDay, 7)
	assert.Equal(t, 3, byDay.Count())

	assert.Len(t, byDay["domingo"], 2)
	assert.Equal(t, "s1", byDay["domingo"][0].ID)
	assert.Equal(t, "s3", byDay["domingo"][1].ID)
	assert.Len(t, byDay["lunes"], 1)
	assert.Equal(t, "s2", byDay["lunes"][0].ID)
	assert.Empty(t, byDay["sabado"])
}

func TestWatchSalesByDay(t *testing.T) {
	var db gorm.DB

	moretest.Suite(
		t,
		"test live sales buckets",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateDirectory(&db, nil, nil,
				sale("s1", time.Date(2024, 3, 3, 23, 59, 0, 0, cst)),
				sale("s2", time.Date(2024, 3, 5, 9, 0, 0, 0, cst)),
			),
		},
		func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			dir := directory.NewSqlDirectory(&db).WithPollInterval(10 * time.Millisecond)

			sub, err := report.WatchSalesByDay(ctx, dir, 7, cst)
			assert.Nil(t, err)

			byDay, err := sub.First(ctx)
			assert.Nil(t, err)
			assert.Len(t, byDay["domingo"], 1)
			assert.Len(t, byDay["martes"], 1)
		},
	)
}
