package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/local_ledger"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func openHistory(t *testing.T) *reconcile.History {
	bdb, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	assert.Nil(t, err)
	t.Cleanup(func() {
		bdb.Close()
	})

	return reconcile.NewHistory(bdb)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	history := openHistory(t)

	_, err := history.Last(ctx, 7)
	assert.True(t, errors.Is(err, reconcile.ErrNoHistory))

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := history.Save(ctx, &reconcile.Outcome{
			ZoneID:      7,
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			UploadedIDs: []string{},
			Success:     true,
		})
		assert.Nil(t, err)
	}

	err = history.Save(ctx, &reconcile.Outcome{
		ZoneID:    8,
		StartedAt: base.Add(time.Hour),
	})
	assert.Nil(t, err)

	last, err := history.Last(ctx, 7)
	assert.Nil(t, err)
	assert.True(t, last.StartedAt.Equal(base.Add(2*time.Minute)))

	all, err := history.List(ctx, 7, 0)
	assert.Nil(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[2].StartedAt.Equal(base))

	limited, err := history.List(ctx, 7, 2)
	assert.Nil(t, err)
	assert.Len(t, limited, 2)
}

func TestEngineRecordsRuns(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test engine history and metrics",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("A", 100, collection_model.MethodCash, "2024-03-01T09:00:00"),
				localRow("B", 20, collection_model.MethodTransfer, "2024-03-01T10:00:00"),
			),
		},
		func(t *testing.T) {
			history := openHistory(t)
			metrics := reconcile.NewMetrics(prometheus.NewRegistry())
			remote := collection_mock.NewMemoryLedger()

			engine := reconcile.NewEngine(local_ledger.NewStore(&db), remote).
				WithHistory(history).
				WithMetrics(metrics)

			_, err := engine.Reconcile(ctx, newSession())
			assert.Nil(t, err)

			last, err := history.Last(ctx, 7)
			assert.Nil(t, err)
			assert.True(t, last.Success)
			assert.Equal(t, []string{"A", "B"}, last.UploadedIDs)

			remote.ServeFromCache = true
			_, err = engine.Reconcile(ctx, newSession())
			assert.NotNil(t, err)

			last, err = history.Last(ctx, 7)
			assert.Nil(t, err)
			assert.False(t, last.Success)
			assert.Contains(t, last.Diagnostic, "cache")

			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Runs().WithLabelValues("success")))
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Runs().WithLabelValues("stale_read")))
			assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Uploaded()))
		},
	)
}
