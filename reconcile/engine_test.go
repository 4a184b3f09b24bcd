package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/local_ledger"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/remote_ledger"
	"github.com/pdcgo/collection_service/session"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/pdcgo/shared/pkg/ware_cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var cst = time.FixedZone("CST", -6*60*60)

func newSession() *session.Session {
	return &session.Session{
		Collector: &collection_model.Collector{
			ID:            "collector-1",
			Name:          "Juan Perez",
			CollectorID:   3,
			ZoneID:        7,
			InitialLoadAt: time.Date(2024, 2, 26, 0, 0, 0, 0, cst),
		},
		Zone: &collection_model.Zone{
			ID:     "zone-7",
			ZoneID: 7,
			Name:   "Centro",
		},
		Location: cst,
	}
}

func localRow(id string, amount float64, method collection_model.MethodCode, paidAt string) *collection_model.LocalPayment {
	return &collection_model.LocalPayment{
		ID:         id,
		ZoneID:     7,
		SaleRef:    10,
		PaidAt:     paidAt,
		Amount:     amount,
		MethodCode: int(method),
		ClientName: collection_mock.StrPtr("cliente " + id),
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test reconcile single offline payment",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("x1", 150, collection_model.MethodCash, "2024-03-01T10:00:00"),
			),
		},
		func(t *testing.T) {
			remote := collection_mock.NewMemoryLedger()
			engine := reconcile.NewEngine(local_ledger.NewStore(&db), remote)
			sess := newSession()

			outcome, err := engine.Reconcile(ctx, sess)
			assert.Nil(t, err)
			assert.True(t, outcome.Success)
			assert.True(t, outcome.Committed)
			assert.Equal(t, []string{"x1"}, outcome.UploadedIDs)

			pay := remote.Get("x1")
			assert.NotNil(t, pay)
			assert.True(t, pay.Amount.Equal(decimal.NewFromInt(150)))
			assert.Equal(t, collection_model.MethodCash, pay.MethodCode)
			assert.True(t, pay.PaidAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, cst)))
			assert.False(t, pay.SyncedToLegacy)
			assert.Equal(t, 1, remote.ForcedQueries)

			t.Run("test second run uploads nothing", func(t *testing.T) {
				outcome, err := engine.Reconcile(ctx, sess)
				assert.Nil(t, err)
				assert.True(t, outcome.Success)
				assert.False(t, outcome.Committed)
				assert.Empty(t, outcome.UploadedIDs)
				assert.Equal(t, 1, remote.Commits)
				assert.Equal(t, 1, remote.Len())
			})

			t.Run("test local rows untouched", func(t *testing.T) {
				count, err := local_ledger.NewStore(&db).Count(ctx, 7)
				assert.Nil(t, err)
				assert.Equal(t, int64(1), count)
			})
		},
	)
}

func TestReconcileSetDifference(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test reconcile uploads only missing ids",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("A", 100, collection_model.MethodCash, "2024-03-01T09:00:00"),
				localRow("B", 200, collection_model.MethodTransfer, "2024-03-01T10:00:00"),
				localRow("C", 50, collection_model.MethodWaived, "2024-03-01T11:00:00"),
			),
		},
		func(t *testing.T) {
			// remote B differs in amount but shares the id
			remoteB := collection_mock.NewPayment("B", 7, 999, collection_model.MethodCash, time.Date(2024, 3, 1, 10, 0, 0, 0, cst))
			remote := collection_mock.NewMemoryLedger(remoteB)
			engine := reconcile.NewEngine(local_ledger.NewStore(&db), remote)

			outcome, err := engine.Reconcile(ctx, newSession())
			assert.Nil(t, err)
			assert.Equal(t, []string{"A", "C"}, outcome.UploadedIDs)
			assert.Equal(t, 3, outcome.LocalCount)
			assert.Equal(t, 1, outcome.RemoteCount)
			assert.ElementsMatch(t, []string{"A", "C"}, remote.WrittenIDs)
			assert.True(t, remote.Get("B").Amount.Equal(decimal.NewFromInt(999)))
		},
	)
}

func TestReconcileFailures(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test reconcile failure modes",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("A", 100, collection_model.MethodCash, "2024-03-01T09:00:00"),
				localRow("C", 50, collection_model.MethodWaived, "2024-03-01T11:00:00"),
			),
		},
		func(t *testing.T) {
			store := local_ledger.NewStore(&db)

			t.Run("test interrupted commit leaves nothing", func(t *testing.T) {
				remote := collection_mock.NewMemoryLedger()
				remote.FailCommitAfter = 1

				outcome, err := reconcile.NewEngine(store, remote).Reconcile(ctx, newSession())
				assert.NotNil(t, err)
				assert.True(t, errors.Is(err, collection_core.ErrStoreUnavailable))
				assert.True(t, errors.Is(err, collection_mock.ErrCommitInterrupted))
				assert.False(t, outcome.Success)
				assert.False(t, outcome.Committed)
				assert.NotEmpty(t, outcome.Diagnostic)
				assert.False(t, remote.Has("A"))
				assert.False(t, remote.Has("C"))
				assert.Equal(t, 0, remote.Len())

				count, err := store.Count(ctx, 7)
				assert.Nil(t, err)
				assert.Equal(t, int64(2), count)

				t.Run("test retry uploads everything", func(t *testing.T) {
					remote.FailCommitAfter = -1

					outcome, err := reconcile.NewEngine(store, remote).Reconcile(ctx, newSession())
					assert.Nil(t, err)
					assert.Equal(t, []string{"A", "C"}, outcome.UploadedIDs)
					assert.Equal(t, 2, remote.Len())
				})
			})

			t.Run("test cache read is rejected", func(t *testing.T) {
				remote := collection_mock.NewMemoryLedger()
				remote.ServeFromCache = true

				outcome, err := reconcile.NewEngine(store, remote).Reconcile(ctx, newSession())
				assert.True(t, errors.Is(err, collection_core.ErrStaleReadRisk))
				assert.False(t, outcome.Success)
				assert.Equal(t, 0, remote.Commits)

				var rerr *reconcile.Error
				assert.True(t, errors.As(err, &rerr))
				assert.Equal(t, reconcile.StepReadRemote, rerr.Step)
			})

			t.Run("test batch over atomic limit is rejected", func(t *testing.T) {
				remote := collection_mock.NewMemoryLedger()
				remote.MaxBatch = 1

				_, err := reconcile.NewEngine(store, remote).Reconcile(ctx, newSession())
				assert.True(t, errors.Is(err, collection_core.ErrPartialBatchRisk))
				assert.Equal(t, 0, remote.Commits)
				assert.Equal(t, 0, remote.Len())
			})

			t.Run("test remote read failure", func(t *testing.T) {
				remote := collection_mock.NewMemoryLedger()
				remote.QueryErr = errors.New("deadline exceeded")

				outcome, err := reconcile.NewEngine(store, remote).Reconcile(ctx, newSession())
				assert.True(t, errors.Is(err, collection_core.ErrStoreUnavailable))
				assert.Contains(t, outcome.Diagnostic, "deadline exceeded")
				assert.Equal(t, 0, remote.Commits)
			})
		},
	)
}

func TestReconcileTransform(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test reconcile unparseable row",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("A", 100, collection_model.MethodCash, "2024-03-01T09:00:00"),
				localRow("bad", 10, collection_model.MethodCash, "2024-03-02 nine o'clock"),
			),
		},
		func(t *testing.T) {
			remote := collection_mock.NewMemoryLedger()

			_, err := reconcile.NewEngine(local_ledger.NewStore(&db), remote).Reconcile(ctx, newSession())
			assert.True(t, errors.Is(err, collection_core.ErrTransformError))

			var rerr *reconcile.Error
			assert.True(t, errors.As(err, &rerr))
			assert.Equal(t, "bad", rerr.PaymentID)
			assert.Equal(t, reconcile.StepNormalize, rerr.Step)
			assert.Equal(t, 0, remote.Len())
		},
	)
}

func TestReconcileWindow(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test reconcile lower bound",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("old", 100, collection_model.MethodCash, "2024-02-20T09:00:00"),
				localRow("early", 100, collection_model.MethodCash, "2024-02-26T07:00:00+05:00"),
				localRow("new", 100, collection_model.MethodCash, "2024-02-26T07:00:00"),
			),
		},
		func(t *testing.T) {
			remote := collection_mock.NewMemoryLedger()

			outcome, err := reconcile.NewEngine(local_ledger.NewStore(&db), remote).Reconcile(ctx, newSession())
			assert.Nil(t, err)
			assert.Equal(t, 2, outcome.LocalCount)
			assert.Equal(t, 1, outcome.Dropped)
			assert.Equal(t, []string{"new"}, outcome.UploadedIDs)
			assert.False(t, remote.Has("old"))
			assert.False(t, remote.Has("early"))
		},
	)
}

func TestReconcileZonelessRowsAfterInitialLoad(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test zoneless rows in the first hours after initial load",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("sunday", 100, collection_model.MethodCash, "2024-02-25 22:00:00"),
				localRow("late", 100, collection_model.MethodCash, "2024-02-26T03:00:00"),
				localRow("dawn", 100, collection_model.MethodCash, "2024-02-26 00:30:00"),
			),
		},
		func(t *testing.T) {
			remote := collection_mock.NewMemoryLedger()

			outcome, err := reconcile.NewEngine(local_ledger.NewStore(&db), remote).Reconcile(ctx, newSession())
			assert.Nil(t, err)
			assert.True(t, outcome.Committed)
			assert.Equal(t, 3, outcome.LocalCount)
			assert.Equal(t, 1, outcome.Dropped)
			assert.ElementsMatch(t, []string{"late", "dawn"}, outcome.UploadedIDs)
			assert.True(t, remote.Has("late"))
			assert.True(t, remote.Has("dawn"))
			assert.False(t, remote.Has("sunday"))
		},
	)
}

func TestReconcileThroughCachedLedger(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test report read after reconcile sees the upload",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("x1", 150, collection_model.MethodCash, "2024-03-01T10:00:00"),
			),
		},
		func(t *testing.T) {
			sess := newSession()
			mem := collection_mock.NewMemoryLedger()
			remote := remote_ledger.NewCachedLedger(mem, ware_cache.NewLocalCache(), time.Minute)

			before, err := remote.QueryByZoneSince(ctx, sess.ZoneID(), sess.InitialLoadAt(), remote_ledger.QueryOption{})
			assert.Nil(t, err)
			assert.Empty(t, before.Payments)

			outcome, err := reconcile.NewEngine(local_ledger.NewStore(&db), remote).Reconcile(ctx, sess)
			assert.Nil(t, err)
			assert.Equal(t, []string{"x1"}, outcome.UploadedIDs)

			after, err := remote.QueryByZoneSince(ctx, sess.ZoneID(), sess.InitialLoadAt(), remote_ledger.QueryOption{})
			assert.Nil(t, err)
			assert.Equal(t, remote_ledger.SourceServer, after.Source)
			assert.Equal(t, []string{"x1"}, after.Payments.IDs())
		},
	)
}

func TestReconcileAfterCommit(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()

	moretest.Suite(
		t,
		"test after commit handlers",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateLocalPayments(&db,
				localRow("A", 100, collection_model.MethodCash, "2024-03-01T09:00:00"),
			),
		},
		func(t *testing.T) {
			remote := collection_mock.NewMemoryLedger()
			engine := reconcile.NewEngine(local_ledger.NewStore(&db), remote)

			called := collection_model.PaymentList{}
			unregister := engine.RegisterAfterCommit("capture", func(ctx context.Context, sess *session.Session, uploaded collection_model.PaymentList) error {
				called = append(called, uploaded...)
				return nil
			})
			defer unregister()

			engine.RegisterAfterCommit("broken", func(ctx context.Context, sess *session.Session, uploaded collection_model.PaymentList) error {
				return errors.New("queue down")
			})

			outcome, err := engine.Reconcile(ctx, newSession())
			assert.Nil(t, err)
			assert.True(t, outcome.Success)
			assert.Len(t, called, 1)
			assert.Equal(t, "A", called[0].ID)
			assert.Equal(t, uint(10), called[0].SaleRef)

			t.Run("test not called without commit", func(t *testing.T) {
				called = collection_model.PaymentList{}

				_, err := engine.Reconcile(ctx, newSession())
				assert.Nil(t, err)
				assert.Empty(t, called)
			})
		},
	)
}

func cst2024() time.Time {
	return time.Date(2024, 3, 1, 10, 0, 0, 0, cst)
}
