package collection_service_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdcgo/collection_service"
	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/local_ledger"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/report"
	"github.com/pdcgo/collection_service/session"
	"github.com/pdcgo/collection_service/sync_service"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRegister(t *testing.T) {
	var db gorm.DB

	moretest.Suite(
		t,
		"test register collection handlers",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			func(t *testing.T) func() error {
				assert.Nil(t, local_ledger.Migrate(&db))
				assert.Nil(t, directory.MigrateSql(&db))
				return nil
			},
		},
		func(t *testing.T) {
			store := local_ledger.NewStore(&db)
			remote := collection_mock.NewMemoryLedger()
			dir := directory.NewSqlDirectory(&db)
			reg := prometheus.NewRegistry()

			engine := reconcile.NewEngine(store, remote).WithMetrics(reconcile.NewMetrics(reg))
			reports := report.NewReportService(store, remote, dir, nil)
			sessions := session.NewDirectoryProvider(dir, "juan@example.com", time.UTC)

			mux := http.NewServeMux()
			register := collection_service.NewRegister(mux, nil, sessions, engine, reports, store, dir, nil, reg)
			register()

			srv := httptest.NewServer(mux)
			defer srv.Close()

			res, err := http.Get(srv.URL + collection_service.MetricsPath)
			assert.Nil(t, err)
			defer res.Body.Close()

			body, err := io.ReadAll(res.Body)
			assert.Nil(t, err)
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Contains(t, string(body), "collection_reconcile_uploaded_payments_total")

			res2, err := http.Post(srv.URL+sync_service.SyncServiceStatusProcedure, "application/json", nil)
			assert.Nil(t, err)
			res2.Body.Close()
			assert.NotEqual(t, http.StatusNotFound, res2.StatusCode)
		},
	)
}
