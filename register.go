package collection_service

import (
	"net/http"

	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/local_ledger"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/report"
	"github.com/pdcgo/collection_service/session"
	"github.com/pdcgo/collection_service/sync_service"
	"github.com/pdcgo/shared/interfaces/authorization_iface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const MetricsPath = "/metrics"

type RegisterHandler func()

func NewRegister(
	mux *http.ServeMux,
	auth authorization_iface.Authorization,
	sessions session.Provider,
	engine *reconcile.Engine,
	reports *report.ReportService,
	store *local_ledger.Store,
	dir directory.Directory,
	history *reconcile.History,
	reg *prometheus.Registry,
) RegisterHandler {

	return func() {
		path, handler := sync_service.NewSyncServiceHandler(
			sync_service.NewSyncService(auth, sessions, engine, reports, store, dir, history),
		)
		mux.Handle(path, handler)

		mux.Handle(MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

}
