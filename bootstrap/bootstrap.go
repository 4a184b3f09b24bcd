package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dgraph-io/badger/v4"
	"github.com/pdcgo/collection_service/config"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/local_ledger"
	"github.com/pdcgo/collection_service/printer"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/collection_service/remote_ledger"
	"github.com/pdcgo/collection_service/report"
	"github.com/pdcgo/collection_service/session"
	"github.com/pdcgo/shared/pkg/ware_cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// BackOfficeDatabase is the shared postgres database of the sql backend. Its
// DB is nil on the firestore backend.
type BackOfficeDatabase struct {
	DB *gorm.DB
}

func NewLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location()
}

func NewLocalStore(cfg *config.Config) (*local_ledger.Store, error) {
	db, err := local_ledger.OpenSqlite(cfg.Local.Path)
	if err != nil {
		return nil, err
	}
	return local_ledger.NewStore(db), nil
}

func NewBackOfficeDatabase(cfg *config.Config) (*BackOfficeDatabase, error) {
	if cfg.Remote.Backend != config.BackendSql {
		return &BackOfficeDatabase{}, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.Remote.Dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return &BackOfficeDatabase{DB: db}, nil
}

func NewFirestoreClient(cfg *config.Config) (*firestore.Client, func(), error) {
	if cfg.Remote.Backend != config.BackendFirestore {
		return nil, func() {}, nil
	}

	client, err := firestore.NewClient(context.Background(), cfg.Remote.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	return client, func() {
		client.Close()
	}, nil
}

func NewCache(cfg *config.Config) (ware_cache.Cache, error) {
	if cfg.Cache.Path == "" {
		return ware_cache.NewLocalCache(), nil
	}
	return ware_cache.NewBadgerCache(cfg.Cache.Path)
}

func NewRemoteLedger(
	cfg *config.Config,
	backOffice *BackOfficeDatabase,
	fs *firestore.Client,
	cache ware_cache.Cache,
) (remote_ledger.RemoteLedger, error) {
	var ledger remote_ledger.RemoteLedger

	switch cfg.Remote.Backend {
	case config.BackendFirestore:
		ledger = remote_ledger.NewFirestoreLedger(fs)
	case config.BackendSql:
		ledger = remote_ledger.NewSqlLedger(backOffice.DB).WithPollInterval(cfg.Remote.PollInterval)
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.Remote.Backend)
	}

	return remote_ledger.NewCachedLedger(ledger, cache, cfg.Cache.Expiration), nil
}

func NewDirectory(
	cfg *config.Config,
	backOffice *BackOfficeDatabase,
	fs *firestore.Client,
	cache ware_cache.Cache,
) (directory.Directory, error) {
	var dir directory.Directory

	switch cfg.Remote.Backend {
	case config.BackendFirestore:
		dir = directory.NewFirestoreDirectory(fs)
	case config.BackendSql:
		dir = directory.NewSqlDirectory(backOffice.DB).WithPollInterval(cfg.Remote.PollInterval)
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.Remote.Backend)
	}

	return directory.NewCachedDirectory(dir, cache, time.Hour), nil
}

func NewBadger(cfg *config.Config) (*badger.DB, func(), error) {
	opts := badger.DefaultOptions(cfg.History.Path)
	if cfg.History.Path == "" {
		opts = opts.WithInMemory(true)
	}

	bdb, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, nil, err
	}

	return bdb, func() {
		bdb.Close()
	}, nil
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewMetrics(reg *prometheus.Registry) *reconcile.Metrics {
	return reconcile.NewMetrics(reg)
}

func NewSessionProvider(cfg *config.Config, dir directory.Directory, loc *time.Location) session.Provider {
	return session.NewDirectoryProvider(dir, cfg.Collector.Email, loc)
}

func NewPrinter(cfg *config.Config) printer.Printer {
	return printer.NewLazy(cfg.Printer)
}

func NewEngine(
	store *local_ledger.Store,
	remote remote_ledger.RemoteLedger,
	history *reconcile.History,
	metrics *reconcile.Metrics,
	legacy LegacyExport,
) *reconcile.Engine {
	engine := reconcile.NewEngine(store, remote).
		WithHistory(history).
		WithMetrics(metrics)

	if legacy != nil {
		engine.RegisterAfterCommit("legacy_export", reconcile.AfterCommitHandler(legacy))
		log.Println("legacy export enabled")
	}

	return engine
}

func NewScheduler(cfg *config.Config, engine *reconcile.Engine, sessions session.Provider) *reconcile.Scheduler {
	return reconcile.NewScheduler(engine, sessions, cfg.Sync.Interval).WithTimeout(cfg.Sync.Timeout)
}

func NewReportService(
	store *local_ledger.Store,
	remote remote_ledger.RemoteLedger,
	dir directory.Directory,
	prn printer.Printer,
) *report.ReportService {
	return report.NewReportService(store, remote, dir, prn)
}
