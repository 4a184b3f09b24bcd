package bootstrap

import (
	"github.com/google/wire"
	"github.com/pdcgo/collection_service/reconcile"
)

// AgentSet provides everything the collector agent and cli share.
var AgentSet = wire.NewSet(
	NewLocation,
	NewLocalStore,
	NewBackOfficeDatabase,
	NewFirestoreClient,
	NewCache,
	NewRemoteLedger,
	NewDirectory,
	NewBadger,
	reconcile.NewHistory,
	NewRegistry,
	NewMetrics,
	NewSessionProvider,
	NewPrinter,
	NewLegacyDispatcher,
	NewLegacyExport,
	NewEngine,
	NewScheduler,
	NewReportService,
	NewAuthorization,
)
