package bootstrap

import (
	"context"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"github.com/pdcgo/collection_service/config"
	"github.com/pdcgo/collection_service/reconcile"
)

// LegacyExport is the after commit handler that feeds the legacy importer,
// nil when export is disabled.
type LegacyExport reconcile.AfterCommitHandler

func NewLegacyDispatcher(cfg *config.Config) (reconcile.LegacyDispatcher, func(), error) {
	if !cfg.Legacy.Enabled || cfg.Legacy.QueuePath == "" {
		return reconcile.NewLocalLegacyDispatcher(), func() {}, nil
	}

	client, err := cloudtasks.NewClient(context.Background())
	if err != nil {
		return nil, nil, err
	}

	return reconcile.NewCloudTaskLegacyDispatcher(client), func() {
		client.Close()
	}, nil
}

func NewLegacyExport(cfg *config.Config, dispatcher reconcile.LegacyDispatcher) LegacyExport {
	if !cfg.Legacy.Enabled {
		return nil
	}
	return LegacyExport(reconcile.NewLegacyExportHandler(dispatcher, cfg.Legacy.QueuePath, cfg.Legacy.Endpoint))
}
