package main

import (
	"log"
	"os"

	"github.com/pdcgo/collection_service"
	"github.com/pdcgo/collection_service/config"
	"github.com/pdcgo/shared/pkg/cloud_logging"
)

type Migration struct {
	Run func() error
}

func NewMigration(
	cfg *config.Config,
	migrate collection_service.MigrationHandler,
) *Migration {
	return &Migration{
		Run: func() error {
			log.Println("migrating", cfg.Remote.Backend, "backend")
			return migrate()
		},
	}
}

func main() {
	cloud_logging.SetCloudLoggingDefault()

	cfg, err := config.Load(os.Getenv("COLLECTOR_CONFIG"))
	if err != nil {
		panic(err)
	}

	migration, err := InitializeMigration(cfg)
	if err != nil {
		panic(err)
	}

	err = migration.Run()
	if err != nil {
		panic(err)
	}
}
