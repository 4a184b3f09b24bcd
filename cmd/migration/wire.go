//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/pdcgo/collection_service"
	"github.com/pdcgo/collection_service/bootstrap"
	"github.com/pdcgo/collection_service/config"
)

func InitializeMigration(cfg *config.Config) (*Migration, error) {
	wire.Build(
		bootstrap.NewBackOfficeDatabase,
		collection_service.NewMigrationHandler,
		NewMigration,
	)

	return &Migration{}, nil
}
