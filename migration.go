package collection_service

import (
	"log"

	"github.com/pdcgo/collection_service/bootstrap"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/remote_ledger"
)

type MigrationHandler func() error

// NewMigrationHandler migrates the back office tables. The device database is
// migrated when it is opened.
func NewMigrationHandler(
	backOffice *bootstrap.BackOfficeDatabase,
) MigrationHandler {
	return func() error {
		if backOffice.DB == nil {
			log.Println("remote backend has no schema to migrate")
			return nil
		}

		log.Println("migrating collection service")
		err := remote_ledger.MigrateSql(backOffice.DB)
		if err != nil {
			return err
		}

		return directory.MigrateSql(backOffice.DB)
	}
}
