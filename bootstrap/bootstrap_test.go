package bootstrap_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/pdcgo/collection_service/bootstrap"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/config"
	"github.com/pdcgo/shared/interfaces/authorization_iface"
	"github.com/stretchr/testify/assert"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Collector.Email = "juan@example.com"
	cfg.Local.Path = t.TempDir() + "/cobranza.db"
	cfg.History.Path = ""
	return cfg
}

func TestAuthorization(t *testing.T) {
	t.Run("device mode allows the local caller", func(t *testing.T) {
		auth, err := bootstrap.NewAuthorization(testConfig(t), &bootstrap.BackOfficeDatabase{}, nil)
		assert.Nil(t, err)

		err = auth.
			AuthIdentityFromHeader(http.Header{}).
			HasPermission(authorization_iface.CheckPermissionGroup{
				&collection_model.Payment{}: &authorization_iface.CheckPermission{
					DomainID: 7,
					Actions:  []authorization_iface.Action{authorization_iface.Delete},
				},
			}).
			Err()
		assert.Nil(t, err)
	})

	t.Run("jwt mode needs the back office database", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.Mode = config.AuthJwt

		_, err := bootstrap.NewAuthorization(cfg, &bootstrap.BackOfficeDatabase{}, nil)
		assert.ErrorIs(t, err, bootstrap.ErrNoBackOfficeDatabase)
	})
}

func TestLegacyExport(t *testing.T) {
	cfg := testConfig(t)

	dispatcher, cleanup, err := bootstrap.NewLegacyDispatcher(cfg)
	assert.Nil(t, err)
	defer cleanup()

	assert.Nil(t, bootstrap.NewLegacyExport(cfg, dispatcher))

	cfg.Legacy.Enabled = true
	cfg.Legacy.Endpoint = "http://127.0.0.1:9/legacy"
	assert.NotNil(t, bootstrap.NewLegacyExport(cfg, dispatcher))
}

func TestLocalProviders(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	store, err := bootstrap.NewLocalStore(cfg)
	assert.Nil(t, err)

	count, err := store.Count(ctx, 7)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), count)

	bdb, cleanup, err := bootstrap.NewBadger(cfg)
	assert.Nil(t, err)
	defer cleanup()
	assert.NotNil(t, bdb)

	cache, err := bootstrap.NewCache(cfg)
	assert.Nil(t, err)

	backOffice, err := bootstrap.NewBackOfficeDatabase(cfg)
	assert.Nil(t, err)
	assert.Nil(t, backOffice.DB)

	cfg.Remote.Backend = "carrier-pigeon"
	_, err = bootstrap.NewRemoteLedger(cfg, backOffice, nil, cache)
	assert.NotNil(t, err)
	_, err = bootstrap.NewDirectory(cfg, backOffice, nil, cache)
	assert.NotNil(t, err)

	reg := bootstrap.NewRegistry()
	metrics := bootstrap.NewMetrics(reg)
	assert.NotNil(t, metrics.Runs())
}
