package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/directory"
	"github.com/pdcgo/collection_service/session"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSession(t *testing.T) {
	var db gorm.DB
	ctx := context.Background()
	cst := time.FixedZone("CST", -6*60*60)
	loadAt := time.Date(2024, 2, 26, 6, 0, 0, 0, time.UTC)

	moretest.Suite(
		t,
		"test session from directory",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			collection_mock.PopulateDirectory(&db,
				&collection_model.Collector{ID: "c1", Email: "juan@example.com", Name: "Juan", ZoneID: 7, InitialLoadAt: loadAt},
				&collection_model.Zone{ID: "z7", ZoneID: 7, Name: "Centro"},
			),
			collection_mock.PopulateDirectory(&db,
				&collection_model.Collector{ID: "c2", Email: "ana@example.com", Name: "Ana", ZoneID: 9},
				nil,
			),
		},
		func(t *testing.T) {
			dir := directory.NewSqlDirectory(&db)

			t.Run("test loads collector and zone", func(t *testing.T) {
				sess, err := session.New(ctx, dir, "juan@example.com", cst)
				assert.Nil(t, err)
				assert.Equal(t, uint(7), sess.ZoneID())
				assert.Equal(t, "Centro", sess.ZoneName())
				assert.Equal(t, "Juan", sess.CollectorName())
				assert.True(t, loadAt.Equal(sess.InitialLoadAt()))
				assert.Equal(t, cst, sess.Location)
			})

			t.Run("test missing zone keeps session", func(t *testing.T) {
				sess, err := session.New(ctx, dir, "ana@example.com", cst)
				assert.Nil(t, err)
				assert.Nil(t, sess.Zone)
				assert.Equal(t, "", sess.ZoneName())
			})

			t.Run("test unknown collector", func(t *testing.T) {
				_, err := session.New(ctx, dir, "nadie@example.com", cst)
				assert.ErrorIs(t, err, directory.ErrCollectorNotFound)
			})

			t.Run("test provider follows initial load", func(t *testing.T) {
				provider := session.NewDirectoryProvider(dir, "juan@example.com", cst)

				next := loadAt.Add(7 * 24 * time.Hour)
				err := dir.InitialLoad(ctx, "c1", 7, next)
				assert.Nil(t, err)

				sess, err := provider.Current(ctx)
				assert.Nil(t, err)
				assert.True(t, next.Equal(sess.InitialLoadAt()))
			})
		},
	)
}
