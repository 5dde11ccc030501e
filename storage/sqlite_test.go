package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-mod.ewintr.nl/ytsum/model"
)

func TestSQLite(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "ytsum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	testRepository(t, db)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytsum.db")
	ctx := context.Background()

	db, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, &model.Summary{
		Key:     model.BuildKey("abc"),
		VideoID: "abc",
		URL:     "https://youtu.be/abc",
		Status:  model.StatusQueued,
	}))
	require.NoError(t, db.Close())

	// migrations are not applied twice
	db, err = NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	got, err := db.FindByKey(ctx, model.BuildKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, got.Status)
}

func TestSQLiteRejectsUnknownStatus(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "ytsum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.Save(context.Background(), &model.Summary{
		Key:     model.BuildKey("abc"),
		VideoID: "abc",
		Status:  "working",
	})
	assert.Error(t, err)
}

func TestSQLiteFailedMigration(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "ytsum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wanted := append(append([]string{}, sqliteMigration...), `CREATE TABLE broken (`)
	assert.Error(t, db.migrate(wanted, sqliteMigrationTable))

	applied, err := db.appliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, sqliteMigration, applied)

	wanted[len(wanted)-1] = `CREATE TABLE fixed (id INTEGER)`
	require.NoError(t, db.migrate(wanted, sqliteMigrationTable))
	applied, err = db.appliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, wanted, applied)
}
