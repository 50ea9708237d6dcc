package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-wallet-connect/walletClient/store"
)

func TestDB_OpenModes(t *testing.T) {
	t.Run("in-memory alias", func(t *testing.T) {
		db, err := OpenInMemoryDB(true)
		require.NoError(t, err)
		require.NotNil(t, db)

		runSampleInsertSelectTest(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("file-based DB", func(t *testing.T) {
		dir := t.TempDir()

		db, err := OpenFileDB(dir, DefaultFileName, true)
		require.NoError(t, err)
		require.NotNil(t, db)

		assert.FileExists(t, filepath.Join(dir, DefaultFileName))

		runSampleInsertSelectTest(t, db)

		assert.NoError(t, db.Close())
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "storage")

		db, err := OpenFileDB(dir, DefaultFileName, true)
		require.NoError(t, err)
		assert.DirExists(t, dir)
		assert.NoError(t, db.Close())
	})
}

func runSampleInsertSelectTest(t *testing.T, db *DB) {
	entry := store.StorageEntry{
		Key:   "walletconnect-js",
		Value: `{"connectionTimeout":1800000}`,
	}
	require.NoError(t, db.Client().Create(&entry).Error)

	var result store.StorageEntry
	require.NoError(t, db.Client().Where("key = ?", "walletconnect-js").First(&result).Error)
	assert.Equal(t, `{"connectionTimeout":1800000}`, result.Value)

	record := store.RequestRecord{Method: "sendMessage", Status: "PENDING", RequestID: 42}
	require.NoError(t, db.Client().Create(&record).Error)

	var count int64
	require.NoError(t, db.Client().Model(&store.RequestRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
