package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToDevelopment(t *testing.T) {
	t.Setenv(environmentENV, "")
	t.Setenv("PORT", "")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "audiobooks", cfg.BookshelfLibraryName)
	assert.Equal(t, "./tmp/data.sqlite", cfg.DatabaseFilePath)
	assert.True(t, cfg.DatabaseDebug)
	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Equal(t, 7452, cfg.ServerPort)
	assert.Equal(t, 6, cfg.SyncIntervalHours)
	assert.Equal(t, 5*time.Second, cfg.DatabaseBusyTimeout)
}

func TestNew_Test(t *testing.T) {
	t.Setenv(environmentENV, "test")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, 0, cfg.ServerPort)
	assert.Equal(t, 1, cfg.DatabaseConnectRetryCount)
}

func TestNew_Production(t *testing.T) {
	t.Setenv(environmentENV, "production")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_FILE_PATH", "/data/bookarr.sqlite")
	t.Setenv("BOOKSHELF_LIBRARY_NAME", "My Audiobooks")
	t.Setenv("SYNC_INTERVAL_HOURS", "12")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/data/bookarr.sqlite", cfg.DatabaseFilePath)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "My Audiobooks", cfg.BookshelfLibraryName)
	assert.Equal(t, 12, cfg.SyncIntervalHours)
}

func TestNew_ProductionDefaults(t *testing.T) {
	t.Setenv(environmentENV, "production")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_FILE_PATH", "")
	t.Setenv("BOOKSHELF_LIBRARY_NAME", "")
	t.Setenv("SYNC_INTERVAL_HOURS", "")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/config/data.sqlite", cfg.DatabaseFilePath)
	assert.Equal(t, 7452, cfg.ServerPort)
	assert.Equal(t, "audiobooks", cfg.BookshelfLibraryName)
	assert.Equal(t, 6, cfg.SyncIntervalHours)
}
