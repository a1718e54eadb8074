package autosync

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/bookarr/bookarr/pkg/bookshelf"
	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/migrations"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/bookarr/bookarr/pkg/settings"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// A second pool connection would get its own empty in-memory database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*models.BookNarrator)(nil))

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

type fakeUpstream struct {
	items []bookshelf.Item
	err   error

	// real client used only for Normalize, which is pure.
	normalizer *bookshelf.Client
}

func newFakeUpstream(items []bookshelf.Item, err error) *fakeUpstream {
	return &fakeUpstream{
		items:      items,
		err:        err,
		normalizer: bookshelf.New("http://abs.local", "token", bookshelf.ClientOptions{}),
	}
}

func (f *fakeUpstream) ListItems(_ context.Context) ([]bookshelf.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeUpstream) Normalize(item bookshelf.Item) bookshelf.NormalizedItem {
	return f.normalizer.Normalize(item)
}

func setupService(t *testing.T, db *bun.DB, up upstream) *Service {
	t.Helper()

	cfg, err := config.New()
	require.NoError(t, err)

	svc := NewService(db, cfg)
	svc.newClient = func(_, _ string) upstream {
		return up
	}

	t.Cleanup(svc.Stop)
	return svc
}

func configureBookshelf(t *testing.T, db *bun.DB) {
	t.Helper()

	url := "http://abs.local"
	key := "secret"
	_, err := settings.NewService(db).Update(context.Background(), map[string]*string{
		settings.KeyBookshelfURL: &url,
		settings.KeyBookshelfKey: &key,
	})
	require.NoError(t, err)
}

func TestTriggerNow_ImportsAndRecordsResult(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	configureBookshelf(t, db)

	up := newFakeUpstream([]bookshelf.Item{
		{ID: "li_1", Media: bookshelf.ItemMedia{Metadata: bookshelf.ItemMetadata{Title: "Dune", AuthorName: "Frank Herbert"}}},
		{ID: "li_2"}, // no title or author, skipped
	}, nil)
	svc := setupService(t, db, up)

	result, err := svc.TriggerNow(ctx)
	require.NoError(t, err)

	require.NotNil(t, result.ImportedCount)
	assert.Equal(t, 1, *result.ImportedCount)
	assert.NotEmpty(t, result.Timestamp)
	assert.Empty(t, result.Error)

	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	status := svc.Status()
	require.NotNil(t, status.LastRun)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 1, *status.LastResult.ImportedCount)
}

func TestTriggerNow_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	configureBookshelf(t, db)

	up := newFakeUpstream([]bookshelf.Item{
		{ID: "li_1", Media: bookshelf.ItemMedia{Metadata: bookshelf.ItemMetadata{Title: "Dune", AuthorName: "Frank Herbert"}}},
	}, nil)
	svc := setupService(t, db, up)

	_, err := svc.TriggerNow(ctx)
	require.NoError(t, err)
	_, err = svc.TriggerNow(ctx)
	require.NoError(t, err)

	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTriggerNow_NotConfigured(t *testing.T) {
	db := setupTestDB(t)
	svc := setupService(t, db, newFakeUpstream(nil, nil))

	result, err := svc.TriggerNow(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrNotConfigured.Error(), result.Error)
	assert.Nil(t, result.ImportedCount)
}

func TestTriggerNow_UpstreamFailureRecordsError(t *testing.T) {
	db := setupTestDB(t)
	configureBookshelf(t, db)

	up := newFakeUpstream(nil, errors.New("connection refused"))
	svc := setupService(t, db, up)

	_, err := svc.TriggerNow(context.Background())
	require.Error(t, err)

	status := svc.Status()
	assert.Nil(t, status.LastRun)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, "connection refused", status.LastResult.Error)
}

func TestConfigure_RequiresBookshelfSettings(t *testing.T) {
	db := setupTestDB(t)
	svc := setupService(t, db, newFakeUpstream(nil, nil))

	err := svc.Configure(context.Background(), true, 6)
	require.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, svc.Status().Enabled)
}

func TestConfigure_DisablingAlwaysSucceeds(t *testing.T) {
	db := setupTestDB(t)
	svc := setupService(t, db, newFakeUpstream(nil, nil))

	require.NoError(t, svc.Configure(context.Background(), false, 12))

	status := svc.Status()
	assert.False(t, status.Enabled)
	assert.Equal(t, 12, status.IntervalHours)
}

func TestConfigure_StartsAndStopsWorker(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	configureBookshelf(t, db)

	up := newFakeUpstream([]bookshelf.Item{
		{ID: "li_1", Media: bookshelf.ItemMedia{Metadata: bookshelf.ItemMetadata{Title: "Dune", AuthorName: "Frank Herbert"}}},
	}, nil)
	svc := setupService(t, db, up)

	require.NoError(t, svc.Configure(ctx, true, 6))
	assert.True(t, svc.Status().Enabled)

	// The first cycle runs immediately on start.
	require.Eventually(t, func() bool {
		return svc.Status().LastRun != nil
	}, 5*time.Second, 10*time.Millisecond)

	// Stop must return without waiting out the interval.
	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return promptly")
	}

	assert.False(t, svc.Status().Enabled)
}

func TestStatus_DefaultsFromConfig(t *testing.T) {
	db := setupTestDB(t)
	svc := setupService(t, db, newFakeUpstream(nil, nil))

	status := svc.Status()
	assert.False(t, status.Enabled)
	assert.Equal(t, 6, status.IntervalHours)
	assert.Nil(t, status.LastRun)
	assert.Nil(t, status.LastResult)
}
