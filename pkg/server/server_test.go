package server

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookarr/bookarr/pkg/autosync"
	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/migrations"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/labstack/echo/v4"
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

func setupServer(t *testing.T, frontendURL string) *http.Server {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := config.New()
	require.NoError(t, err)
	cfg.FrontendURL = frontendURL

	db := setupTestDB(t)
	syncService := autosync.NewService(db, cfg)
	t.Cleanup(syncService.Stop)

	srv, err := New(cfg, db, syncService)
	require.NoError(t, err)

	return srv
}

func preflight(srv *http.Server, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestNewRestrictsCORSToFrontend(t *testing.T) {
	srv := setupServer(t, "http://frontend.local")

	rec := preflight(srv, "http://frontend.local")
	assert.Equal(t, "http://frontend.local", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = preflight(srv, "http://other.local")
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestNewDefaultsCORSWithoutFrontend(t *testing.T) {
	srv := setupServer(t, "")

	rec := preflight(srv, "http://anywhere.local")
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestNewServesHealth(t *testing.T) {
	srv := setupServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
