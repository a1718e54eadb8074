package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/bookarr/bookarr/pkg/models"
	"github.com/bookarr/bookarr/pkg/settings"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newFakeBookshelf(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/libraries", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"libraries":[{"id":"lib_books","name":"audiobooks"}]}`))
	})
	mux.HandleFunc("/api/libraries/lib_books/items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"id":"li_1","mediaType":"book","media":{"metadata":{"title":"Dune","authorName":"Frank Herbert","narratorName":"Pat Lee"}}},
			{"id":"li_2","mediaType":"book","media":{"metadata":{}}}
		]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupHandler(t *testing.T, db *bun.DB) *handler {
	t.Helper()

	cfg, err := config.New()
	require.NoError(t, err)

	return &handler{
		cfg:             cfg,
		importService:   NewService(db),
		settingsService: settings.NewService(db),
	}
}

func invokeImport(t *testing.T, h *handler, target string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, h.importBookshelf(c)
}

func configureBookshelf(t *testing.T, db *bun.DB, baseURL string) {
	t.Helper()

	key := "secret"
	_, err := settings.NewService(db).Update(context.Background(), map[string]*string{
		settings.KeyBookshelfURL: &baseURL,
		settings.KeyBookshelfKey: &key,
	})
	require.NoError(t, err)
}

func TestImportBookshelf_DefaultsToDryRun(t *testing.T) {
	db := setupTestDB(t)
	srv := newFakeBookshelf(t)
	configureBookshelf(t, db, srv.URL)
	h := setupHandler(t, db)

	rec, err := invokeImport(t, h, "/library/import/bookshelf")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status     string    `json:"status"`
		DryRun     bool      `json:"dry_run"`
		Imported   int       `json:"imported"`
		TotalItems int       `json:"total_items"`
		Items      []Outcome `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.DryRun)
	assert.Equal(t, 1, body.Imported)
	assert.Equal(t, 2, body.TotalItems)
	require.Len(t, body.Items, 2)
	assert.Equal(t, ActionWouldImport, body.Items[0].Action)
	assert.Equal(t, ActionSkipped, body.Items[1].Action)

	// Dry run leaves the database untouched.
	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestImportBookshelf_LiveRunPersists(t *testing.T) {
	db := setupTestDB(t)
	srv := newFakeBookshelf(t)
	configureBookshelf(t, db, srv.URL)
	h := setupHandler(t, db)

	rec, err := invokeImport(t, h, "/library/import/bookshelf?dry_run=false")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		DryRun   bool `json:"dry_run"`
		Imported int  `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.DryRun)
	assert.Equal(t, 1, body.Imported)

	count, err := db.NewSelect().Model((*models.Book)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportBookshelf_InvalidDryRunParam(t *testing.T) {
	db := setupTestDB(t)
	h := setupHandler(t, db)

	_, err := invokeImport(t, h, "/library/import/bookshelf?dry_run=maybe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.ValidationTypeError(`"dry_run" should be of type bool`)))
}

func TestImportBookshelf_RequiresConfiguredConnection(t *testing.T) {
	db := setupTestDB(t)
	h := setupHandler(t, db)

	_, err := invokeImport(t, h, "/library/import/bookshelf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.BadRequest("Audiobookshelf base URL and API key must be configured first.")))
}

func TestImportBookshelf_UpstreamFailureIsBadGateway(t *testing.T) {
	db := setupTestDB(t)
	h := setupHandler(t, db)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	configureBookshelf(t, db, srv.URL)

	_, err := invokeImport(t, h, "/library/import/bookshelf")
	require.Error(t, err)

	codeErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadGateway, codeErr.HTTPCode)
}
