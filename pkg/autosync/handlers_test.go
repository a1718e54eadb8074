package autosync

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookarr/bookarr/pkg/bookshelf"
	"github.com/bookarr/bookarr/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invokeSyncNow(t *testing.T, h *handler) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/autosync/sync-now", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, h.syncNow(c)
}

type syncNowResponse struct {
	Status string  `json:"status"`
	Result *Result `json:"result"`
}

func TestSyncNow_ReturnsResult(t *testing.T) {
	db := setupTestDB(t)
	configureBookshelf(t, db)

	up := newFakeUpstream([]bookshelf.Item{
		{ID: "li_1", Media: bookshelf.ItemMedia{Metadata: bookshelf.ItemMetadata{Title: "Dune", AuthorName: "Frank Herbert"}}},
	}, nil)
	h := &handler{syncService: setupService(t, db, up)}

	rec, err := invokeSyncNow(t, h)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var body syncNowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.NotNil(t, body.Result)
	require.NotNil(t, body.Result.ImportedCount)
	assert.Equal(t, 1, *body.Result.ImportedCount)
	assert.Empty(t, body.Result.Error)
}

func TestSyncNow_CycleFailureReportedInBody(t *testing.T) {
	db := setupTestDB(t)
	configureBookshelf(t, db)

	up := newFakeUpstream(nil, errors.New("upstream unreachable"))
	h := &handler{syncService: setupService(t, db, up)}

	// An upstream failure is surfaced in the result body, not as a
	// transport-level error.
	rec, err := invokeSyncNow(t, h)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var body syncNowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body.Status)
	require.NotNil(t, body.Result)
	assert.Equal(t, "upstream unreachable", body.Result.Error)
	assert.Nil(t, body.Result.ImportedCount)
}

func TestSyncNow_NotConfigured(t *testing.T) {
	db := setupTestDB(t)
	h := &handler{syncService: setupService(t, db, newFakeUpstream(nil, nil))}

	_, err := invokeSyncNow(t, h)
	require.Error(t, err)

	var appErr *errcodes.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}
