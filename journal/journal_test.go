package journal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gigmaster/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i, trigger := range []string{"startup", "watcher", "api"} {
		require.NoError(t, j.Record(ctx, &model.ScanRecord{Trigger: trigger, Songs: i}))
	}

	total, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	recent, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "api", recent[0].Trigger)
	assert.Equal(t, "watcher", recent[1].Trigger)
}

func TestGetScans(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := openTestJournal(t)
	require.NoError(t, j.Record(context.Background(), &model.ScanRecord{Trigger: "startup", Songs: 4}))

	r := gin.New()
	j.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ScansResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Scans, 1)
	assert.Equal(t, 4, resp.Scans[0].Songs)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scans?limit=1000", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
