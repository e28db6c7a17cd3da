package adminui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crowdsourcing/surveyadmin/internal/fieldnames"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedMetrics struct{}

func (fixedMetrics) Metrics() fieldnames.MetricsSnapshot {
	return fieldnames.MetricsSnapshot{Calls: 3, Errors: 1}
}

func setupRouter(store *fieldnames.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store, fixedMetrics{}).Register(r.Group("/admin"))
	return r
}

func TestSuggestions_EmptyBeforeLoad(t *testing.T) {
	r := setupRouter(fieldnames.NewStore())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/fieldnames/suggestions?term=x", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(fieldnames.StateEmpty), rr.Header().Get(StateHeader))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestSuggestions_FullList(t *testing.T) {
	store := fieldnames.NewStore()
	store.Set([]domain.Suggestion{
		{Value: "s1.f1", Label: "T1 - Q1?"},
		{Value: "s2.f9", Label: "T2 - Q9?"},
	})
	r := setupRouter(store)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/fieldnames/suggestions?term=f9", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(fieldnames.StatePopulated), rr.Header().Get(StateHeader))
	assert.JSONEq(t, `[{"label":"T1 - Q1?","value":"s1.f1"},{"label":"T2 - Q9?","value":"s2.f9"}]`, rr.Body.String())
}

func TestSuggestions_FailedLoad(t *testing.T) {
	store := fieldnames.NewStore()
	store.Fail(errors.New("upstream down"))
	r := setupRouter(store)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/fieldnames/suggestions", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(fieldnames.StateFailed), rr.Header().Get(StateHeader))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestStatus(t *testing.T) {
	store := fieldnames.NewStore()
	store.Fail(errors.New("upstream down"))
	r := setupRouter(store)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/fieldnames/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Store  fieldnames.Snapshot        `json:"store"`
		Loader fieldnames.MetricsSnapshot `json:"loader"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, fieldnames.StateFailed, body.Store.State)
	assert.Equal(t, "upstream down", body.Store.LastError)
	assert.Equal(t, int64(3), body.Loader.Calls)
}

func TestStatus_NotLoaded(t *testing.T) {
	r := setupRouter(fieldnames.NewStore())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/fieldnames/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Store fieldnames.Snapshot `json:"store"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, fieldnames.StateEmpty, body.Store.State)
	assert.Equal(t, fieldnames.ErrNotLoaded.Error(), body.Store.LastError)
}
