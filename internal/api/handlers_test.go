package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyloop/internal/logging"
	"github.com/abhisek/studyloop/internal/review"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/study"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// brokenRepo fails every schedule write.
type brokenRepo struct{ store.ItemRepo }

func (brokenRepo) UpdateSchedule(context.Context, string, int64, review.Result) (int64, error) {
	return 0, errors.New("disk I/O error")
}

func newTestRouter(t *testing.T, scale review.Scale, wrap func(store.ItemRepo) store.ItemRepo) *gin.Engine {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	items := st.Items()
	if wrap != nil {
		items = wrap(items)
	}
	sched, err := review.NewScheduler(review.DefaultConfig())
	require.NoError(t, err)
	log := logging.Discard()
	svc := study.NewService(items, st.Sessions(), sched,
		study.WithLogger(log),
		study.WithClock(func() time.Time { return testNow }),
		study.WithRetry(study.RetryConfig{MaxAttempts: 1}),
	)
	return NewRouter(NewHandler(svc, scale, log))
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createItem(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/items", map[string]any{
		"subject": "Biology", "title": "Mitosis", "mastery": 60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var it review.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &it))
	return it.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestReviewFlow(t *testing.T) {
	r := newTestRouter(t, review.Scale5, nil)
	id := createItem(t, r)

	w := do(t, r, http.MethodPost, "/api/items/"+id+"/reviews", map[string]any{"rating": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[reviewResponse](t, w)
	assert.Equal(t, 5, resp.Result.IntervalDays)
	assert.Equal(t, review.Good, resp.Result.Entry.Rating)
	assert.Equal(t, "Initial interval based on 60% mastery: 5 days", resp.Result.Rationale[0])
	require.Len(t, resp.Item.Logs, 1)

	w = do(t, r, http.MethodGet, "/api/items/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"not_due"`)
	assert.Contains(t, w.Body.String(), `"days_until_review":5`)
}

func TestReview_PassFailAndScale4(t *testing.T) {
	r := newTestRouter(t, review.Scale4, nil)
	id := createItem(t, r)

	w := do(t, r, http.MethodPost, "/api/items/"+id+"/preview", map[string]any{"rating": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[review.Result](t, w)
	assert.Equal(t, review.Easy, res.Entry.Rating, "3 of 4 maps to canonical 4")

	w = do(t, r, http.MethodPost, "/api/items/"+id+"/reviews", map[string]any{"rating": "fail"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[reviewResponse](t, w)
	assert.Equal(t, review.FailRating, resp.Result.Entry.Rating)
}

func TestReview_Errors(t *testing.T) {
	r := newTestRouter(t, review.Scale5, nil)
	id := createItem(t, r)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing rating", "/api/items/" + id + "/reviews", map[string]any{}, http.StatusBadRequest, "invalid_rating"},
		{"zero rating", "/api/items/" + id + "/reviews", map[string]any{"rating": 0}, http.StatusBadRequest, "invalid_rating"},
		{"rating too high", "/api/items/" + id + "/reviews", map[string]any{"rating": 6}, http.StatusBadRequest, "invalid_rating"},
		{"bad word", "/api/items/" + id + "/reviews", map[string]any{"rating": "meh"}, http.StatusBadRequest, "invalid_rating"},
		{"custom date today", "/api/items/" + id + "/reviews", map[string]any{"rating": 3, "custom_date": "2025-03-10"}, http.StatusBadRequest, "invalid_date"},
		{"custom date garbage", "/api/items/" + id + "/reviews", map[string]any{"rating": 3, "custom_date": "soon"}, http.StatusBadRequest, "invalid_date"},
		{"unknown item", "/api/items/nope/reviews", map[string]any{"rating": 3}, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		w := do(t, r, http.MethodPost, tt.path, tt.body)
		if w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, w.Code, tt.status, w.Body.String())
			continue
		}
		env := decode[ErrorEnvelope](t, w)
		assert.Equal(t, tt.code, env.Error.Code, tt.name)
	}
}

func TestReview_CustomDate(t *testing.T) {
	r := newTestRouter(t, review.Scale5, nil)
	id := createItem(t, r)

	w := do(t, r, http.MethodPost, "/api/items/"+id+"/reviews", map[string]any{"rating": 3, "custom_date": "2025-03-20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[reviewResponse](t, w)
	assert.Equal(t, "2025-03-20", resp.Result.NextDate.Format(time.DateOnly))
	assert.Contains(t, resp.Result.Rationale[len(resp.Result.Rationale)-1], "Custom date selected")
}

func TestReview_PersistenceFailureIs503(t *testing.T) {
	r := newTestRouter(t, review.Scale5, func(items store.ItemRepo) store.ItemRepo { return brokenRepo{items} })
	id := createItem(t, r)

	w := do(t, r, http.MethodPost, "/api/items/"+id+"/reviews", map[string]any{"rating": 3})
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	env := decode[ErrorEnvelope](t, w)
	assert.Equal(t, "persistence", env.Error.Code)
	assert.True(t, env.Error.Retryable)
}

func TestCreateItem_Validation(t *testing.T) {
	r := newTestRouter(t, review.Scale5, nil)
	tests := []map[string]any{
		{"title": "no subject"},
		{"subject": "x", "title": "y", "mastery": 150},
		{"subject": "x", "title": "y", "kind": "book"},
	}
	for _, body := range tests {
		w := do(t, r, http.MethodPost, "/api/items", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v: %s", body, w.Body.String())
	}
}

func TestItemLifecycle(t *testing.T) {
	r := newTestRouter(t, review.Scale5, nil)
	id := createItem(t, r)

	w := do(t, r, http.MethodPut, "/api/items/"+id+"/phase", map[string]any{"phase": "mastery"})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = do(t, r, http.MethodPut, "/api/items/"+id+"/phase", map[string]any{"phase": "expert"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/items/"+id+"/exam", map[string]any{"date": "2025-04-01"})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/items/"+id+"/sessions", map[string]any{"mastery_gained": 50, "duration_minutes": 30})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[review.Item](t, w)
	assert.Equal(t, 100, it.MasteryLevel)

	w = do(t, r, http.MethodGet, "/api/items?subject=Biology", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Items []review.Item }](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, review.PhaseMastery, list.Items[0].Phase)
	require.NotNil(t, list.Items[0].ExamDate)

	w = do(t, r, http.MethodDelete, "/api/items/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/api/items/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDueStreakStats(t *testing.T) {
	r := newTestRouter(t, review.Scale5, nil)
	id := createItem(t, r)

	w := do(t, r, http.MethodGet, "/api/due", nil)
	require.Equal(t, http.StatusOK, w.Code)
	due := decode[struct{ Items []review.Item }](t, w)
	require.Len(t, due.Items, 1)
	assert.Equal(t, id, due.Items[0].ID)

	w = do(t, r, http.MethodPost, "/api/items/"+id+"/reviews", map[string]any{"rating": 4})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/streak", nil)
	require.Equal(t, http.StatusOK, w.Code)
	streak := decode[study.StreakInfo](t, w)
	assert.Equal(t, study.StreakInfo{Current: 1, NextMilestone: 5}, streak)

	w = do(t, r, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":"Biology"`)
	assert.Contains(t, w.Body.String(), `"retention":1`)

	w = do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
