package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/engine"
	"github.com/saideep-g/blue-ninja/internal/mission"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/session"
	"github.com/saideep-g/blue-ninja/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, health func(context.Context) error) http.Handler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	e := engine.New(engine.Options{
		Curriculum: curriculum.Default(),
		Learners:   st.LearnerRepo(),
		Events:     st.EventRepo(),
		KV:         cache.NewMemory(),
		Source:     content.Seed(),
		Now:        func() time.Time { return now },
	})
	return NewRouter(Config{Engine: e, Health: health})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t, nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := func(context.Context) error { return errors.New("redis: connection refused") }
	rec = do(t, newTestRouter(t, down), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestBatchLifecycle(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/learners/l1/batches/2026-03-10", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/learners/l1/batches", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var batch mission.DailyBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.NotEmpty(t, batch.Missions)
	assert.Equal(t, "l1", batch.LearnerID)

	rec = do(t, h, http.MethodGet, "/v1/learners/l1/batches/2026-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stored mission.DailyBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, batch.ID, stored.ID)

	m := batch.Missions[0]
	path := fmt.Sprintf("/v1/missions/%s/answers", m.ID)
	q := m.Questions[0].ID()

	rec = do(t, h, http.MethodPost, path, submitAnswerRequest{QuestionID: q, Answer: "no such answer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res engine.AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Correct)

	rec = do(t, h, http.MethodPost, path, submitAnswerRequest{QuestionID: q, Answer: "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, path, submitAnswerRequest{QuestionID: "missing", Answer: "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/missions/unknown/answers", submitAnswerRequest{QuestionID: q, Answer: "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateBatch_BadRequests(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"bad date", http.MethodPost, "/v1/learners/l1/batches", generateBatchRequest{Date: "10/03/2026"}},
		{"bad path date", http.MethodGet, "/v1/learners/l1/batches/yesterday", nil},
		{"missing question", http.MethodPost, "/v1/missions/m1/answers", map[string]string{"answer": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSessionEndpoints(t *testing.T) {
	h := newTestRouter(t, nil)
	base := "/v1/learners/l1/sessions/math"

	rec := do(t, h, http.MethodPost, base+"/answers", sessionAnswerRequest{Answer: "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, base, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var s session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	require.NotEmpty(t, s.Questions)

	rec = do(t, h, http.MethodPut, base+"/progress", progressRequest{CurrentIndex: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, base+"/progress", progressRequest{CurrentIndex: 1, Score: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.CurrentIndex)

	rec = do(t, h, http.MethodPost, base+"/answers", sessionAnswerRequest{Answer: "no such answer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPut, base+"/progress", progressRequest{CurrentIndex: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLearnerEndpoints(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/learners/l1/streak", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st progress.Streak
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Zero(t, st.Current)

	rec = do(t, h, http.MethodPut, "/v1/learners/l1/profile", engine.Profile{Name: "Asha", Grade: 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/learners/l1/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Modules []json.RawMessage `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Modules)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/v1/learners/l1/streak", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{engine.ErrMissionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", engine.ErrNoSession), http.StatusNotFound},
		{mission.ErrQuestionNotFound, http.StatusNotFound},
		{mission.ErrAlreadyAnswered, http.StatusConflict},
		{mission.ErrMissionClosed, http.StatusConflict},
		{session.ErrInvalidProgress, http.StatusBadRequest},
		{&engine.StoreError{Op: "get learner", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}
