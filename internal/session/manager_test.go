package session

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/content"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func newTestManager(kv cache.KV) *Manager {
	return NewManager(kv, content.Seed(), nil).WithRand(rand.New(rand.NewPCG(3, 4)))
}

func questionIDs(s *Session) []string {
	out := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = q.ID()
	}
	return out
}

func TestStartFreshSession(t *testing.T) {
	m := newTestManager(cache.NewMemory())
	s, resumed, err := m.StartOrResume(context.Background(), "ana", "math", 7, day)
	require.NoError(t, err)

	assert.False(t, resumed)
	assert.Equal(t, CurrentSchemaVersion, s.SchemaVersion)
	assert.Len(t, s.Questions, MaxQuestions)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, questionIDs(s), s.ConsumedIDs)

	for _, q := range s.Questions {
		assert.NotEqual(t, content.TemplateEssay, q.Item.Template)
		if p, ok := q.Item.Payload.(*content.ChoicePayload); ok && q.Item.Template != content.TemplateTrueFalse {
			sawAnchored := false
			for _, o := range p.Options {
				if o.Anchored {
					sawAnchored = true
				} else {
					assert.False(t, sawAnchored, "%s: unanchored option after an anchored one", q.ID())
				}
			}
		}
	}
}

func TestStartOrResumeIsIdempotent(t *testing.T) {
	m := newTestManager(cache.NewMemory())
	ctx := context.Background()

	first, _, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	require.NoError(t, m.UpdateProgress(ctx, first, Progress{CurrentIndex: 4, Score: 3}))

	again, resumed, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, questionIDs(first), questionIDs(again))
	assert.Equal(t, 4, again.CurrentIndex)
	assert.Equal(t, 3, again.Score)
}

func TestNoRepeatsAcrossSessionsSameDay(t *testing.T) {
	m := newTestManager(cache.NewMemory())
	ctx := context.Background()

	first, _, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, first))

	second, resumed, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	assert.False(t, resumed)
	require.NotEmpty(t, second.Questions)

	seen := map[string]bool{}
	for _, id := range append(questionIDs(first), questionIDs(second)...) {
		assert.False(t, seen[id], "item %s served twice", id)
		seen[id] = true
	}

	// Another learner, or the next day, starts from the full pool.
	other, _, err := m.StartOrResume(ctx, "ben", "math", 7, day)
	require.NoError(t, err)
	assert.Len(t, other.Questions, MaxQuestions)
	tomorrow, _, err := m.StartOrResume(ctx, "ana", "math", 7, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, tomorrow.Questions, MaxQuestions)
}

func TestExhaustedPoolIsNotCached(t *testing.T) {
	kv := cache.NewMemory()
	m := newTestManager(kv)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s, _, err := m.StartOrResume(ctx, "ana", "math", 7, day)
		require.NoError(t, err)
		require.NoError(t, m.Clear(ctx, s))
	}

	empty, resumed, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Empty(t, empty.Questions)

	_, err = kv.Get(ctx, Key("ana", "math", day))
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestVersionBumpDiscardsOldSession(t *testing.T) {
	kv := cache.NewMemory()
	ctx := context.Background()

	old := Session{
		LearnerID: "ana", SubjectID: "math", Date: day, SchemaVersion: 2, CurrentIndex: 5, Score: 5,
		Questions: []content.HydratedQuestion{{Item: content.Item{ID: "v2-only", Template: content.TemplateMultipleChoice}}},
	}
	payload, err := json.Marshal(old)
	require.NoError(t, err)
	raw, err := json.Marshal(cache.Envelope{SchemaVersion: 2, Payload: payload})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, Key("ana", "math", day), raw, 0))

	s, resumed, err := newTestManager(kv).StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, 3, s.SchemaVersion)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.NotContains(t, questionIDs(s), "v2-only")
}

func TestUpdateProgressValidates(t *testing.T) {
	m := newTestManager(cache.NewMemory())
	ctx := context.Background()
	s, _, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)

	for _, p := range []Progress{{-1, 0}, {len(s.Questions) + 1, 0}, {2, 3}, {2, -1}} {
		assert.ErrorIs(t, m.UpdateProgress(ctx, s, p), ErrInvalidProgress, "%+v", p)
	}
	assert.NoError(t, m.UpdateProgress(ctx, s, Progress{CurrentIndex: len(s.Questions), Score: 1}))
	assert.True(t, s.Done())
}

func TestAnswerAdvancesSession(t *testing.T) {
	m := newTestManager(cache.NewMemory())
	ctx := context.Background()
	s, _, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)

	correct, _, err := m.Answer(ctx, s, "definitely not an answer")
	require.NoError(t, err)
	assert.False(t, correct)
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, 0, s.Score)

	sum := s.Summarize()
	assert.Equal(t, 1, sum.Answered)
	assert.Equal(t, MaxQuestions, sum.Total)
	assert.Zero(t, sum.Accuracy)
}

type brokenKV struct {
	cache.KV
	sets int
}

func (b *brokenKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (b *brokenKV) Set(context.Context, string, []byte, time.Duration) error {
	b.sets++
	return nil
}

func TestCacheFailureIsReturnedWithoutWrites(t *testing.T) {
	kv := &brokenKV{KV: cache.NewMemory()}
	_, _, err := newTestManager(kv).StartOrResume(context.Background(), "ana", "math", 7, day)
	require.Error(t, err)
	assert.Zero(t, kv.sets)
}

// sessionWriteFailKV fails writes of session entries while failing is set.
type sessionWriteFailKV struct {
	cache.KV
	failing bool
}

func (f *sessionWriteFailKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.failing && strings.HasPrefix(key, "session:") {
		return errors.New("connection refused")
	}
	return f.KV.Set(ctx, key, value, ttl)
}

func TestFailedSessionWriteNeverRepeatsItems(t *testing.T) {
	kv := &sessionWriteFailKV{KV: cache.NewMemory(), failing: true}
	m := newTestManager(kv)
	ctx := context.Background()

	_, _, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.Error(t, err)

	served, err := m.LoadServed(ctx, "ana", day)
	require.NoError(t, err)
	require.Equal(t, MaxQuestions, served.Len())

	kv.failing = false
	s, resumed, err := m.StartOrResume(ctx, "ana", "math", 7, day)
	require.NoError(t, err)
	assert.False(t, resumed)
	for _, id := range s.ConsumedIDs {
		assert.False(t, served.Has(id), "item %s repeated", id)
	}
}
