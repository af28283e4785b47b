package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/content"
)

const dateLayout = "2006-01-02"

// Key is the cache key of a learner's session for a subject and date.
func Key(learnerID, subjectID string, date time.Time) string {
	return "session:" + learnerID + ":" + subjectID + ":" + date.Format(dateLayout)
}

// ServedKey is the cache key of the ids already served to a learner on a date.
func ServedKey(learnerID string, date time.Time) string {
	return "served:" + learnerID + ":" + date.Format(dateLayout)
}

// servedSchemaVersion versions the served-set entry independently of sessions.
const servedSchemaVersion = 1

// Manager starts, resumes, updates and clears sessions.
type Manager struct {
	kv       cache.KV
	fetcher  *content.Fetcher
	hydrator *content.Hydrator
	logger   *zap.Logger
	rng      *rand.Rand
	now      func() time.Time
}

// NewManager creates a Manager reading content from source.
func NewManager(kv cache.KV, source content.Source, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		kv:       kv,
		fetcher:  content.NewFetcher(source, logger),
		hydrator: content.NewHydrator(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithRand fixes the shuffle source, for tests.
func (m *Manager) WithRand(rng *rand.Rand) *Manager {
	m.rng = rng
	return m
}

// StartOrResume returns the cached session for (learner, subject, date)
// when one exists under CurrentSchemaVersion, with its index and score
// intact. Otherwise it builds a fresh session from content not yet served
// that day. resumed reports which happened. Cache read failures other
// than a miss are returned and nothing is written.
func (m *Manager) StartOrResume(ctx context.Context, learnerID, subjectID string, grade int, date time.Time) (s *Session, resumed bool, err error) {
	key := Key(learnerID, subjectID, date)
	log := m.logger.With(zap.String("session", key))

	var cached Session
	err = cache.Load(ctx, m.kv, key, CurrentSchemaVersion, &cached)
	switch {
	case err == nil:
		return &cached, true, nil
	case errors.Is(err, cache.ErrStale):
		log.Info("discarding session from an older schema")
	case !cache.IsMiss(err):
		return nil, false, fmt.Errorf("load session: %w", err)
	}

	served, err := m.LoadServed(ctx, learnerID, date)
	if err != nil {
		return nil, false, err
	}

	pool := m.fetcher.FetchPool(ctx, subjectID, grade)
	candidates := m.hydrator.Candidates(pool, served)
	m.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) > MaxQuestions {
		candidates = candidates[:MaxQuestions]
	}

	now := m.now()
	s = &Session{
		LearnerID:     learnerID,
		SubjectID:     subjectID,
		Grade:         grade,
		Date:          date,
		SchemaVersion: CurrentSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, it := range candidates {
		it = it.WithShuffledOptions(m.rng)
		s.Questions = append(s.Questions, content.HydratedQuestion{
			Skeleton: content.Skeleton{
				AtomID:   it.AtomID,
				Template: it.Template,
				Phase:    "session",
				Slot:     i + 1,
			},
			Item: it,
		})
		s.ConsumedIDs = append(s.ConsumedIDs, it.ID)
	}

	if len(s.Questions) == 0 {
		// Not cached, so content added later today still reaches the learner.
		log.Warn("no content available for session", zap.Int("pool", len(pool)))
		return s, false, nil
	}

	for _, id := range s.ConsumedIDs {
		served.Add(id)
	}
	if err := m.SaveServed(ctx, learnerID, date, served); err != nil {
		return nil, false, err
	}
	if err := cache.Save(ctx, m.kv, key, CurrentSchemaVersion, s, TTL); err != nil {
		return nil, false, fmt.Errorf("save session: %w", err)
	}
	log.Info("session started", zap.Int("questions", len(s.Questions)))
	return s, false, nil
}

// Load returns the cached session for (learner, subject, date). A missing
// or stale entry yields an error satisfying cache.IsMiss.
func (m *Manager) Load(ctx context.Context, learnerID, subjectID string, date time.Time) (*Session, error) {
	var s Session
	if err := cache.Load(ctx, m.kv, Key(learnerID, subjectID, date), CurrentSchemaVersion, &s); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &s, nil
}

// UpdateProgress persists the index and score. Content is not refetched.
func (m *Manager) UpdateProgress(ctx context.Context, s *Session, p Progress) error {
	if p.CurrentIndex < 0 || p.CurrentIndex > len(s.Questions) || p.Score < 0 || p.Score > p.CurrentIndex {
		return fmt.Errorf("%w: index %d score %d of %d", ErrInvalidProgress, p.CurrentIndex, p.Score, len(s.Questions))
	}
	s.CurrentIndex = p.CurrentIndex
	s.Score = p.Score
	s.UpdatedAt = m.now()
	if err := cache.Save(ctx, m.kv, Key(s.LearnerID, s.SubjectID, s.Date), CurrentSchemaVersion, s, TTL); err != nil {
		return fmt.Errorf("save session progress: %w", err)
	}
	return nil
}

// Answer checks an answer to the current question and advances the session.
func (m *Manager) Answer(ctx context.Context, s *Session, answer string) (correct bool, misconception string, err error) {
	q, ok := s.Current()
	if !ok {
		return false, "", fmt.Errorf("%w: session is finished", ErrInvalidProgress)
	}
	correct, misconception = q.Item.Check(answer)
	p := Progress{CurrentIndex: s.CurrentIndex + 1, Score: s.Score}
	if correct {
		p.Score++
	}
	if err := m.UpdateProgress(ctx, s, p); err != nil {
		return false, "", err
	}
	return correct, misconception, nil
}

// Clear removes the session. Its items stay in the served set, so a new
// session the same day does not repeat them.
func (m *Manager) Clear(ctx context.Context, s *Session) error {
	if err := m.kv.Delete(ctx, Key(s.LearnerID, s.SubjectID, s.Date)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// LoadServed returns the ids served to a learner on a date. A missing or
// stale entry yields an empty set.
func (m *Manager) LoadServed(ctx context.Context, learnerID string, date time.Time) (*content.ServedSet, error) {
	served := content.NewServedSet()
	err := cache.Load(ctx, m.kv, ServedKey(learnerID, date), servedSchemaVersion, served)
	if err != nil && !cache.IsMiss(err) {
		return nil, fmt.Errorf("load served set: %w", err)
	}
	if err != nil {
		return content.NewServedSet(), nil
	}
	return served, nil
}

// SaveServed persists the served set.
func (m *Manager) SaveServed(ctx context.Context, learnerID string, date time.Time, served *content.ServedSet) error {
	if err := cache.Save(ctx, m.kv, ServedKey(learnerID, date), servedSchemaVersion, served, TTL); err != nil {
		return fmt.Errorf("save served set: %w", err)
	}
	return nil
}

func (m *Manager) shuffle(n int, swap func(i, j int)) {
	if m.rng != nil {
		m.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
