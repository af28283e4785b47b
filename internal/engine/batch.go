package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/mastery"
	"github.com/saideep-g/blue-ninja/internal/mission"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/store"
)

// Overrides adjust one batch generation. Unknown entries are dropped
// with a warning; a list left empty after filtering is ignored.
type Overrides struct {
	// Templates replaces every phase's template pool.
	Templates []string `json:"templates,omitempty"`

	// Modules restricts planning to these curriculum modules.
	Modules []string `json:"modules,omitempty"`

	// Regenerate discards an existing batch for the date.
	Regenerate bool `json:"regenerate,omitempty"`
}

// AnswerResult is the outcome of one submitted answer.
type AnswerResult struct {
	Correct       bool             `json:"correct"`
	Misconception string           `json:"misconception,omitempty"`
	MasteryBefore float64          `json:"mastery_before"`
	MasteryAfter  float64          `json:"mastery_after"`
	Mission       mission.Mission  `json:"mission"`
	Badges        []progress.Badge `json:"badges,omitempty"`
}

// GenerateDailyBatch returns the learner's batch for date, building it on
// first request. A zero date means today. Content shortfalls truncate or
// omit missions instead of failing; learner store failures are returned
// as a *StoreError and nothing is cached.
func (e *Engine) GenerateDailyBatch(ctx context.Context, learnerID string, date time.Time, ov *Overrides) (_ *mission.DailyBatch, err error) {
	if date.IsZero() {
		date = e.Today()
	}
	ctx, span := e.startSpan(ctx, "GenerateDailyBatch",
		attribute.String("learner.id", learnerID),
		attribute.String("date", progress.DateKey(date)))
	defer func() { endSpan(span, err) }()

	unlock := e.lock(learnerID)
	defer unlock()

	st, err := e.loadLearner(ctx, "generate daily batch", learnerID)
	if err != nil {
		return nil, err
	}

	graph, templates := e.applyOverrides(ov)

	served, err := e.sessions.LoadServed(ctx, learnerID, date)
	if err != nil {
		return nil, err
	}

	batch, created, err := e.builder.BuildDailyBatch(ctx, mission.Request{
		LearnerID:  learnerID,
		Date:       date,
		Curriculum: graph,
		Mastery:    st.Mastery,
		Pool:       e.poolFor(graph),
		Served:     served,
		Templates:  templates,
		Regenerate: ov != nil && ov.Regenerate,
		Now:        e.now(),
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return batch, nil
	}

	if len(batch.Missions) == 0 && graph.Len() > 0 {
		e.logger.Warn("daily batch has no missions",
			zap.String("learner", learnerID),
			zap.Error(ErrContentUnavailable))
	}
	if err := e.sessions.SaveServed(ctx, learnerID, date, served); err != nil {
		// Without its served ids the batch would let sessions repeat its content.
		if derr := e.missions.Delete(ctx, learnerID, date); derr != nil {
			e.logger.Error("failed to roll back batch",
				zap.String("learner", learnerID),
				zap.String("date", progress.DateKey(date)),
				zap.Error(derr))
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("missions", len(batch.Missions)))
	return batch, nil
}

// Batch returns the stored batch for a learner and date without building one.
func (e *Engine) Batch(ctx context.Context, learnerID string, date time.Time) (*mission.DailyBatch, error) {
	if date.IsZero() {
		date = e.Today()
	}
	return e.missions.LoadBatch(ctx, learnerID, date)
}

// applyOverrides returns the curriculum and template pool for one batch.
func (e *Engine) applyOverrides(ov *Overrides) (*curriculum.Graph, []content.Template) {
	graph := e.graph
	if ov == nil {
		return graph, nil
	}

	var modules []string
	for _, id := range ov.Modules {
		if !e.graph.HasModule(id) {
			e.logger.Warn("ignoring override", zap.String("module", id), zap.Error(ErrInvalidOverride))
			continue
		}
		modules = append(modules, id)
	}
	if len(modules) > 0 {
		graph = e.graph.Subset(modules)
	}

	var templates []content.Template
	for _, name := range ov.Templates {
		t := content.Template(name)
		if !content.IsAllowed(t) {
			e.logger.Warn("ignoring override", zap.String("template", name), zap.Error(ErrInvalidOverride))
			continue
		}
		templates = append(templates, t)
	}
	return graph, templates
}

// poolFor fetches content for every (subject, grade) the curriculum covers.
func (e *Engine) poolFor(g *curriculum.Graph) mission.PoolFunc {
	return func(ctx context.Context) []content.Item {
		type key struct {
			subject string
			grade   int
		}
		seen := make(map[key]bool)
		var pool []content.Item
		for _, m := range g.Modules() {
			k := key{m.Subject, m.Grade}
			if seen[k] {
				continue
			}
			seen[k] = true
			pool = append(pool, e.fetcher.FetchPool(ctx, m.Subject, m.Grade)...)
		}
		return pool
	}
}

// SubmitAnswer grades an answer to one question of a mission, updates the
// learner's mastery and, when the mission completes, the streak. The
// learner record is written before the batch, so a store failure leaves
// the cached mission as it was.
func (e *Engine) SubmitAnswer(ctx context.Context, missionID, questionID, answer string) (_ *AnswerResult, err error) {
	ctx, span := e.startSpan(ctx, "SubmitAnswer",
		attribute.String("mission.id", missionID),
		attribute.String("question.id", questionID))
	defer func() { endSpan(span, err) }()

	found, err := e.missions.FindByMission(ctx, missionID)
	if cache.IsMiss(err) {
		return nil, fmt.Errorf("%s: %w", missionID, ErrMissionNotFound)
	}
	if err != nil {
		return nil, err
	}

	learnerID := found.LearnerID
	unlock := e.lock(learnerID)
	defer unlock()

	// Re-read under the lock; another answer may have landed.
	batch, err := e.missions.LoadBatch(ctx, learnerID, found.Date)
	if cache.IsMiss(err) {
		return nil, fmt.Errorf("%s: %w", missionID, ErrMissionNotFound)
	}
	if err != nil {
		return nil, err
	}
	m, ok := batch.Mission(missionID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", missionID, ErrMissionNotFound)
	}

	now := e.now()
	if m.Expire(now) {
		if err := e.missions.SaveBatch(ctx, batch); err != nil {
			return nil, err
		}
		e.missionEvent(ctx, learnerID, m, "expired")
		return nil, fmt.Errorf("%s expired: %w", missionID, mission.ErrMissionClosed)
	}

	q, ok := m.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", questionID, missionID, mission.ErrQuestionNotFound)
	}
	correct, misconception := q.Item.Check(answer)

	wasAvailable := m.Status == mission.StatusAvailable
	finished, err := m.RecordAnswer(questionID, correct, now)
	if err != nil {
		return nil, err
	}

	st, err := e.loadLearner(ctx, "submit answer", learnerID)
	if err != nil {
		return nil, err
	}
	outcome := mastery.ApplyAnswer(&st.Mastery, q.AtomID, correct, misconception, e.graph.Profile(q.AtomID), now)
	patch := atomPatch(st.Mastery, q.AtomID)

	var badges []progress.Badge
	if finished && m.Status == mission.StatusCompleted {
		badges = e.progress.RecordMissionCompletion(ctx, learnerID, &st.Streak, now, m.Points)
		if batch.AllCompleted() {
			badges = append(badges, e.progress.RecordPerfectDay(ctx, learnerID, &st.Streak, now)...)
		}
		patch[fieldStreak] = st.Streak
	}

	if err := e.putLearner(ctx, "submit answer", learnerID, patch); err != nil {
		return nil, err
	}
	if err := e.missions.SaveBatch(ctx, batch); err != nil {
		return nil, err
	}

	e.answerEvent(ctx, learnerID, m.ID, q, correct, misconception, outcome)
	if wasAvailable {
		e.missionEvent(ctx, learnerID, m, "started")
	}
	if finished {
		action := "failed"
		if m.Status == mission.StatusCompleted {
			action = "completed"
		}
		e.missionEvent(ctx, learnerID, m, action)
	}

	span.SetAttributes(attribute.Bool("correct", correct), attribute.String("mission.status", string(m.Status)))
	return &AnswerResult{
		Correct:       correct,
		Misconception: misconception,
		MasteryBefore: outcome.Before,
		MasteryAfter:  outcome.After,
		Mission:       *m,
		Badges:        badges,
	}, nil
}

// ExpireMissions moves every overdue open mission in every live batch to
// EXPIRED and returns how many changed.
func (e *Engine) ExpireMissions(ctx context.Context) (_ int, err error) {
	ctx, span := e.startSpan(ctx, "ExpireMissions")
	defer func() { endSpan(span, err) }()

	batches, err := e.missions.Batches(ctx)
	if err != nil {
		return 0, err
	}

	now := e.now()
	total := 0
	for _, b := range batches {
		n, err := e.expireBatch(ctx, b.LearnerID, b.Date, now)
		if err != nil {
			return total, err
		}
		total += n
	}
	if total > 0 {
		e.logger.Info("missions expired", zap.Int("count", total))
	}
	span.SetAttributes(attribute.Int("expired", total))
	return total, nil
}

func (e *Engine) expireBatch(ctx context.Context, learnerID string, date, now time.Time) (int, error) {
	unlock := e.lock(learnerID)
	defer unlock()

	b, err := e.missions.LoadBatch(ctx, learnerID, date)
	if cache.IsMiss(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	changed := b.Expire(now)
	if len(changed) == 0 {
		return 0, nil
	}
	if err := e.missions.SaveBatch(ctx, b); err != nil {
		return 0, err
	}
	for _, m := range changed {
		e.missionEvent(ctx, learnerID, m, "expired")
	}
	return len(changed), nil
}

func (e *Engine) answerEvent(ctx context.Context, learnerID, missionID string, q content.HydratedQuestion, correct bool, misconception string, out mastery.Outcome) {
	if e.events == nil {
		return
	}
	err := e.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		LearnerID:     learnerID,
		MissionID:     missionID,
		QuestionID:    q.ID(),
		AtomID:        q.AtomID,
		Correct:       correct,
		Misconception: misconception,
		MasteryBefore: out.Before,
		MasteryAfter:  out.After,
	})
	if err != nil {
		e.logger.Warn("failed to record answer event", zap.String("learner", learnerID), zap.Error(err))
	}
}

func (e *Engine) missionEvent(ctx context.Context, learnerID string, m *mission.Mission, action string) {
	if e.events == nil {
		return
	}
	err := e.events.AppendMissionEvent(ctx, store.MissionEventData{
		LearnerID: learnerID,
		MissionID: m.ID,
		Phase:     string(m.Phase),
		Action:    action,
		Score:     m.Score(),
		Points:    m.Points,
	})
	if err != nil {
		e.logger.Warn("failed to record mission event",
			zap.String("learner", learnerID),
			zap.String("mission", m.ID),
			zap.Error(err))
	}
}
