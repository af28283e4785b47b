package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/saideep-g/blue-ninja/internal/mastery"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/store"
)

// GetStreak returns the learner's streak. A learner who never finished a
// mission gets the zero streak.
func (e *Engine) GetStreak(ctx context.Context, learnerID string) (_ progress.Streak, err error) {
	ctx, span := e.startSpan(ctx, "GetStreak", attribute.String("learner.id", learnerID))
	defer func() { endSpan(span, err) }()

	st, err := e.loadLearner(ctx, "get streak", learnerID)
	if err != nil {
		return progress.Streak{}, err
	}
	return st.Streak, nil
}

// ModuleProgress summarizes the learner's mastery per curriculum module.
func (e *Engine) ModuleProgress(ctx context.Context, learnerID string) (_ []mastery.ModuleSummary, err error) {
	ctx, span := e.startSpan(ctx, "ModuleProgress", attribute.String("learner.id", learnerID))
	defer func() { endSpan(span, err) }()

	st, err := e.loadLearner(ctx, "module progress", learnerID)
	if err != nil {
		return nil, err
	}
	return mastery.Summarize(e.graph, st.Mastery, e.now()), nil
}

// Mastery returns the learner's raw mastery record.
func (e *Engine) Mastery(ctx context.Context, learnerID string) (mastery.Record, error) {
	st, err := e.loadLearner(ctx, "mastery", learnerID)
	if err != nil {
		return mastery.Record{}, err
	}
	return st.Mastery, nil
}

// SetProfile stores the learner's profile.
func (e *Engine) SetProfile(ctx context.Context, learnerID string, p Profile) error {
	unlock := e.lock(learnerID)
	defer unlock()
	return e.putLearner(ctx, "set profile", learnerID, store.LearnerPatch{fieldProfile: p})
}

// SetMastery seeds mastery scores, for placement or imports. Only the
// named atoms are written and atoms outside the curriculum are skipped.
func (e *Engine) SetMastery(ctx context.Context, learnerID string, scores map[string]float64) (int, error) {
	unlock := e.lock(learnerID)
	defer unlock()

	rec := mastery.NewRecord()
	for atomID, score := range scores {
		if !e.graph.HasAtom(atomID) {
			continue
		}
		rec.Scores[atomID] = min(max(score, 0), 1)
	}
	if len(rec.Scores) == 0 {
		return 0, nil
	}
	if err := e.putLearner(ctx, "set mastery", learnerID, masteryPatch(rec)); err != nil {
		return 0, err
	}
	return len(rec.Scores), nil
}

// History returns the learner's recent answer and mission events.
func (e *Engine) History(ctx context.Context, learnerID string, limit int) ([]store.AnswerEventRecord, []store.MissionEventRecord, error) {
	if e.events == nil {
		return nil, nil, nil
	}
	opts := store.QueryOpts{Limit: limit}
	answers, err := e.events.QueryAnswerEvents(ctx, learnerID, opts)
	if err != nil {
		return nil, nil, storeError("history", err)
	}
	missions, err := e.events.QueryMissionEvents(ctx, learnerID, opts)
	if err != nil {
		return nil, nil, storeError("history", err)
	}
	return answers, missions, nil
}
