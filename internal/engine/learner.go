package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saideep-g/blue-ninja/internal/mastery"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/store"
)

// Learner record fields. Per-atom fields are written independently so an
// answer touches only the atom it was about.
const (
	fieldMastery  = "mastery/"
	fieldHurdles  = "hurdles/"
	fieldLastSeen = "last_seen/"
	fieldStreak   = "streak"
	fieldProfile  = "profile"
)

// Profile is the learner's self-description.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Grade int    `json:"grade,omitempty"`
}

// learnerState is the decoded learner record.
type learnerState struct {
	Mastery mastery.Record
	Streak  progress.Streak
	Profile Profile
}

func decodeLearner(rec *store.LearnerRecord) (*learnerState, error) {
	st := &learnerState{Mastery: mastery.NewRecord()}

	for field := range rec.Fields {
		var err error
		switch {
		case strings.HasPrefix(field, fieldMastery):
			var score float64
			_, err = rec.Decode(field, &score)
			st.Mastery.Scores[strings.TrimPrefix(field, fieldMastery)] = score
		case strings.HasPrefix(field, fieldHurdles):
			var tags map[string]int
			_, err = rec.Decode(field, &tags)
			if len(tags) > 0 {
				st.Mastery.Hurdles[strings.TrimPrefix(field, fieldHurdles)] = tags
			}
		case strings.HasPrefix(field, fieldLastSeen):
			var at time.Time
			_, err = rec.Decode(field, &at)
			st.Mastery.LastSeen[strings.TrimPrefix(field, fieldLastSeen)] = at
		case field == fieldStreak:
			_, err = rec.Decode(field, &st.Streak)
		case field == fieldProfile:
			_, err = rec.Decode(field, &st.Profile)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
	}
	return st, nil
}

// atomPatch writes one atom's mastery, hurdles and last-seen.
func atomPatch(r mastery.Record, atomID string) store.LearnerPatch {
	patch := store.LearnerPatch{
		fieldMastery + atomID: r.Score(atomID),
	}
	if tags := r.Hurdles[atomID]; len(tags) > 0 {
		patch[fieldHurdles+atomID] = tags
	}
	if at, ok := r.Seen(atomID); ok {
		patch[fieldLastSeen+atomID] = at
	}
	return patch
}

// masteryPatch writes every atom in the record.
func masteryPatch(r mastery.Record) store.LearnerPatch {
	patch := store.LearnerPatch{}
	for atomID := range r.Scores {
		for k, v := range atomPatch(r, atomID) {
			patch[k] = v
		}
	}
	return patch
}

func (e *Engine) loadLearner(ctx context.Context, op, learnerID string) (*learnerState, error) {
	rec, err := e.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, storeError(op, err)
	}
	st, err := decodeLearner(rec)
	if err != nil {
		return nil, storeError(op, err)
	}
	return st, nil
}

func (e *Engine) putLearner(ctx context.Context, op, learnerID string, patch store.LearnerPatch) error {
	if err := e.learners.Put(ctx, learnerID, patch); err != nil {
		return storeError(op, err)
	}
	return nil
}

// grade returns the learner's grade or the configured default.
func (e *Engine) grade(st *learnerState) int {
	if st.Profile.Grade > 0 {
		return st.Profile.Grade
	}
	return e.defaultGrade
}
