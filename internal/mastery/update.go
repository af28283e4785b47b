package mastery

import (
	"time"

	"github.com/saideep-g/blue-ninja/internal/curriculum"
)

// Outcome is the result of applying one answer to a record.
type Outcome struct {
	AtomID        string
	Before        float64
	After         float64
	Misconception string
	HurdleCount   int
}

// ApplyAnswer moves an atom's score toward 1 on a correct answer and
// toward 0 on a wrong one by the profile's step, stamps last-seen, and
// increments the hurdle counter for the misconception the answer exposed.
// The record's maps are mutated in place; a zero Record is initialized.
func ApplyAnswer(r *Record, atomID string, correct bool, misconception string, profile curriculum.MasteryProfile, at time.Time) Outcome {
	if r.Scores == nil || r.Hurdles == nil || r.LastSeen == nil {
		fresh := r.Clone()
		*r = fresh
	}

	step := profile.Step
	if step <= 0 {
		step = curriculum.DefaultProfile().Step
	}

	before := clamp(r.Scores[atomID], 0, 1)
	after := before
	if correct {
		after = before + step*(1-before)
	} else {
		after = before - step*before
	}
	after = clamp(after, 0, 1)

	r.Scores[atomID] = after
	r.LastSeen[atomID] = at

	out := Outcome{AtomID: atomID, Before: before, After: after}
	if !correct && misconception != "" {
		tags := r.Hurdles[atomID]
		if tags == nil {
			tags = make(map[string]int)
			r.Hurdles[atomID] = tags
		}
		tags[misconception]++
		out.Misconception = misconception
		out.HurdleCount = tags[misconception]
	}
	return out
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
