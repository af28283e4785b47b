package mastery

import (
	"time"

	"github.com/saideep-g/blue-ninja/internal/curriculum"
)

// State is an atom's position in the mastery lifecycle.
type State string

const (
	StateNew      State = "new"
	StateLearning State = "learning"
	StateMastered State = "mastered"
	StateRusty    State = "rusty"
)

// RustyAfter is how long a mastered atom can go unpracticed before it
// is reported as rusty.
const RustyAfter = 21 * 24 * time.Hour

// StateOf derives the lifecycle state of one atom.
func StateOf(r Record, atomID string, profile curriculum.MasteryProfile, now time.Time) State {
	seen, ok := r.Seen(atomID)
	if !ok {
		return StateNew
	}
	if r.Score(atomID) < profile.MasteredAt {
		return StateLearning
	}
	if now.Sub(seen) > RustyAfter {
		return StateRusty
	}
	return StateMastered
}

// DisplayName returns a human-readable label for the state.
func (s State) DisplayName() string {
	switch s {
	case StateNew:
		return "New"
	case StateLearning:
		return "Learning"
	case StateMastered:
		return "Mastered"
	case StateRusty:
		return "Rusty"
	default:
		return string(s)
	}
}
