package mastery

import (
	"maps"
	"time"
)

// Record is one learner's mastery across atoms: score per atom, hurdle
// counts per atom and misconception tag, and the last time each atom was
// practiced. The zero value is an empty record.
type Record struct {
	Scores   map[string]float64        `json:"scores,omitempty"`
	Hurdles  map[string]map[string]int `json:"hurdles,omitempty"`
	LastSeen map[string]time.Time      `json:"last_seen,omitempty"`
}

// NewRecord returns an empty record with initialized maps.
func NewRecord() Record {
	return Record{
		Scores:   make(map[string]float64),
		Hurdles:  make(map[string]map[string]int),
		LastSeen: make(map[string]time.Time),
	}
}

// Score returns the mastery score for an atom, 0 when never practiced.
func (r Record) Score(atomID string) float64 {
	return r.Scores[atomID]
}

// Seen returns when an atom was last practiced.
func (r Record) Seen(atomID string) (time.Time, bool) {
	t, ok := r.LastSeen[atomID]
	return t, ok
}

// HurdleCount returns the total hurdle count across an atom's misconceptions.
func (r Record) HurdleCount(atomID string) int {
	total := 0
	for _, n := range r.Hurdles[atomID] {
		total += n
	}
	return total
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := NewRecord()
	maps.Copy(out.Scores, r.Scores)
	maps.Copy(out.LastSeen, r.LastSeen)
	for atom, tags := range r.Hurdles {
		out.Hurdles[atom] = maps.Clone(tags)
	}
	return out
}
