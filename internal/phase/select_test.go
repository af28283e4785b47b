package phase

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/mastery"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func atoms(ids ...string) []curriculum.Atom {
	out := make([]curriculum.Atom, len(ids))
	for i, id := range ids {
		out[i] = curriculum.Atom{ID: id, Title: id}
	}
	return out
}

func ids(as []curriculum.Atom) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func withScores(scores map[string]float64) mastery.Record {
	r := mastery.NewRecord()
	for id, s := range scores {
		r.Scores[id] = s
		r.LastSeen[id] = now
	}
	return r
}

func mustPhase(t *testing.T, n Name) Phase {
	t.Helper()
	p, ok := ByName(n)
	require.True(t, ok, "phase %s", n)
	return p
}

func TestPhasesInOrder(t *testing.T) {
	var names []Name
	for _, p := range All() {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Templates)
	}
	assert.Equal(t, []Name{WarmUp, Diagnosis, GuidedPractice, Advanced, Reflection}, names)
	assert.Equal(t, 14, TotalSlots())
}

func TestSpacedReviewExcludesRecentlySeenAtoms(t *testing.T) {
	rec := mastery.NewRecord()
	rec.Scores["atom_42"] = 0.85
	rec.LastSeen["atom_42"] = now
	rec.LastSeen["old"] = now.Add(-49 * time.Hour)
	in := Input{Atoms: atoms("atom_42", "old", "never"), Mastery: rec, Now: now}

	warm := SelectCandidates(mustPhase(t, WarmUp), in)
	assert.Equal(t, []string{"old", "never"}, ids(warm))

	adv := SelectCandidates(mustPhase(t, Advanced), in)
	assert.Contains(t, ids(adv), "atom_42")
}

func TestSpacedReviewBoundary(t *testing.T) {
	rec := mastery.NewRecord()
	rec.LastSeen["exactly_a_day"] = now.Add(-ReviewAfter)
	rec.LastSeen["just_over"] = now.Add(-ReviewAfter - time.Minute)
	in := Input{Atoms: atoms("exactly_a_day", "just_over"), Mastery: rec, Now: now}

	got := spacedReview(in)
	assert.Equal(t, []string{"just_over"}, ids(got))
}

func TestMisconceptionDiagnosis(t *testing.T) {
	as := []curriculum.Atom{
		{ID: "no_tags"},
		{ID: "tagged_weak", Misconceptions: []string{"m1"}},
		{ID: "tagged_strong", Misconceptions: []string{"m2"}},
		{ID: "tagged_hurdled", Misconceptions: []string{"m3"}},
	}
	rec := withScores(map[string]float64{"no_tags": 0.1, "tagged_weak": 0.3, "tagged_strong": 0.75, "tagged_hurdled": 0.5})
	rec.Hurdles["tagged_hurdled"] = map[string]int{"m3": 2}

	got := misconceptionDiagnosis(Input{Atoms: as, Mastery: rec, Now: now})
	assert.Equal(t, []string{"tagged_hurdled", "tagged_weak"}, ids(got))
}

func TestGuidedPracticeSplit(t *testing.T) {
	scores := map[string]float64{
		"w1": 0.1, "w2": 0.2, "w3": 0.3, "w4": 0.4,
		"mid": 0.65,
		"s1": 0.7, "s2": 0.9, "s3": 0.95,
	}
	in := Input{Atoms: atoms("s1", "w1", "mid", "w2", "s2", "w3", "w4", "s3"), Mastery: withScores(scores), Now: now}

	got := SelectCandidates(mustPhase(t, GuidedPractice), in)
	assert.Equal(t, []string{"w1", "w2", "w3", "s1", "s2"}, ids(got))
}

func TestAdvancedReasoningSortsByMastery(t *testing.T) {
	scores := map[string]float64{"a": 0.6, "b": 0.95, "c": 0.59, "d": 0.8}
	in := Input{Atoms: atoms("a", "b", "c", "d"), Mastery: withScores(scores), Now: now}

	assert.Equal(t, []string{"b", "d", "a"}, ids(advancedReasoning(in)))
	assert.Equal(t, []string{"b", "d"}, ids(SelectCandidates(mustPhase(t, Advanced), in)))
}

func TestTransferLearningShufflesStrongAtoms(t *testing.T) {
	scores := map[string]float64{"a": 0.7, "b": 0.9, "c": 0.2, "d": 0.8, "e": 0.75, "f": 0.99, "g": 0.71}
	in := Input{Atoms: atoms("a", "b", "c", "d", "e", "f", "g"), Mastery: withScores(scores), Now: now,
		Rand: rand.New(rand.NewPCG(1, 2))}

	got := transferLearning(in)
	assert.Len(t, got, CandidateCap)
	for _, a := range got {
		assert.GreaterOrEqual(t, scores[a.ID], TransferAtLeast)
	}
}

func TestFallbackToFirstAtoms(t *testing.T) {
	// Nothing is weak enough for diagnosis and nothing has misconceptions.
	in := Input{Atoms: atoms("a", "b", "c", "d", "e", "f", "g"), Mastery: withScores(map[string]float64{"a": 0.9}), Now: now}

	got := SelectCandidates(mustPhase(t, Diagnosis), in)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestSelectCandidatesRespectsSlotsAndEmptyCurriculum(t *testing.T) {
	many := make([]string, 20)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	for _, p := range All() {
		got := SelectCandidates(p, Input{Atoms: atoms(many...), Mastery: mastery.NewRecord(), Now: now})
		assert.LessOrEqual(t, len(got), p.Slots, "phase %s", p.Name)
		assert.NotEmpty(t, got, "phase %s", p.Name)

		seen := map[string]bool{}
		for _, a := range got {
			assert.False(t, seen[a.ID], "phase %s repeats %s", p.Name, a.ID)
			seen[a.ID] = true
		}

		assert.NotPanics(t, func() {
			empty := SelectCandidates(p, Input{Mastery: mastery.Record{}, Now: now})
			assert.Empty(t, empty)
		})
	}
}
