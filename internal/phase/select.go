package phase

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/mastery"
)

const (
	// CandidateCap bounds every strategy's result before slot capping.
	CandidateCap = 5

	// ReviewAfter is how long an atom must go unseen before warm-up
	// brings it back.
	ReviewAfter = 24 * time.Hour

	DiagnosisBelow  = 0.7
	WeakBelow       = 0.6
	StrongAtLeast   = 0.7
	AdvancedAtLeast = 0.6
	TransferAtLeast = 0.7

	GuidedWeak   = 3
	GuidedStrong = 2
)

// Input is everything a strategy reads.
type Input struct {
	Atoms   []curriculum.Atom
	Mastery mastery.Record
	Now     time.Time

	// Rand shuffles transfer_learning candidates; nil uses the global source.
	Rand *rand.Rand
}

// SelectCandidates returns ranked candidate atoms for a phase. The result
// holds at most p.Slots distinct atoms. A strategy with no candidates
// falls back to the first CandidateCap atoms of the curriculum, so only
// an empty curriculum yields an empty result.
func SelectCandidates(p Phase, in Input) []curriculum.Atom {
	var picked []curriculum.Atom
	switch p.Strategy {
	case StrategySpacedReview:
		picked = spacedReview(in)
	case StrategyMisconceptionDiagnosis:
		picked = misconceptionDiagnosis(in)
	case StrategyGuidedPractice:
		picked = guidedPractice(in)
	case StrategyAdvancedReasoning:
		picked = advancedReasoning(in)
	case StrategyTransferLearning:
		picked = transferLearning(in)
	}

	if len(picked) == 0 {
		picked = head(in.Atoms, CandidateCap)
	}
	return head(distinct(picked), p.Slots)
}

func spacedReview(in Input) []curriculum.Atom {
	var out []curriculum.Atom
	for _, a := range in.Atoms {
		seen, ok := in.Mastery.Seen(a.ID)
		if !ok || in.Now.Sub(seen) > ReviewAfter {
			out = append(out, a)
		}
	}
	return head(out, CandidateCap)
}

// misconceptionDiagnosis puts atoms with recorded hurdles ahead of atoms
// whose misconceptions have not been observed yet.
func misconceptionDiagnosis(in Input) []curriculum.Atom {
	var hurdled, rest []curriculum.Atom
	for _, a := range in.Atoms {
		if !a.HasMisconceptions() || in.Mastery.Score(a.ID) >= DiagnosisBelow {
			continue
		}
		if in.Mastery.HurdleCount(a.ID) > 0 {
			hurdled = append(hurdled, a)
		} else {
			rest = append(rest, a)
		}
	}
	return head(append(hurdled, rest...), CandidateCap)
}

func guidedPractice(in Input) []curriculum.Atom {
	var weak, strong []curriculum.Atom
	for _, a := range in.Atoms {
		switch s := in.Mastery.Score(a.ID); {
		case s < WeakBelow:
			weak = append(weak, a)
		case s >= StrongAtLeast:
			strong = append(strong, a)
		}
	}
	return append(head(weak, GuidedWeak), head(strong, GuidedStrong)...)
}

func advancedReasoning(in Input) []curriculum.Atom {
	var out []curriculum.Atom
	for _, a := range in.Atoms {
		if in.Mastery.Score(a.ID) >= AdvancedAtLeast {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b curriculum.Atom) int {
		return cmp.Compare(in.Mastery.Score(b.ID), in.Mastery.Score(a.ID))
	})
	return head(out, CandidateCap)
}

func transferLearning(in Input) []curriculum.Atom {
	var out []curriculum.Atom
	for _, a := range in.Atoms {
		if in.Mastery.Score(a.ID) >= TransferAtLeast {
			out = append(out, a)
		}
	}
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if in.Rand != nil {
		in.Rand.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	return head(out, CandidateCap)
}

func head(atoms []curriculum.Atom, n int) []curriculum.Atom {
	if n < 0 {
		n = 0
	}
	if len(atoms) > n {
		atoms = atoms[:n]
	}
	return slices.Clone(atoms)
}

func distinct(atoms []curriculum.Atom) []curriculum.Atom {
	seen := make(map[string]bool, len(atoms))
	out := atoms[:0:0]
	for _, a := range atoms {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}
