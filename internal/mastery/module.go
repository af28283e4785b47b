package mastery

import (
	"time"

	"github.com/saideep-g/blue-ninja/internal/curriculum"
)

// ModuleSummary aggregates a learner's mastery over one module.
type ModuleSummary struct {
	ModuleID string        `json:"module_id"`
	Title    string        `json:"title"`
	Atoms    int           `json:"atoms"`
	ByState  map[State]int `json:"by_state"`
	Average  float64       `json:"average"`
	Weighted float64       `json:"weighted"`
}

// Summarize computes a summary per module in curriculum order. Each atom
// is weighted by its prerequisite depth: roots are tier 1, atoms one
// step deep tier 2, anything deeper tier 3.
func Summarize(g *curriculum.Graph, r Record, now time.Time) []ModuleSummary {
	depth := prerequisiteDepth(g)

	var out []ModuleSummary
	for _, m := range g.Modules() {
		atoms := g.ModuleAtoms(m.ID)
		s := ModuleSummary{
			ModuleID: m.ID,
			Title:    m.Title,
			Atoms:    len(atoms),
			ByState:  make(map[State]int),
		}
		facts := make([]Fact, 0, len(atoms))
		var total float64
		for _, a := range atoms {
			score := r.Score(a.ID)
			total += score
			s.ByState[StateOf(r, a.ID, g.Profile(a.ID), now)]++

			tier := Tier(depth[a.ID] + 1)
			if tier > TierHard {
				tier = TierHard
			}
			facts = append(facts, Fact{ID: a.ID, Score: score, Tier: tier})
		}
		if len(atoms) > 0 {
			s.Average = total / float64(len(atoms))
		}
		s.Weighted = TableMastery(facts)
		out = append(out, s)
	}
	return out
}

// prerequisiteDepth returns the longest prerequisite chain below each atom.
func prerequisiteDepth(g *curriculum.Graph) map[string]int {
	depth := make(map[string]int, g.Len())
	for _, a := range g.TopologicalOrder() {
		d := 0
		for _, p := range a.Prerequisites {
			if depth[p]+1 > d {
				d = depth[p] + 1
			}
		}
		depth[a.ID] = d
	}
	return depth
}
