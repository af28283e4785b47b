package content

import (
	"github.com/saideep-g/blue-ninja/internal/mastery"
)

// Skeleton is a planned question slot before content is attached.
type Skeleton struct {
	AtomID        string       `json:"atom_id"`
	Template      Template     `json:"template"`
	Phase         string       `json:"phase"`
	Slot          int          `json:"slot"`
	Tier          mastery.Tier `json:"tier"`
	MasteryBefore float64      `json:"mastery_before"`

	// Content is set when the plan was authored with its question attached.
	Content *Item `json:"content,omitempty"`
}

// HydratedQuestion is a skeleton paired with authored content.
type HydratedQuestion struct {
	Skeleton
	Item Item `json:"item"`

	// IsFallback is set when no item for the skeleton's atom was left and
	// an item of another atom took its place.
	IsFallback bool `json:"is_fallback"`
}

// ID is the id of the item behind the question.
func (q HydratedQuestion) ID() string { return q.Item.ID }

// Hydrator attaches pool items to skeletons.
type Hydrator struct {
	allowed map[Template]bool
}

// NewHydrator creates a hydrator serving only the given templates, or
// AllowedTemplates when none are given. Templates off the allow-list are
// ignored.
func NewHydrator(templates ...Template) *Hydrator {
	if len(templates) == 0 {
		templates = AllowedTemplates()
	}
	h := &Hydrator{allowed: make(map[Template]bool, len(templates))}
	for _, t := range templates {
		if IsAllowed(t) {
			h.allowed[t] = true
		}
	}
	return h
}

// Allows reports whether items of template t may be served.
func (h *Hydrator) Allows(t Template) bool { return h.allowed[t] }

// Candidates filters pool to servable items not yet in served, without
// repeating ids.
func (h *Hydrator) Candidates(pool []Item, served *ServedSet) []Item {
	seen := make(map[string]bool, len(pool))
	out := make([]Item, 0, len(pool))
	for _, it := range pool {
		if !h.allowed[it.Template] || served.Has(it.ID) || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// Hydrate pairs each skeleton with an unused pool item, preferring items
// of the skeleton's own atom. Skeletons that already carry content pass
// through. Skeletons with nothing left to match are dropped, so the result
// may be shorter than skeletons. Every returned item id is added to served,
// and ids already in served are never returned.
func (h *Hydrator) Hydrate(skeletons []Skeleton, pool []Item, served *ServedSet) []HydratedQuestion {
	if served == nil {
		served = NewServedSet()
	}

	candidates := h.Candidates(pool, served)
	used := make([]bool, len(candidates))
	byAtom := make(map[string][]int)
	for i, it := range candidates {
		byAtom[it.AtomID] = append(byAtom[it.AtomID], i)
	}
	next := 0

	take := func(i int) Item {
		used[i] = true
		return candidates[i]
	}
	strict := func(atomID string) (Item, bool) {
		idx := byAtom[atomID]
		for len(idx) > 0 {
			i := idx[0]
			idx = idx[1:]
			byAtom[atomID] = idx
			if !used[i] && !served.Has(candidates[i].ID) {
				return take(i), true
			}
		}
		return Item{}, false
	}
	fallback := func() (Item, bool) {
		for ; next < len(candidates); next++ {
			if !used[next] && !served.Has(candidates[next].ID) {
				return take(next), true
			}
		}
		return Item{}, false
	}

	out := make([]HydratedQuestion, 0, len(skeletons))
	for _, sk := range skeletons {
		if sk.Content != nil {
			// Pre-authored content still honors the served set.
			if !served.Add(sk.Content.ID) {
				continue
			}
			item := *sk.Content
			sk.Content = nil
			out = append(out, HydratedQuestion{Skeleton: sk, Item: item})
			continue
		}

		item, ok := strict(sk.AtomID)
		isFallback := false
		if !ok {
			item, ok = fallback()
			isFallback = true
		}
		if !ok {
			continue
		}
		served.Add(item.ID)
		out = append(out, HydratedQuestion{Skeleton: sk, Item: item, IsFallback: isFallback})
	}
	return out
}
