package curriculum

import (
	"fmt"
	"slices"
	"sort"
)

// Graph is an immutable, indexed view of a loaded curriculum.
// Atom order is declaration order; it is the order phase strategies
// walk and the order fallbacks take from.
type Graph struct {
	atoms      []Atom
	modules    []Module
	profiles   map[string]MasteryProfile
	byID       map[string]*Atom
	moduleByID map[string]*Module
	byModule   map[string][]Atom
	dependents map[string][]string
	topoOrder  []Atom
}

// New validates the curriculum and builds its indices.
func New(modules []Module, atoms []Atom, profiles []MasteryProfile) (*Graph, error) {
	if err := validate(modules, atoms, profiles); err != nil {
		return nil, err
	}
	return buildGraph(modules, atoms, profiles), nil
}

// Empty returns a graph with no atoms.
func Empty() *Graph {
	return buildGraph(nil, nil, nil)
}

func buildGraph(modules []Module, atoms []Atom, profiles []MasteryProfile) *Graph {
	g := &Graph{
		atoms:      slices.Clone(atoms),
		modules:    slices.Clone(modules),
		profiles:   make(map[string]MasteryProfile, len(profiles)+1),
		byID:       make(map[string]*Atom, len(atoms)),
		moduleByID: make(map[string]*Module, len(modules)),
		byModule:   make(map[string][]Atom),
		dependents: make(map[string][]string),
	}

	g.profiles[DefaultProfileID] = DefaultProfile()
	for _, p := range profiles {
		g.profiles[p.ID] = p
	}

	for i := range g.atoms {
		a := &g.atoms[i]
		g.byID[a.ID] = a
		g.byModule[a.ModuleID] = append(g.byModule[a.ModuleID], *a)
		for _, prereq := range a.Prerequisites {
			g.dependents[prereq] = append(g.dependents[prereq], a.ID)
		}
	}
	for i := range g.modules {
		g.moduleByID[g.modules[i].ID] = &g.modules[i]
	}

	// Kahn's algorithm with a sorted frontier for deterministic output.
	inDegree := make(map[string]int, len(g.atoms))
	for _, a := range g.atoms {
		inDegree[a.ID] = len(a.Prerequisites)
	}
	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		g.topoOrder = append(g.topoOrder, *g.byID[id])

		deps := slices.Clone(g.dependents[id])
		sort.Strings(deps)
		for _, dep := range deps {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	return g
}

// Len returns the number of atoms.
func (g *Graph) Len() int { return len(g.atoms) }

// Atoms returns every atom in declaration order.
func (g *Graph) Atoms() []Atom {
	return slices.Clone(g.atoms)
}

// Modules returns every module in declaration order.
func (g *Graph) Modules() []Module {
	return slices.Clone(g.modules)
}

// Atom returns an atom by ID.
func (g *Graph) Atom(id string) (Atom, error) {
	a, ok := g.byID[id]
	if !ok {
		return Atom{}, fmt.Errorf("atom not found: %q", id)
	}
	return *a, nil
}

// HasAtom reports whether id names an atom.
func (g *Graph) HasAtom(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Module returns a module by ID.
func (g *Graph) Module(id string) (Module, error) {
	m, ok := g.moduleByID[id]
	if !ok {
		return Module{}, fmt.Errorf("module not found: %q", id)
	}
	return *m, nil
}

// HasModule reports whether id names a module.
func (g *Graph) HasModule(id string) bool {
	_, ok := g.moduleByID[id]
	return ok
}

// ModuleAtoms returns the atoms of a module in declaration order.
func (g *Graph) ModuleAtoms(moduleID string) []Atom {
	return slices.Clone(g.byModule[moduleID])
}

// Profile returns the mastery profile for an atom, falling back to the
// default profile when the atom names none or an unknown one.
func (g *Graph) Profile(atomID string) MasteryProfile {
	a, ok := g.byID[atomID]
	if !ok || a.MasteryProfile == "" {
		return g.profiles[DefaultProfileID]
	}
	if p, ok := g.profiles[a.MasteryProfile]; ok {
		return p
	}
	return g.profiles[DefaultProfileID]
}

// Dependents returns the atoms that list id as a prerequisite.
func (g *Graph) Dependents(id string) []Atom {
	out := make([]Atom, 0, len(g.dependents[id]))
	for _, dep := range g.dependents[id] {
		if a, ok := g.byID[dep]; ok {
			out = append(out, *a)
		}
	}
	return out
}

// TopologicalOrder returns atoms so that prerequisites come first.
func (g *Graph) TopologicalOrder() []Atom {
	return slices.Clone(g.topoOrder)
}

// Subset returns a graph restricted to the given modules, keeping
// declaration order. Prerequisites pointing outside the subset are dropped.
func (g *Graph) Subset(moduleIDs []string) *Graph {
	keep := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		keep[id] = true
	}

	var modules []Module
	for _, m := range g.modules {
		if keep[m.ID] {
			modules = append(modules, m)
		}
	}

	inSubset := make(map[string]bool)
	for _, a := range g.atoms {
		if keep[a.ModuleID] {
			inSubset[a.ID] = true
		}
	}

	var atoms []Atom
	for _, a := range g.atoms {
		if !inSubset[a.ID] {
			continue
		}
		var prereqs []string
		for _, p := range a.Prerequisites {
			if inSubset[p] {
				prereqs = append(prereqs, p)
			}
		}
		a.Prerequisites = prereqs
		atoms = append(atoms, a)
	}

	profiles := make([]MasteryProfile, 0, len(g.profiles))
	for _, p := range g.profiles {
		profiles = append(profiles, p)
	}
	return buildGraph(modules, atoms, profiles)
}

// ForSubject returns the subset of modules for a subject. A grade of 0
// matches every grade.
func (g *Graph) ForSubject(subject string, grade int) *Graph {
	var ids []string
	for _, m := range g.modules {
		if m.Subject == subject && (grade == 0 || m.Grade == grade) {
			ids = append(ids, m.ID)
		}
	}
	return g.Subset(ids)
}
