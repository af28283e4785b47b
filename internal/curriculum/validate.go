package curriculum

import (
	"fmt"
	"strings"
)

// validate performs all structural checks on a curriculum.
// Returns a combined error describing every problem found, or nil.
func validate(modules []Module, atoms []Atom, profiles []MasteryProfile) error {
	var errs []string

	moduleSet := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.ID == "" {
			errs = append(errs, "module with empty ID")
			continue
		}
		if moduleSet[m.ID] {
			errs = append(errs, fmt.Sprintf("duplicate module ID: %q", m.ID))
		}
		moduleSet[m.ID] = true
	}

	profileSet := map[string]bool{DefaultProfileID: true}
	for _, p := range profiles {
		profileSet[p.ID] = true
		if p.Step <= 0 || p.Step > 1 {
			errs = append(errs, fmt.Sprintf("profile %q: step must be in (0, 1], got %f", p.ID, p.Step))
		}
		if p.MasteredAt <= 0 || p.MasteredAt > 1 {
			errs = append(errs, fmt.Sprintf("profile %q: mastered_at must be in (0, 1], got %f", p.ID, p.MasteredAt))
		}
	}

	idSet := make(map[string]bool, len(atoms))
	for _, a := range atoms {
		if a.ID == "" {
			errs = append(errs, "atom with empty ID")
			continue
		}
		if idSet[a.ID] {
			errs = append(errs, fmt.Sprintf("duplicate atom ID: %q", a.ID))
		}
		idSet[a.ID] = true
		if !moduleSet[a.ModuleID] {
			errs = append(errs, fmt.Sprintf("atom %q references nonexistent module %q", a.ID, a.ModuleID))
		}
		if a.MasteryProfile != "" && !profileSet[a.MasteryProfile] {
			errs = append(errs, fmt.Sprintf("atom %q references nonexistent mastery profile %q", a.ID, a.MasteryProfile))
		}
	}

	for _, a := range atoms {
		for _, prereq := range a.Prerequisites {
			if !idSet[prereq] {
				errs = append(errs, fmt.Sprintf("atom %q references nonexistent prerequisite %q", a.ID, prereq))
			}
		}
	}

	// Cycle check (Kahn's algorithm).
	inDegree := make(map[string]int, len(atoms))
	adj := make(map[string][]string)
	for _, a := range atoms {
		inDegree[a.ID] = 0
	}
	for _, a := range atoms {
		for _, prereq := range a.Prerequisites {
			if !idSet[prereq] {
				continue
			}
			inDegree[a.ID]++
			adj[prereq] = append(adj[prereq], a.ID)
		}
	}
	var queue []string
	for _, a := range atoms {
		if inDegree[a.ID] == 0 {
			queue = append(queue, a.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adj[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited < len(idSet) {
		var cycle []string
		seen := make(map[string]bool)
		for _, a := range atoms {
			if inDegree[a.ID] > 0 && !seen[a.ID] {
				cycle = append(cycle, a.ID)
				seen[a.ID] = true
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving atoms: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
