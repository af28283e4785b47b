package curriculum

import (
	"strings"
	"testing"
)

func testGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(
		[]Module{
			{ID: "m1", Title: "One", Subject: "math", Grade: 7},
			{ID: "m2", Title: "Two", Subject: "math", Grade: 8},
			{ID: "s1", Title: "Science", Subject: "science", Grade: 7},
		},
		[]Atom{
			{ID: "c", ModuleID: "m1", Prerequisites: []string{"a"}},
			{ID: "a", ModuleID: "m1"},
			{ID: "b", ModuleID: "m2", Prerequisites: []string{"a"}, MasteryProfile: "slow"},
			{ID: "x", ModuleID: "s1"},
		},
		[]MasteryProfile{{ID: "slow", Step: 0.1, MasteredAt: 0.9}},
	)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestDefaultCurriculumIsValid(t *testing.T) {
	g := Default()
	if g.Len() == 0 {
		t.Fatal("default curriculum has no atoms")
	}
	if len(g.Modules()) != 3 {
		t.Errorf("got %d modules, want 3", len(g.Modules()))
	}
}

func TestAtomsKeepDeclarationOrder(t *testing.T) {
	g := testGraph(t)
	var ids []string
	for _, a := range g.Atoms() {
		ids = append(ids, a.ID)
	}
	if got := strings.Join(ids, ","); got != "c,a,b,x" {
		t.Errorf("atoms = %s, want c,a,b,x", got)
	}
}

func TestTopologicalOrder(t *testing.T) {
	g := testGraph(t)
	pos := make(map[string]int)
	for i, a := range g.TopologicalOrder() {
		pos[a.ID] = i
	}
	if pos["a"] > pos["c"] || pos["a"] > pos["b"] {
		t.Errorf("prerequisite a must precede c and b, got %v", pos)
	}
}

func TestAtomLookup(t *testing.T) {
	g := testGraph(t)
	if _, err := g.Atom("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Atom("nope"); err == nil {
		t.Fatal("expected error for unknown atom")
	}
	if !g.HasModule("m2") || g.HasModule("m9") {
		t.Error("HasModule mismatch")
	}
}

func TestProfileFallsBackToDefault(t *testing.T) {
	g := testGraph(t)
	if p := g.Profile("b"); p.ID != "slow" {
		t.Errorf("profile(b) = %q, want slow", p.ID)
	}
	if p := g.Profile("a"); p.ID != DefaultProfileID {
		t.Errorf("profile(a) = %q, want %q", p.ID, DefaultProfileID)
	}
	if p := g.Profile("missing"); p.ID != DefaultProfileID {
		t.Errorf("profile(missing) = %q, want %q", p.ID, DefaultProfileID)
	}
}

func TestForSubjectDropsForeignPrerequisites(t *testing.T) {
	g := testGraph(t)

	sub := g.ForSubject("math", 8)
	if sub.Len() != 1 {
		t.Fatalf("got %d atoms, want 1", sub.Len())
	}
	b, err := sub.Atom("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Prerequisites) != 0 {
		t.Errorf("prerequisites = %v, want none", b.Prerequisites)
	}
	if p := sub.Profile("b"); p.ID != "slow" {
		t.Errorf("subset lost profile, got %q", p.ID)
	}

	if all := g.ForSubject("math", 0); all.Len() != 3 {
		t.Errorf("grade 0 should match all math atoms, got %d", all.Len())
	}
}

func TestDependents(t *testing.T) {
	g := testGraph(t)
	deps := g.Dependents("a")
	if len(deps) != 2 {
		t.Fatalf("got %d dependents, want 2", len(deps))
	}
}

func TestEmptyGraph(t *testing.T) {
	g := Empty()
	if g.Len() != 0 || len(g.Atoms()) != 0 {
		t.Fatal("empty graph should have no atoms")
	}
}
