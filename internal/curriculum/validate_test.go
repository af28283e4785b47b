package curriculum

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	modules := []Module{{ID: "m", Subject: "math", Grade: 7}}

	tests := []struct {
		name     string
		atoms    []Atom
		profiles []MasteryProfile
		wantErr  string
	}{
		{
			name:  "valid",
			atoms: []Atom{{ID: "a", ModuleID: "m"}, {ID: "b", ModuleID: "m", Prerequisites: []string{"a"}}},
		},
		{
			name:    "cycle",
			atoms:   []Atom{{ID: "a", ModuleID: "m", Prerequisites: []string{"b"}}, {ID: "b", ModuleID: "m", Prerequisites: []string{"a"}}},
			wantErr: "cycle",
		},
		{
			name:    "dangling prerequisite",
			atoms:   []Atom{{ID: "a", ModuleID: "m", Prerequisites: []string{"ghost"}}},
			wantErr: "ghost",
		},
		{
			name:    "duplicate atom",
			atoms:   []Atom{{ID: "a", ModuleID: "m"}, {ID: "a", ModuleID: "m"}},
			wantErr: "duplicate",
		},
		{
			name:    "unknown module",
			atoms:   []Atom{{ID: "a", ModuleID: "nowhere"}},
			wantErr: "nowhere",
		},
		{
			name:    "unknown profile",
			atoms:   []Atom{{ID: "a", ModuleID: "m", MasteryProfile: "turbo"}},
			wantErr: "turbo",
		},
		{
			name:     "bad profile step",
			atoms:    []Atom{{ID: "a", ModuleID: "m"}},
			profiles: []MasteryProfile{{ID: "p", Step: 0, MasteredAt: 0.8}},
			wantErr:  "step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(modules, tt.atoms, tt.profiles)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	if _, err := Parse([]byte("atoms: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
