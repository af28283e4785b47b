package curriculum

// Atom is the smallest addressable curriculum unit: one skill or fact.
type Atom struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	ModuleID       string   `yaml:"module" json:"module_id"`
	Prerequisites  []string `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Misconceptions []string `yaml:"misconceptions,omitempty" json:"misconceptions,omitempty"`
	MasteryProfile string   `yaml:"mastery_profile,omitempty" json:"mastery_profile,omitempty"`
}

// HasMisconceptions reports whether the atom carries any misconception tags.
func (a Atom) HasMisconceptions() bool {
	return len(a.Misconceptions) > 0
}

// Module groups atoms under a subject and grade.
type Module struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Subject string `yaml:"subject" json:"subject"`
	Grade   int    `yaml:"grade" json:"grade"`
}

// MasteryProfile tunes how fast an atom's mastery score moves.
type MasteryProfile struct {
	ID string `yaml:"id" json:"id"`

	// Step is the fraction of the remaining distance moved per answer.
	// A correct answer moves the score toward 1, a wrong one toward 0.
	Step float64 `yaml:"step" json:"step"`

	// MasteredAt is the score at which the atom counts as mastered.
	MasteredAt float64 `yaml:"mastered_at" json:"mastered_at"`
}

// DefaultProfileID names the profile used when an atom declares none.
const DefaultProfileID = "standard"

// DefaultProfile returns the profile applied to atoms without one.
func DefaultProfile() MasteryProfile {
	return MasteryProfile{ID: DefaultProfileID, Step: 0.2, MasteredAt: 0.8}
}
