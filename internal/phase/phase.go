// Package phase defines the five pedagogical phases of a practice day and
// the strategies that pick candidate atoms for each.
package phase

import "github.com/saideep-g/blue-ninja/internal/content"

// Name identifies a phase.
type Name string

const (
	WarmUp         Name = "warm_up"
	Diagnosis      Name = "diagnosis"
	GuidedPractice Name = "guided_practice"
	Advanced       Name = "advanced"
	Reflection     Name = "reflection"
)

// Strategy selects candidate atoms for a phase.
type Strategy string

const (
	StrategySpacedReview           Strategy = "spaced_review"
	StrategyMisconceptionDiagnosis Strategy = "misconception_diagnosis"
	StrategyGuidedPractice         Strategy = "guided_practice"
	StrategyAdvancedReasoning      Strategy = "advanced_reasoning"
	StrategyTransferLearning       Strategy = "transfer_learning"
)

// Phase is one stage of the day's arc.
type Phase struct {
	Name      Name
	Slots     int
	Strategy  Strategy
	Templates []content.Template
	Points    int
}

// All returns the five phases in the order they are played.
func All() []Phase {
	return []Phase{
		{
			Name: WarmUp, Slots: 3, Strategy: StrategySpacedReview, Points: 10,
			Templates: []content.Template{content.TemplateMultipleChoice, content.TemplateTrueFalse},
		},
		{
			Name: Diagnosis, Slots: 3, Strategy: StrategyMisconceptionDiagnosis, Points: 20,
			Templates: []content.Template{content.TemplateErrorAnalysis, content.TemplateMultipleChoice},
		},
		{
			Name: GuidedPractice, Slots: 5, Strategy: StrategyGuidedPractice, Points: 30,
			Templates: []content.Template{content.TemplateNumericInput, content.TemplateFillBlank, content.TemplateMultipleChoice},
		},
		{
			Name: Advanced, Slots: 2, Strategy: StrategyAdvancedReasoning, Points: 40,
			Templates: []content.Template{content.TemplateOrdering, content.TemplateNumericInput},
		},
		{
			Name: Reflection, Slots: 1, Strategy: StrategyTransferLearning, Points: 25,
			Templates: []content.Template{content.TemplateMatching, content.TemplateMultipleChoice},
		},
	}
}

// ByName looks up a phase.
func ByName(n Name) (Phase, bool) {
	for _, p := range All() {
		if p.Name == n {
			return p, true
		}
	}
	return Phase{}, false
}

// TotalSlots is the number of planned items in a full day.
func TotalSlots() int {
	total := 0
	for _, p := range All() {
		total += p.Slots
	}
	return total
}

// DisplayName returns a human-readable label for the phase.
func (n Name) DisplayName() string {
	switch n {
	case WarmUp:
		return "Warm-up"
	case Diagnosis:
		return "Diagnosis"
	case GuidedPractice:
		return "Guided Practice"
	case Advanced:
		return "Advanced"
	case Reflection:
		return "Reflection"
	default:
		return string(n)
	}
}
