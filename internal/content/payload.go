package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Payload is the template-specific body of an item. The concrete type is
// chosen by the item's template.
type Payload interface {
	// Check grades a learner's raw answer. A wrong answer may expose the
	// misconception tag the author attached to it.
	Check(answer string) (correct bool, misconception string)
	// Validate reports authoring mistakes.
	Validate() error
}

// payloadFor returns an empty payload for decoding a template's body,
// or nil for templates with no servable payload.
func payloadFor(t Template) Payload {
	switch t {
	case TemplateMultipleChoice, TemplateTrueFalse, TemplateErrorAnalysis:
		return &ChoicePayload{}
	case TemplateNumericInput:
		return &NumericPayload{}
	case TemplateFillBlank:
		return &TextPayload{}
	case TemplateOrdering:
		return &SequencePayload{}
	case TemplateMatching:
		return &PairsPayload{}
	default:
		return nil
	}
}

// Option is one choice of a choice-style question.
type Option struct {
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct,omitempty" yaml:"correct,omitempty"`

	// Misconception tags the error a learner picking this option makes.
	Misconception string `json:"misconception,omitempty" yaml:"misconception,omitempty"`

	// Anchored options ("All of the above", "Both A and B") keep their
	// place after the other options when choices are shuffled.
	Anchored bool `json:"anchored,omitempty" yaml:"anchored,omitempty"`
}

// ChoicePayload backs multiple_choice, true_false and error_analysis.
type ChoicePayload struct {
	Options []Option `json:"options" yaml:"options"`
}

// Check accepts the option text or a 1-based option number. Text wins, so
// an option reading "2" is never confused with the second option.
func (p *ChoicePayload) Check(answer string) (bool, string) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, ""
	}

	chosen := -1
	for i, o := range p.Options {
		if strings.EqualFold(strings.TrimSpace(o.Text), answer) {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(p.Options) {
			chosen = idx - 1
		}
	}
	if chosen < 0 {
		return false, ""
	}
	o := p.Options[chosen]
	if o.Correct {
		return true, ""
	}
	return false, o.Misconception
}

func (p *ChoicePayload) Validate() error {
	if len(p.Options) < 2 {
		return fmt.Errorf("need at least 2 options, got %d", len(p.Options))
	}
	correct := 0
	for _, o := range p.Options {
		if strings.TrimSpace(o.Text) == "" {
			return errors.New("option with empty text")
		}
		if o.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("need exactly 1 correct option, got %d", correct)
	}
	return nil
}

// NumericPayload backs numeric_input.
type NumericPayload struct {
	Answer string     `json:"answer" yaml:"answer"`
	Kind   AnswerKind `json:"kind" yaml:"kind"`

	// Misconceptions maps known wrong answers to the misconception they show.
	Misconceptions map[string]string `json:"misconceptions,omitempty" yaml:"misconceptions,omitempty"`
}

func (p *NumericPayload) Check(answer string) (bool, string) {
	learner, err := normalizeAnswer(answer, p.Kind)
	if err != nil {
		return false, ""
	}
	correct, err := normalizeAnswer(p.Answer, p.Kind)
	if err != nil {
		return false, ""
	}
	if learner == correct {
		return true, ""
	}
	for wrong, tag := range p.Misconceptions {
		if n, err := normalizeAnswer(wrong, p.Kind); err == nil && n == learner {
			return false, tag
		}
	}
	return false, ""
}

func (p *NumericPayload) Validate() error {
	if _, err := normalizeAnswer(p.Answer, p.Kind); err != nil {
		return fmt.Errorf("answer %q is not a valid %s: %w", p.Answer, p.Kind, err)
	}
	return nil
}

// TextPayload backs fill_blank.
type TextPayload struct {
	Accepted      []string `json:"accepted" yaml:"accepted"`
	CaseSensitive bool     `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
}

func (p *TextPayload) Check(answer string) (bool, string) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, ""
	}
	for _, a := range p.Accepted {
		a = strings.TrimSpace(a)
		if a == answer || (!p.CaseSensitive && strings.EqualFold(a, answer)) {
			return true, ""
		}
	}
	return false, ""
}

func (p *TextPayload) Validate() error {
	if len(p.Accepted) == 0 {
		return errors.New("need at least 1 accepted answer")
	}
	return nil
}

// SequenceSeparator separates steps in an ordering answer.
const SequenceSeparator = "|"

// SequencePayload backs ordering. Steps are stored in the correct order;
// the answer lists them separated by SequenceSeparator.
type SequencePayload struct {
	Steps []string `json:"steps" yaml:"steps"`
}

func (p *SequencePayload) Check(answer string) (bool, string) {
	parts := strings.Split(answer, SequenceSeparator)
	if len(parts) != len(p.Steps) {
		return false, ""
	}
	for i, part := range parts {
		if !strings.EqualFold(strings.TrimSpace(part), strings.TrimSpace(p.Steps[i])) {
			return false, ""
		}
	}
	return true, ""
}

func (p *SequencePayload) Validate() error {
	if len(p.Steps) < 2 {
		return fmt.Errorf("need at least 2 steps, got %d", len(p.Steps))
	}
	return nil
}

// Pair is one left/right association in a matching question.
type Pair struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
}

// PairsPayload backs matching. The answer is "left=right" entries joined by ";".
type PairsPayload struct {
	Pairs []Pair `json:"pairs" yaml:"pairs"`
}

func (p *PairsPayload) Check(answer string) (bool, string) {
	want := make(map[string]string, len(p.Pairs))
	for _, pr := range p.Pairs {
		want[strings.ToLower(strings.TrimSpace(pr.Left))] = strings.ToLower(strings.TrimSpace(pr.Right))
	}

	got := make(map[string]string)
	for _, entry := range strings.Split(answer, ";") {
		left, right, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		got[strings.ToLower(strings.TrimSpace(left))] = strings.ToLower(strings.TrimSpace(right))
	}

	if len(got) != len(want) {
		return false, ""
	}
	for l, r := range want {
		if got[l] != r {
			return false, ""
		}
	}
	return true, ""
}

func (p *PairsPayload) Validate() error {
	if len(p.Pairs) < 2 {
		return fmt.Errorf("need at least 2 pairs, got %d", len(p.Pairs))
	}
	return nil
}
