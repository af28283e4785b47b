package authoring

import (
	"fmt"
	"slices"

	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
)

// Validator checks one converted item before it joins the pool.
type Validator interface {
	Name() string
	Validate(it content.Item, atom curriculum.Atom, cfg Config) *ValidationError
}

// ValidationError describes why an authored item was dropped.
type ValidationError struct {
	Validator string
	ItemID    string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: item %s: %s", e.Validator, e.ItemID, e.Message)
}

// StructuralValidator runs the payload's own checks and bounds the prompt.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(it content.Item, _ curriculum.Atom, cfg Config) *ValidationError {
	if err := it.Validate(); err != nil {
		return &ValidationError{Validator: v.Name(), ItemID: it.ID, Message: err.Error()}
	}
	if cfg.MaxPromptLength > 0 && len(it.Prompt) > cfg.MaxPromptLength {
		return &ValidationError{
			Validator: v.Name(),
			ItemID:    it.ID,
			Message:   fmt.Sprintf("prompt exceeds %d characters", cfg.MaxPromptLength),
		}
	}
	return nil
}

// MisconceptionValidator rejects misconception tags the atom does not
// declare, so hurdle counters only ever see curriculum tags.
type MisconceptionValidator struct{}

func (v *MisconceptionValidator) Name() string { return "misconception" }

func (v *MisconceptionValidator) Validate(it content.Item, atom curriculum.Atom, _ Config) *ValidationError {
	for _, tag := range misconceptionTags(it) {
		if !slices.Contains(atom.Misconceptions, tag) {
			return &ValidationError{
				Validator: v.Name(),
				ItemID:    it.ID,
				Message:   fmt.Sprintf("unknown misconception %q for atom %s", tag, atom.ID),
			}
		}
	}
	return nil
}

func misconceptionTags(it content.Item) []string {
	var tags []string
	switch p := it.Payload.(type) {
	case *content.ChoicePayload:
		for _, o := range p.Options {
			if o.Misconception != "" {
				tags = append(tags, o.Misconception)
			}
		}
	case *content.NumericPayload:
		for _, tag := range p.Misconceptions {
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
