package content

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Item is one authored question from a content pool.
type Item struct {
	ID       string   `json:"id"`
	AtomID   string   `json:"atom_id"`
	Template Template `json:"template"`
	Subject  string   `json:"subject,omitempty"`
	Grade    int      `json:"grade,omitempty"`
	BundleID string   `json:"bundle_id,omitempty"`
	Prompt   string   `json:"prompt"`
	Hint     string   `json:"hint,omitempty"`

	// Payload is nil for templates that are recognized but not servable.
	Payload Payload `json:"-"`
}

// Check grades an answer against the item's payload.
func (it Item) Check(answer string) (bool, string) {
	if it.Payload == nil {
		return false, ""
	}
	return it.Payload.Check(answer)
}

// Validate reports authoring mistakes that would make the item unservable.
func (it Item) Validate() error {
	if it.ID == "" {
		return errors.New("item has no id")
	}
	if it.AtomID == "" {
		return fmt.Errorf("item %s: no atom", it.ID)
	}
	if it.Prompt == "" {
		return fmt.Errorf("item %s: empty prompt", it.ID)
	}
	if it.Payload == nil {
		return fmt.Errorf("item %s: template %q has no servable payload", it.ID, it.Template)
	}
	if err := it.Payload.Validate(); err != nil {
		return fmt.Errorf("item %s: %w", it.ID, err)
	}
	return nil
}

type itemJSON struct {
	ID       string          `json:"id"`
	AtomID   string          `json:"atom_id"`
	Template Template        `json:"template"`
	Subject  string          `json:"subject,omitempty"`
	Grade    int             `json:"grade,omitempty"`
	BundleID string          `json:"bundle_id,omitempty"`
	Prompt   string          `json:"prompt"`
	Hint     string          `json:"hint,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON writes the payload under "payload", discriminated by template.
func (it Item) MarshalJSON() ([]byte, error) {
	aux := itemJSON{
		ID:       it.ID,
		AtomID:   it.AtomID,
		Template: it.Template,
		Subject:  it.Subject,
		Grade:    it.Grade,
		BundleID: it.BundleID,
		Prompt:   it.Prompt,
		Hint:     it.Hint,
	}
	if it.Payload != nil {
		raw, err := json.Marshal(it.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload of %s: %w", it.ID, err)
		}
		aux.Payload = raw
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes the payload into the type its template calls for.
// Unknown templates decode with a nil payload.
func (it *Item) UnmarshalJSON(data []byte) error {
	var aux itemJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*it = Item{
		ID:       aux.ID,
		AtomID:   aux.AtomID,
		Template: aux.Template,
		Subject:  aux.Subject,
		Grade:    aux.Grade,
		BundleID: aux.BundleID,
		Prompt:   aux.Prompt,
		Hint:     aux.Hint,
	}
	p := payloadFor(aux.Template)
	if p == nil || len(aux.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(aux.Payload, p); err != nil {
		return fmt.Errorf("decode %s payload of %s: %w", aux.Template, aux.ID, err)
	}
	it.Payload = p
	return nil
}

type itemYAML struct {
	ID       string    `yaml:"id"`
	AtomID   string    `yaml:"atom"`
	Template Template  `yaml:"template"`
	Subject  string    `yaml:"subject"`
	Grade    int       `yaml:"grade"`
	Prompt   string    `yaml:"prompt"`
	Hint     string    `yaml:"hint"`
	Payload  yaml.Node `yaml:"payload"`
}

// UnmarshalYAML decodes bundle files, where the atom key is "atom".
func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	var aux itemYAML
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*it = Item{
		ID:       aux.ID,
		AtomID:   aux.AtomID,
		Template: aux.Template,
		Subject:  aux.Subject,
		Grade:    aux.Grade,
		Prompt:   aux.Prompt,
		Hint:     aux.Hint,
	}
	p := payloadFor(aux.Template)
	if p == nil || aux.Payload.Kind == 0 {
		return nil
	}
	if err := aux.Payload.Decode(p); err != nil {
		return fmt.Errorf("decode %s payload of %s: %w", aux.Template, aux.ID, err)
	}
	it.Payload = p
	return nil
}

// clone returns a copy whose payload can be modified independently.
func (it Item) clone() Item {
	switch p := it.Payload.(type) {
	case *ChoicePayload:
		c := *p
		c.Options = append([]Option(nil), p.Options...)
		it.Payload = &c
	case *SequencePayload:
		c := *p
		c.Steps = append([]string(nil), p.Steps...)
		it.Payload = &c
	case *PairsPayload:
		c := *p
		c.Pairs = append([]Pair(nil), p.Pairs...)
		it.Payload = &c
	}
	return it
}
