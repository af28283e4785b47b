package authoring

import (
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
)

// batchOutput is the raw provider response before conversion.
type batchOutput struct {
	Items []itemOutput `json:"items"`
}

type itemOutput struct {
	Template     string           `json:"template"`
	Prompt       string           `json:"prompt"`
	Hint         string           `json:"hint"`
	Options      []content.Option `json:"options"`
	Answer       string           `json:"answer"`
	AnswerKind   string           `json:"answer_kind"`
	WrongAnswers []wrongAnswer    `json:"wrong_answers"`
	Accepted     []string         `json:"accepted"`
	Steps        []string         `json:"steps"`
	Pairs        []content.Pair   `json:"pairs"`
}

type wrongAnswer struct {
	Answer        string `json:"answer"`
	Misconception string `json:"misconception"`
}

// toItem builds a content item, picking the payload variant for the
// template. An unknown template yields an item with no payload, which
// fails validation.
func (o itemOutput) toItem(id string, atom curriculum.Atom, module curriculum.Module) content.Item {
	it := content.Item{
		ID:       id,
		AtomID:   atom.ID,
		Template: content.Template(o.Template),
		Subject:  module.Subject,
		Grade:    module.Grade,
		BundleID: BundleID(atom.ID),
		Prompt:   o.Prompt,
		Hint:     o.Hint,
	}
	if !content.IsAllowed(it.Template) {
		return it
	}

	switch it.Template {
	case content.TemplateMultipleChoice, content.TemplateTrueFalse, content.TemplateErrorAnalysis:
		it.Payload = &content.ChoicePayload{Options: o.Options}
	case content.TemplateNumericInput:
		p := &content.NumericPayload{Answer: o.Answer, Kind: content.AnswerKind(o.AnswerKind)}
		for _, w := range o.WrongAnswers {
			if w.Answer == "" || w.Misconception == "" {
				continue
			}
			if p.Misconceptions == nil {
				p.Misconceptions = make(map[string]string)
			}
			p.Misconceptions[w.Answer] = w.Misconception
		}
		it.Payload = p
	case content.TemplateFillBlank:
		it.Payload = &content.TextPayload{Accepted: o.Accepted}
	case content.TemplateOrdering:
		it.Payload = &content.SequencePayload{Steps: o.Steps}
	case content.TemplateMatching:
		it.Payload = &content.PairsPayload{Pairs: o.Pairs}
	}
	return it
}
