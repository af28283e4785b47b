package content

// Template identifies how a question is presented and answered.
type Template string

const (
	TemplateMultipleChoice Template = "multiple_choice"
	TemplateTrueFalse      Template = "true_false"
	TemplateNumericInput   Template = "numeric_input"
	TemplateFillBlank      Template = "fill_blank"
	TemplateOrdering       Template = "ordering"
	TemplateErrorAnalysis  Template = "error_analysis"
	TemplateMatching       Template = "matching"

	// TemplateEssay is recognized in content pools but never served.
	TemplateEssay Template = "essay"
)

// AllowedTemplates returns the templates that may be served, in display order.
func AllowedTemplates() []Template {
	return []Template{
		TemplateMultipleChoice,
		TemplateTrueFalse,
		TemplateNumericInput,
		TemplateFillBlank,
		TemplateOrdering,
		TemplateErrorAnalysis,
		TemplateMatching,
	}
}

// IsAllowed reports whether t is on the serving allow-list.
func IsAllowed(t Template) bool {
	for _, a := range AllowedTemplates() {
		if a == t {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable label for the template.
func (t Template) DisplayName() string {
	switch t {
	case TemplateMultipleChoice:
		return "Multiple Choice"
	case TemplateTrueFalse:
		return "True or False"
	case TemplateNumericInput:
		return "Numeric Answer"
	case TemplateFillBlank:
		return "Fill in the Blank"
	case TemplateOrdering:
		return "Put in Order"
	case TemplateErrorAnalysis:
		return "Spot the Mistake"
	case TemplateMatching:
		return "Match the Pairs"
	case TemplateEssay:
		return "Essay"
	default:
		return string(t)
	}
}
