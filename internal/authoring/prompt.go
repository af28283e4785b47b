package authoring

import (
	"fmt"
	"strings"

	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
)

const systemPrompt = `You are a math teacher writing practice questions for middle school learners.

Rules:
- Write questions for exactly the skill described. Stay at the stated grade.
- Use plain ASCII text for all math. No LaTeX. Use / for fractions and * for multiplication.
- Every answer must be correct and in simplest form.
- Use a mix of the allowed templates.
- multiple_choice and error_analysis: 4 options, exactly one correct. Wrong options should reflect real mistakes; tag each with the matching misconception from the list when one fits, otherwise leave it empty.
- true_false: exactly the options "True" and "False".
- Mark an option anchored only for "None of the above" or "All of the above".
- numeric_input: give the answer and its kind, and list typical wrong answers with their misconception.
- fill_blank: list every accepted spelling of the answer.
- ordering: give at least 3 steps in the correct order.
- matching: give at least 3 pairs.
- Leave fields a template does not use empty.
- Do not repeat any question from the "already written" list.`

// buildUserMessage describes the atom and what to write.
func buildUserMessage(atom curriculum.Atom, module curriculum.Module, n int, prior []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Skill: %s\n", atom.Title)
	fmt.Fprintf(&b, "Module: %s\n", module.Title)
	fmt.Fprintf(&b, "Subject: %s\n", module.Subject)
	fmt.Fprintf(&b, "Grade: %d\n", module.Grade)
	if len(atom.Misconceptions) > 0 {
		fmt.Fprintf(&b, "Misconceptions: %s\n", strings.Join(atom.Misconceptions, ", "))
	} else {
		b.WriteString("Misconceptions: none\n")
	}

	templates := make([]string, 0, len(content.AllowedTemplates()))
	for _, t := range content.AllowedTemplates() {
		templates = append(templates, string(t))
	}
	fmt.Fprintf(&b, "Allowed templates: %s\n", strings.Join(templates, ", "))
	fmt.Fprintf(&b, "Number of questions: %d\n", n)

	b.WriteString("\nAlready written:\n")
	b.WriteString(listPrior(prior))
	return b.String()
}

func listPrior(prior []string) string {
	if len(prior) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, p := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
