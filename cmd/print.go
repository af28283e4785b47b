package cmd

import (
	"fmt"
	"strings"

	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/mission"
	"github.com/saideep-g/blue-ninja/internal/progress"
)

const rule = "─"

func printBatch(b *mission.DailyBatch) {
	fmt.Printf("Batch %s for %s on %s\n", b.ID, b.LearnerID, progress.DateKey(b.Date))
	fmt.Println(strings.Repeat(rule, 80))
	if len(b.Missions) == 0 {
		fmt.Println("No missions: no content matched this learner's curriculum.")
		return
	}
	for _, m := range b.Missions {
		fmt.Printf("%-16s  %-36s  %-12s  %d/%d answered\n",
			m.Phase, m.ID, m.Status.DisplayName(), len(m.CompletedIDs), len(m.Questions))
	}
}

func printMission(m mission.Mission) {
	fmt.Printf("%s  %s  (%s, %d points)\n", m.Phase, m.ID, m.Status.DisplayName(), m.Points)
	for i, q := range m.Questions {
		mark := " "
		if m.Answered(q.ID()) {
			mark = "✓"
		}
		fmt.Printf("  %s %2d. [%s] %s\n", mark, i+1, q.ID(), q.Item.Prompt)
		printOptions(q.Item, "        ")
	}
}

// printOptions lists choice options with the 1-based index answers use.
func printOptions(it content.Item, indent string) {
	p, ok := it.Payload.(*content.ChoicePayload)
	if !ok {
		return
	}
	for i, o := range p.Options {
		fmt.Printf("%s%d) %s\n", indent, i+1, o.Text)
	}
}

func printBadges(badges []progress.Badge) {
	for _, b := range badges {
		fmt.Printf("%s Badge earned: %s\n", b.Type.Icon(), b.Type.DisplayName())
	}
}
