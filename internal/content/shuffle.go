package content

import "math/rand/v2"

// ArrangeOptions returns a shuffled copy of opts with anchored options
// moved after the rest, keeping the anchored options' relative order. A
// nil rng uses the global source.
func ArrangeOptions(opts []Option, rng *rand.Rand) []Option {
	free := make([]Option, 0, len(opts))
	var anchored []Option
	for _, o := range opts {
		if o.Anchored {
			anchored = append(anchored, o)
			continue
		}
		free = append(free, o)
	}
	swap := func(i, j int) { free[i], free[j] = free[j], free[i] }
	if rng != nil {
		rng.Shuffle(len(free), swap)
	} else {
		rand.Shuffle(len(free), swap)
	}
	return append(free, anchored...)
}

// WithShuffledOptions returns a copy of the item with its choices
// rearranged. Only multiple_choice and error_analysis are shuffled;
// true/false keeps its fixed order.
func (it Item) WithShuffledOptions(rng *rand.Rand) Item {
	if it.Template != TemplateMultipleChoice && it.Template != TemplateErrorAnalysis {
		return it
	}
	out := it.clone()
	if p, ok := out.Payload.(*ChoicePayload); ok {
		p.Options = ArrangeOptions(p.Options, rng)
	}
	return out
}
