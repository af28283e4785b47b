package content

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceItem() Item {
	return Item{
		ID:       "q1",
		AtomID:   "frac_compare",
		Template: TemplateMultipleChoice,
		Prompt:   "Which is larger?",
		Payload: &ChoicePayload{Options: []Option{
			{Text: "1/3", Correct: true},
			{Text: "1/8", Misconception: "bigger_denominator_bigger_fraction"},
			{Text: "1/9"},
			{Text: "They are equal", Anchored: true},
		}},
	}
}

func TestChoiceCheckNumericOptions(t *testing.T) {
	p := &ChoicePayload{Options: []Option{
		{Text: "2", Misconception: "sign_error"},
		{Text: "-8", Correct: true},
		{Text: "-2"},
		{Text: "8"},
	}}
	tests := []struct {
		answer        string
		correct       bool
		misconception string
	}{
		{"2", false, "sign_error"},
		{"-8", true, ""},
		{"8", false, ""},
		{"1", false, "sign_error"},
		{"3", false, ""},
		{"5", false, ""},
	}
	for _, tt := range tests {
		correct, misc := p.Check(tt.answer)
		if correct != tt.correct || misc != tt.misconception {
			t.Errorf("Check(%q) = (%v, %q), want (%v, %q)", tt.answer, correct, misc, tt.correct, tt.misconception)
		}
	}
}

func TestChoiceCheck(t *testing.T) {
	it := choiceItem()
	tests := []struct {
		answer        string
		correct       bool
		misconception string
	}{
		{"1", true, ""},
		{"1/3", true, ""},
		{" 1/3 ", true, ""},
		{"2", false, "bigger_denominator_bigger_fraction"},
		{"1/8", false, "bigger_denominator_bigger_fraction"},
		{"3", false, ""},
		{"9", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		correct, misc := it.Check(tt.answer)
		if correct != tt.correct || misc != tt.misconception {
			t.Errorf("Check(%q) = (%v, %q), want (%v, %q)", tt.answer, correct, misc, tt.correct, tt.misconception)
		}
	}
}

func TestNumericCheck(t *testing.T) {
	tests := []struct {
		name          string
		payload       NumericPayload
		answer        string
		correct       bool
		misconception string
	}{
		{"integer", NumericPayload{Answer: "42", Kind: AnswerInteger}, "042", true, ""},
		{"integer wrong", NumericPayload{Answer: "42", Kind: AnswerInteger}, "41", false, ""},
		{"known wrong", NumericPayload{Answer: "42", Kind: AnswerInteger, Misconceptions: map[string]string{"-42": "negative_times_negative"}}, "-42", false, "negative_times_negative"},
		{"decimal trailing zeros", NumericPayload{Answer: "0.75", Kind: AnswerDecimal}, "0.750", true, ""},
		{"equivalent fraction", NumericPayload{Answer: "1/2", Kind: AnswerFraction}, "2/4", true, ""},
		{"whole fraction", NumericPayload{Answer: "4/2", Kind: AnswerFraction}, "2", true, ""},
		{"fraction misconception reduced", NumericPayload{Answer: "3/4", Kind: AnswerFraction, Misconceptions: map[string]string{"2/6": "add_across"}}, "1/3", false, "add_across"},
		{"garbage", NumericPayload{Answer: "3", Kind: AnswerInteger}, "three", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, misc := tt.payload.Check(tt.answer)
			assert.Equal(t, tt.correct, correct)
			assert.Equal(t, tt.misconception, misc)
		})
	}
}

func TestTextSequencePairsCheck(t *testing.T) {
	text := &TextPayload{Accepted: []string{"Seven", "7"}}
	ok, _ := text.Check("seven")
	assert.True(t, ok)
	text.CaseSensitive = true
	ok, _ = text.Check("seven")
	assert.False(t, ok)

	seq := &SequencePayload{Steps: []string{"-6", "-1", "0", "4"}}
	ok, _ = seq.Check("-6 | -1 | 0 | 4")
	assert.True(t, ok)
	ok, _ = seq.Check("-1|-6|0|4")
	assert.False(t, ok)
	ok, _ = seq.Check("-6|-1|0")
	assert.False(t, ok)

	pairs := &PairsPayload{Pairs: []Pair{{"1/2", "0.5"}, {"1/5", "0.2"}}}
	ok, _ = pairs.Check("1/5=0.2; 1/2 = 0.5")
	assert.True(t, ok)
	ok, _ = pairs.Check("1/5=0.5;1/2=0.2")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	it := choiceItem()
	require.NoError(t, it.Validate())

	twoCorrect := choiceItem()
	twoCorrect.Payload.(*ChoicePayload).Options[1].Correct = true
	assert.Error(t, twoCorrect.Validate())

	badNumber := Item{ID: "n", AtomID: "a", Template: TemplateNumericInput, Prompt: "p",
		Payload: &NumericPayload{Answer: "x", Kind: AnswerInteger}}
	assert.Error(t, badNumber.Validate())

	essay := Item{ID: "e", AtomID: "a", Template: TemplateEssay, Prompt: "p"}
	assert.Error(t, essay.Validate())
}

func TestItemJSONKeepsPayloadVariant(t *testing.T) {
	orig := Item{
		ID: "n1", AtomID: "int_add_sub", Template: TemplateNumericInput, Prompt: "-7 + 4",
		Payload: &NumericPayload{Answer: "-3", Kind: AnswerInteger, Misconceptions: map[string]string{"3": "sign_ignored"}},
	}
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got Item
	require.NoError(t, json.Unmarshal(data, &got))
	p, ok := got.Payload.(*NumericPayload)
	require.True(t, ok, "payload type %T", got.Payload)
	assert.Equal(t, "-3", p.Answer)

	correct, misc := got.Check("3")
	assert.False(t, correct)
	assert.Equal(t, "sign_ignored", misc)
}

func TestItemJSONUnknownTemplate(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","atom_id":"a","template":"essay","prompt":"Explain","payload":{"rubric":"x"}}`), &it))
	assert.Equal(t, TemplateEssay, it.Template)
	assert.Nil(t, it.Payload)
}

func TestArrangeOptionsAnchoredLast(t *testing.T) {
	opts := []Option{
		{Text: "A"}, {Text: "Both A and B", Anchored: true}, {Text: "B"},
		{Text: "C"}, {Text: "All of the above", Anchored: true},
	}
	for seed := uint64(0); seed < 20; seed++ {
		got := ArrangeOptions(opts, rand.New(rand.NewPCG(seed, seed)))
		require.Len(t, got, 5)
		assert.Equal(t, "Both A and B", got[3].Text)
		assert.Equal(t, "All of the above", got[4].Text)
		assert.ElementsMatch(t, []string{"A", "B", "C"}, []string{got[0].Text, got[1].Text, got[2].Text})
	}
	assert.Equal(t, "A", opts[0].Text, "input must not be reordered")
}

func TestWithShuffledOptionsCopies(t *testing.T) {
	it := choiceItem()
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 10; i++ {
		got := it.WithShuffledOptions(rng)
		opts := got.Payload.(*ChoicePayload).Options
		assert.Equal(t, "They are equal", opts[len(opts)-1].Text)
	}
	assert.Equal(t, "1/3", it.Payload.(*ChoicePayload).Options[0].Text)

	tf := Item{ID: "tf", Template: TemplateTrueFalse, Payload: &ChoicePayload{Options: []Option{{Text: "True", Correct: true}, {Text: "False"}}}}
	got := tf.WithShuffledOptions(rng)
	assert.Equal(t, "True", got.Payload.(*ChoicePayload).Options[0].Text)
}
