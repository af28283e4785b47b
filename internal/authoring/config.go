package authoring

// Config controls how the Source prompts the provider.
type Config struct {
	// ItemsPerAtom is how many items one request asks for.
	ItemsPerAtom int

	// MaxTokens is the token budget for one response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MaxPromptLength rejects items whose prompt is longer.
	MaxPromptLength int

	// Validators run on every converted item, in order. The first
	// failure drops the item.
	Validators []Validator
}

// DefaultConfig returns the recommended defaults and validator chain.
func DefaultConfig() Config {
	return Config{
		ItemsPerAtom:    6,
		MaxTokens:       2048,
		Temperature:     0.7,
		MaxPromptLength: 500,
		Validators: []Validator{
			&StructuralValidator{},
			&MisconceptionValidator{},
		},
	}
}
