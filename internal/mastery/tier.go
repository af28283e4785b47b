package mastery

// Tier is the per-slot difficulty tier: 1 is easiest.
type Tier int

const (
	TierEasy   Tier = 1
	TierMedium Tier = 2
	TierHard   Tier = 3
)

// DifficultyTier maps a mastery score to the difficulty tier a planned
// item should be served at: strong atoms get easier review items, weak
// atoms get the hardest scaffolding tier.
func DifficultyTier(score float64) Tier {
	switch {
	case score >= 0.8:
		return TierEasy
	case score >= 0.5:
		return TierMedium
	default:
		return TierHard
	}
}

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierEasy:
		return "Easy"
	case TierMedium:
		return "Medium"
	case TierHard:
		return "Hard"
	default:
		return "Unknown"
	}
}
