package mastery

const (
	// LowThreshold is the raw score at or below which a fact contributes nothing.
	LowThreshold = 0.2
	// HighThreshold is the raw score at or above which a fact contributes fully.
	HighThreshold = 0.8
)

// Fact is one weighted entry of a table (a times table, a module).
type Fact struct {
	ID    string
	Score float64
	Tier  Tier
}

// EffectiveScore maps a raw score onto [0,1] with a dead zone below
// LowThreshold and saturation above HighThreshold.
func EffectiveScore(raw float64) float64 {
	switch {
	case raw <= LowThreshold:
		return 0
	case raw >= HighThreshold:
		return 1
	default:
		return (raw - LowThreshold) / (HighThreshold - LowThreshold)
	}
}

// TierWeight is how much a fact of the given tier counts toward a table.
func TierWeight(t Tier) float64 {
	switch t {
	case TierEasy:
		return 1
	case TierMedium:
		return 2
	case TierHard:
		return 3
	default:
		return 1
	}
}

// Contribution returns the weighted effective score of one fact.
func (f Fact) Contribution() float64 {
	return EffectiveScore(f.Score) * TierWeight(f.Tier)
}

// TableMastery returns the weighted mean effective score over facts,
// or 0 for an empty table.
func TableMastery(facts []Fact) float64 {
	var sum, weights float64
	for _, f := range facts {
		sum += f.Contribution()
		weights += TierWeight(f.Tier)
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}
