package domain

// RatingTier is the four-valued ordered classification of a rating average.
type RatingTier int

// Rating tiers, ordered from best to worst.
const (
	TierAcclaimed RatingTier = iota
	TierHighlyRated
	TierWellRated
	TierAverage
)

// TierFor classifies a rating average into its tier. Each tier's interval is
// closed at its lower bound; Acclaimed is also closed at 5.0.
func TierFor(rating float64) RatingTier {
	switch {
	case rating >= 4.5:
		return TierAcclaimed
	case rating >= 4.0:
		return TierHighlyRated
	case rating >= 3.5:
		return TierWellRated
	default:
		return TierAverage
	}
}

// Label returns the display label used across the tier-based views.
func (t RatingTier) Label() string {
	switch t {
	case TierAcclaimed:
		return "Acclaimed (4.5+)"
	case TierHighlyRated:
		return "Highly Rated (4.0+)"
	case TierWellRated:
		return "Well Rated (3.5+)"
	case TierAverage:
		return "Average (< 3.5)"
	default:
		return "Unknown"
	}
}

// String implements fmt.Stringer.
func (t RatingTier) String() string {
	return t.Label()
}
