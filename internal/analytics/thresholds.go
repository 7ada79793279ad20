package analytics

// Thresholds pinned by the dashboard's fixtures. They are tuning knobs, not
// derived quantities; change them together with the tests that pin them.
const (
	// DefaultMinConsistencyRaces is the classified finishes needed for a
	// consistency score. Fewer than five makes one outlier dominate the deviation.
	DefaultMinConsistencyRaces = 5

	// DefaultMinCorrelationRaces is the grid/finish pairs needed for a correlation
	DefaultMinCorrelationRaces = 5

	// DefaultMinCircuitAppearances below which circuit stats carry a warning
	DefaultMinCircuitAppearances = 3

	// DefaultRollingWindow is the trailing window for constructor development
	DefaultRollingWindow = 3

	// DefaultFormWindow is the number of recent races in the form indicator
	DefaultFormWindow = 5

	// DefaultTrendSlopeThreshold separates "stable" from a real trend. A slope
	// under 0.3 positions (or points) per race is within normal race noise.
	DefaultTrendSlopeThreshold = 0.3

	// DefaultImbalanceThreshold is the points share (percent) above which a
	// pairing is imbalanced; the mirror bound is 100 minus this value.
	DefaultImbalanceThreshold = 70.0

	// DefaultLowRemainingRaces below which projections carry a notice
	DefaultLowRemainingRaces = 5

	// DefaultParticipationThreshold is the fraction of races an entity must
	// have started to join a percentile reference population.
	DefaultParticipationThreshold = 0.5

	// DefaultGridSize is the number of grid slots reported at minimum
	DefaultGridSize = 20

	// ConsistencyScale maps one position of deviation to ten score points,
	// so the score saturates at zero once deviation reaches ten positions.
	ConsistencyScale = 10.0

	// DifficultyDNFWeight and DifficultyChangeWeight blend DNF rate (percent)
	// and mean absolute grid-to-finish change into a 0-100 difficulty score.
	// Heuristic weights: a circuit with 25% DNFs and 4 places average change
	// scores 31.
	DifficultyDNFWeight    = 0.6
	DifficultyChangeWeight = 4.0

	// StrongRacerCorrelation and QualifyingDependentCorrelation bound the
	// grid/finish correlation labels. Applied literally: a perfect positive
	// correlation is "qualifying-dependent".
	StrongRacerCorrelation         = -0.3
	QualifyingDependentCorrelation = 0.7
)

// Thresholds bundles the tunable parameters passed to the analytics packages
type Thresholds struct {
	MinConsistencyRaces    int     `json:"min_consistency_races"`
	MinCorrelationRaces    int     `json:"min_correlation_races"`
	MinCircuitAppearances  int     `json:"min_circuit_appearances"`
	RollingWindow          int     `json:"rolling_window"`
	FormWindow             int     `json:"form_window"`
	TrendSlopeThreshold    float64 `json:"trend_slope_threshold"`
	ImbalanceThreshold     float64 `json:"imbalance_threshold"`
	LowRemainingRaces      int     `json:"low_remaining_races"`
	ParticipationThreshold float64 `json:"participation_threshold"`
	GridSize               int     `json:"grid_size"`
}

// DefaultThresholds returns the documented defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinConsistencyRaces:    DefaultMinConsistencyRaces,
		MinCorrelationRaces:    DefaultMinCorrelationRaces,
		MinCircuitAppearances:  DefaultMinCircuitAppearances,
		RollingWindow:          DefaultRollingWindow,
		FormWindow:             DefaultFormWindow,
		TrendSlopeThreshold:    DefaultTrendSlopeThreshold,
		ImbalanceThreshold:     DefaultImbalanceThreshold,
		LowRemainingRaces:      DefaultLowRemainingRaces,
		ParticipationThreshold: DefaultParticipationThreshold,
		GridSize:               DefaultGridSize,
	}
}

// Trend is a three-way trend label
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// ClassifyPositionTrend labels a slope of finishing positions over time.
// Lower positions are better, so a negative slope is improving.
func ClassifyPositionTrend(slope, threshold float64) Trend {
	switch {
	case abs(slope) < threshold:
		return TrendStable
	case slope < 0:
		return TrendImproving
	default:
		return TrendDeclining
	}
}

// ClassifyPointsTrend labels a slope of points over time; positive is improving.
func ClassifyPointsTrend(slope, threshold float64) Trend {
	switch {
	case abs(slope) < threshold:
		return TrendStable
	case slope > 0:
		return TrendImproving
	default:
		return TrendDeclining
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
