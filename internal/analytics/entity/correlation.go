package entity

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// PerformerType labels how finishing positions relate to grid positions
type PerformerType string

const (
	StrongRacePerformer          PerformerType = "strong race performer"
	QualifyingDependentPerformer PerformerType = "qualifying-dependent performer"
	BalancedPerformer            PerformerType = "balanced performer"
)

// GridFinish is one scatter point
type GridFinish struct {
	Grid   int `json:"grid"`
	Finish int `json:"finish"`
}

// CorrelationResult is the output of QualiRaceCorrelation
type CorrelationResult struct {
	Correlation       *float64      `json:"correlation"`
	AvgPositionChange *float64      `json:"avg_position_change"` // grid - finish, positive gained places
	Classification    PerformerType `json:"classification,omitempty"`
	RacesAnalyzed     int           `json:"races_analyzed"`
	RequiredRaces     int           `json:"required_races"`
	MissingData       int           `json:"missing_data"`
	DNFExcluded       int           `json:"dnf_excluded"`
	Pairs             []GridFinish  `json:"pairs"`
	InsufficientData  bool          `json:"insufficient_data"`
}

// QualiRaceCorrelation correlates grid and finishing positions. Records
// without a grid slot or a known outcome count as missing data; retirements
// are counted separately.
func QualiRaceCorrelation(results []models.RaceResult, minRaces int) CorrelationResult {
	if minRaces < 1 {
		minRaces = analytics.DefaultMinCorrelationRaces
	}

	out := CorrelationResult{RequiredRaces: minRaces, Pairs: []GridFinish{}}
	var grids, finishes analytics.Series
	for _, r := range results {
		grid, hasGrid := r.GridPosition()
		_, unknown := r.Outcome.(models.Unknown)
		if !hasGrid || unknown || r.Outcome == nil {
			out.MissingData++
			continue
		}
		finish, ok := r.FinishPosition()
		if !ok {
			out.DNFExcluded++
			continue
		}
		grids = append(grids, float64(grid))
		finishes = append(finishes, float64(finish))
		out.Pairs = append(out.Pairs, GridFinish{Grid: grid, Finish: finish})
	}

	out.RacesAnalyzed = len(out.Pairs)
	if out.RacesAnalyzed < minRaces {
		out.InsufficientData = true
		return out
	}

	change := 0.0
	for i := range grids {
		change += grids[i] - finishes[i]
	}
	out.AvgPositionChange = analytics.Float64Ptr(change / float64(len(grids)))
	out.Correlation = analytics.SafeCorrelation(grids, finishes)
	out.Classification = ClassifyCorrelation(out.Correlation)
	return out
}

// ClassifyCorrelation applies the fixed correlation bands. Nil is balanced.
func ClassifyCorrelation(corr *float64) PerformerType {
	switch {
	case corr == nil:
		return BalancedPerformer
	case *corr < analytics.StrongRacerCorrelation:
		return StrongRacePerformer
	case *corr > analytics.QualifyingDependentCorrelation:
		return QualifyingDependentPerformer
	default:
		return BalancedPerformer
	}
}
