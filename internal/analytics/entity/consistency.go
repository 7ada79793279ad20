package entity

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// ConsistencyResult is the output of Consistency
type ConsistencyResult struct {
	Score            *float64 `json:"consistency_score"`
	StdDev           *float64 `json:"std_dev"`
	AvgPosition      *float64 `json:"avg_position"`
	CompletedRaces   int      `json:"completed_races"`
	TotalRaces       int      `json:"total_races"`
	RequiredRaces    int      `json:"required_races"`
	InsufficientData bool     `json:"insufficient_data"`
}

// Consistency scores how tightly classified finishing positions cluster:
// clamp(100 - stddev*10, 0, 100). Retirements are excluded.
func Consistency(results []models.RaceResult, minRaces int) ConsistencyResult {
	if minRaces < 1 {
		minRaces = analytics.DefaultMinConsistencyRaces
	}

	positions := FinishPositions(results)
	out := ConsistencyResult{
		CompletedRaces: len(positions),
		TotalRaces:     len(results),
		RequiredRaces:  minRaces,
	}
	if len(positions) < minRaces {
		out.InsufficientData = true
		return out
	}

	sd := positions.PopulationStdDev()
	score := analytics.Clamp(100-sd*analytics.ConsistencyScale, 0, 100)
	out.Score = &score
	out.StdDev = &sd
	out.AvgPosition = positions.MeanPtr()
	return out
}

// FinishPositions returns classified finishing positions in input order
func FinishPositions(results []models.RaceResult) analytics.Series {
	positions := make(analytics.Series, 0, len(results))
	for _, r := range results {
		if pos, ok := r.FinishPosition(); ok {
			positions = append(positions, float64(pos))
		}
	}
	return positions
}

// AverageFinish is the mean classified position, or nil with no finishes
func AverageFinish(results []models.RaceResult) *float64 {
	return FinishPositions(results).MeanPtr()
}
