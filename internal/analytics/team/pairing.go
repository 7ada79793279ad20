package team

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/analytics/entity"
	"github.com/gridstats/gridstats/internal/models"
)

// Balance labels a pairing's points split
type Balance string

const (
	Balanced   Balance = "balanced"
	Imbalanced Balance = "imbalanced"
)

// PairingResult is the output of DriverPairing. Gaps are first minus second
// driver, so a negative gap means the first driver was ahead.
type PairingResult struct {
	FirstDriver      string     `json:"first_driver"`
	SecondDriver     string     `json:"second_driver"`
	FirstPoints      float64    `json:"first_points"`
	SecondPoints     float64    `json:"second_points"`
	PointsRatio      [2]float64 `json:"points_ratio"`
	AvgQualifyingGap *float64   `json:"avg_qualifying_gap"`
	AvgRaceGap       *float64   `json:"avg_race_gap"`
	SharedRaces      int        `json:"shared_races"`
	Balance          Balance    `json:"balance_flag"`
}

// DriverPairing compares two team-mates. With zero combined points the split
// is 50:50. Imbalanced means a share above threshold or below 100-threshold.
func DriverPairing(first, second []models.RaceResult, firstName, secondName string, threshold float64) PairingResult {
	if threshold <= 50 || threshold >= 100 {
		threshold = analytics.DefaultImbalanceThreshold
	}

	out := PairingResult{
		FirstDriver:  firstName,
		SecondDriver: secondName,
		FirstPoints:  entity.TotalPoints(first),
		SecondPoints: entity.TotalPoints(second),
	}

	combined := out.FirstPoints + out.SecondPoints
	if combined == 0 {
		out.PointsRatio = [2]float64{50, 50}
	} else {
		share := out.FirstPoints / combined * 100
		out.PointsRatio = [2]float64{share, 100 - share}
	}

	out.Balance = Balanced
	if out.PointsRatio[0] > threshold || out.PointsRatio[0] < 100-threshold {
		out.Balance = Imbalanced
	}

	byRace := make(map[models.RaceKey]models.RaceResult, len(second))
	for _, r := range second {
		byRace[r.Key()] = r
	}

	var gridGaps, raceGaps analytics.Series
	for _, a := range first {
		b, ok := byRace[a.Key()]
		if !ok {
			continue
		}
		out.SharedRaces++
		ga, okA := a.GridPosition()
		gb, okB := b.GridPosition()
		if okA && okB {
			gridGaps = append(gridGaps, float64(ga-gb))
		}
		fa, okA := a.FinishPosition()
		fb, okB := b.FinishPosition()
		if okA && okB {
			raceGaps = append(raceGaps, float64(fa-fb))
		}
	}

	out.AvgQualifyingGap = gridGaps.MeanPtr()
	out.AvgRaceGap = raceGaps.MeanPtr()
	return out
}
