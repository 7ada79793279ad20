package entity

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// PointsPerRaceResult is the output of PointsPerRace
type PointsPerRaceResult struct {
	PointsPerRace float64 `json:"points_per_race"`
	TotalPoints   float64 `json:"total_points"`
	RacesCounted  int     `json:"races_counted"`
	ExcludedDNF   bool    `json:"excluded_dnf"`
}

// PointsPerRace divides total points by the race count. With excludeDNF the
// denominator only counts races without a retirement; points scored in those
// races still count toward the total.
func PointsPerRace(results []models.RaceResult, excludeDNF bool) PointsPerRaceResult {
	out := PointsPerRaceResult{ExcludedDNF: excludeDNF}
	for _, r := range results {
		out.TotalPoints += r.Points
		if excludeDNF && r.IsDNF() {
			continue
		}
		out.RacesCounted++
	}
	out.PointsPerRace = analytics.SafeDivide(out.TotalPoints, float64(out.RacesCounted), 0)
	return out
}

// TotalPoints sums points over results
func TotalPoints(results []models.RaceResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.Points
	}
	return total
}

// RecentPoints returns the points of the first n results (most recent first
// input), one value per race, for projection windows.
func RecentPoints(results []models.RaceResult, n int) []float64 {
	if n < 1 || n > len(results) {
		n = len(results)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = results[i].Points
	}
	return out
}
