package team

import (
	"sort"

	"github.com/gridstats/gridstats/internal/models"
)

// ConstructorStats is a season summary for one constructor
type ConstructorStats struct {
	TotalRaces     int     `json:"total_races"`
	Wins           int     `json:"wins"`
	Podiums        int     `json:"podiums"`
	TotalPoints    float64 `json:"total_points"`
	OneTwoFinishes int     `json:"one_two_finishes"`
	DNFCount       int     `json:"dnf_count"`
}

// ConstructorStatistics counts per car (wins, podiums, DNFs) and per race
// (1-2 finishes). Any non-classified car counts as a DNF.
func ConstructorStatistics(results []models.RaceResult) ConstructorStats {
	order, groups := models.GroupByRace(results)
	out := ConstructorStats{TotalRaces: len(order)}

	for _, k := range order {
		var positions []int
		for _, r := range groups[k] {
			out.TotalPoints += r.Points
			pos, ok := r.FinishPosition()
			if !ok {
				out.DNFCount++
				continue
			}
			positions = append(positions, pos)
			if pos == 1 {
				out.Wins++
			}
			if pos <= 3 {
				out.Podiums++
			}
		}
		if len(positions) >= 2 {
			sort.Ints(positions)
			if positions[0] == 1 && positions[1] == 2 {
				out.OneTwoFinishes++
			}
		}
	}
	return out
}
