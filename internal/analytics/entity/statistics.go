package entity

import "github.com/gridstats/gridstats/internal/models"

// DriverStats is a season (or career) summary for one driver
type DriverStats struct {
	TotalRaces    int      `json:"total_races"`
	Wins          int      `json:"wins"`
	Podiums       int      `json:"podiums"`
	TotalPoints   float64  `json:"total_points"`
	AvgFinish     *float64 `json:"avg_finish"`
	DNFCount      int      `json:"dnf_count"`
	PolePositions int      `json:"pole_positions"`
	FastestLaps   int      `json:"fastest_laps"`
}

// DriverStatistics counts wins, podiums, poles (grid 1) and fastest laps
// (rank 1). Any non-classified result counts toward DNFCount.
func DriverStatistics(results []models.RaceResult) DriverStats {
	var out DriverStats
	for _, r := range results {
		out.TotalRaces++
		out.TotalPoints += r.Points

		if pos, ok := r.FinishPosition(); ok {
			if pos == 1 {
				out.Wins++
			}
			if pos <= 3 {
				out.Podiums++
			}
		} else {
			out.DNFCount++
		}

		if grid, ok := r.GridPosition(); ok && grid == 1 {
			out.PolePositions++
		}
		if r.FastestLapRank == 1 {
			out.FastestLaps++
		}
	}
	out.AvgFinish = AverageFinish(results)
	return out
}
