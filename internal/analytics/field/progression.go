package field

import (
	"sort"

	"github.com/gridstats/gridstats/internal/models"
)

// ProgressionPoint is a driver's running total after one round
type ProgressionPoint struct {
	Round      int     `json:"round"`
	RaceName   string  `json:"race_name"`
	DriverID   string  `json:"driver_id"`
	DriverName string  `json:"driver"`
	Points     float64 `json:"points"`
	Cumulative float64 `json:"cumulative_points"`
}

// ChampionshipProgression accumulates points round by round. Once a driver
// has appeared, they carry a point for every later round, scoring zero in
// rounds they missed. Within a round, points are ordered by running total.
func ChampionshipProgression(results []models.RaceResult) []ProgressionPoint {
	order, groups := models.GroupByRace(models.SortChronological(results))

	totals := make(map[string]float64)
	names := make(map[string]string)
	var drivers []string
	var out []ProgressionPoint

	for _, k := range order {
		race := groups[k]
		scored := make(map[string]float64, len(race))
		for _, r := range race {
			if _, ok := names[r.DriverID]; !ok {
				drivers = append(drivers, r.DriverID)
			}
			names[r.DriverID] = r.DriverName
			scored[r.DriverID] += r.Points
		}

		round := make([]ProgressionPoint, 0, len(drivers))
		for _, id := range drivers {
			totals[id] += scored[id]
			round = append(round, ProgressionPoint{
				Round:      k.Round,
				RaceName:   race[0].RaceName,
				DriverID:   id,
				DriverName: names[id],
				Points:     scored[id],
				Cumulative: totals[id],
			})
		}
		sort.SliceStable(round, func(i, j int) bool {
			return round[i].Cumulative > round[j].Cumulative
		})
		out = append(out, round...)
	}
	return out
}
