// Package compare lines up several entities, or one entity over several
// seasons, on the same standardized metrics.
package compare

import (
	"sort"

	"github.com/gridstats/gridstats/internal/analytics/entity"
	"github.com/gridstats/gridstats/internal/models"
)

// Row is one entity's standardized metrics
type Row struct {
	Entity        string   `json:"entity"`
	Races         int      `json:"races"`
	AvgFinish     *float64 `json:"avg_finish"`
	PointsPerRace float64  `json:"points_per_race"`
	Consistency   *float64 `json:"consistency_score"`
	DNFRate       float64  `json:"dnf_rate"`
}

func buildRow(name string, results []models.RaceResult, minRaces int) Row {
	return Row{
		Entity:        name,
		Races:         len(results),
		AvgFinish:     entity.AverageFinish(results),
		PointsPerRace: entity.PointsPerRace(results, false).PointsPerRace,
		Consistency:   entity.Consistency(results, minRaces).Score,
		DNFRate:       entity.DNFRate(results).Percentage,
	}
}

// Entities computes each entity's metrics independently. Rows are sorted by
// entity name so the output does not depend on map iteration order.
func Entities(byEntity map[string][]models.RaceResult, minRaces int) []Row {
	names := make([]string, 0, len(byEntity))
	for name := range byEntity {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, buildRow(name, byEntity[name], minRaces))
	}
	return rows
}
