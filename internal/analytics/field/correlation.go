package field

import (
	"sort"

	"github.com/gridstats/gridstats/internal/analytics/entity"
	"github.com/gridstats/gridstats/internal/models"
)

// DriverCorrelation is one driver's grid-to-finish correlation
type DriverCorrelation struct {
	DriverID   string `json:"driver_id"`
	DriverName string `json:"driver_name"`
	entity.CorrelationResult
}

// SeasonCorrelationResult pairs the field-wide correlation with each driver's
type SeasonCorrelationResult struct {
	Field   entity.CorrelationResult `json:"field"`
	Drivers []DriverCorrelation      `json:"drivers"`
}

// SeasonCorrelation computes the grid-to-finish correlation over every
// classified start, then per driver. Drivers are listed by name.
func SeasonCorrelation(results []models.RaceResult, minRaces int) SeasonCorrelationResult {
	out := SeasonCorrelationResult{Field: entity.QualiRaceCorrelation(results, minRaces)}
	out.Field.Pairs = []entity.GridFinish{}

	byDriver := make(map[string][]models.RaceResult)
	names := make(map[string]string)
	var ids []string
	for _, r := range results {
		if _, ok := byDriver[r.DriverID]; !ok {
			ids = append(ids, r.DriverID)
			names[r.DriverID] = r.DriverName
		}
		byDriver[r.DriverID] = append(byDriver[r.DriverID], r)
	}
	sort.Slice(ids, func(i, j int) bool {
		if names[ids[i]] != names[ids[j]] {
			return names[ids[i]] < names[ids[j]]
		}
		return ids[i] < ids[j]
	})

	out.Drivers = make([]DriverCorrelation, 0, len(ids))
	for _, id := range ids {
		out.Drivers = append(out.Drivers, DriverCorrelation{
			DriverID:          id,
			DriverName:        names[id],
			CorrelationResult: entity.QualiRaceCorrelation(byDriver[id], minRaces),
		})
	}
	return out
}
