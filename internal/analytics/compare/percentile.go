package compare

import (
	"math"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/analytics/entity"
	"github.com/gridstats/gridstats/internal/models"
)

// PercentileResult ranks a target against the reference population. Each
// percentile is the share of the population the target outperforms.
type PercentileResult struct {
	AvgFinish      *float64 `json:"avg_finish_percentile"`
	TotalPoints    *float64 `json:"total_points_percentile"`
	Consistency    *float64 `json:"consistency_percentile"`
	ReferenceSize  int      `json:"reference_population"`
	TotalRaces     int      `json:"total_races"`
	RequiredRaces  int      `json:"required_races"`
	TargetIncluded bool     `json:"target_found"`
}

type profile struct {
	avgFinish   *float64
	points      float64
	consistency *float64
}

func profileOf(results []models.RaceResult, minRaces int) profile {
	return profile{
		avgFinish:   entity.AverageFinish(results),
		points:      entity.TotalPoints(results),
		consistency: entity.Consistency(results, minRaces).Score,
	}
}

// Percentile ranks targetID within all. Only entities that entered at least
// participation (0-1) of the distinct races in all count as reference; the
// target itself is never part of it. An undefined reference value is
// outperformed by any defined target value. An undefined target value, an
// empty reference population or a target missing from all leaves that
// percentile nil.
func Percentile(targetID string, all map[string][]models.RaceResult, participation float64, minRaces int) PercentileResult {
	if participation <= 0 || participation > 1 {
		participation = analytics.DefaultParticipationThreshold
	}

	races := make(map[models.RaceKey]struct{})
	for _, results := range all {
		for _, r := range results {
			races[r.Key()] = struct{}{}
		}
	}

	out := PercentileResult{
		TotalRaces:    len(races),
		RequiredRaces: int(math.Ceil(float64(len(races)) * participation)),
	}

	targetResults, ok := all[targetID]
	out.TargetIncluded = ok
	target := profileOf(targetResults, minRaces)

	var reference []profile
	for id, results := range all {
		if id == targetID || distinctRaces(results) < out.RequiredRaces || len(results) == 0 {
			continue
		}
		reference = append(reference, profileOf(results, minRaces))
	}
	out.ReferenceSize = len(reference)
	if !ok || len(reference) == 0 {
		return out
	}

	if target.avgFinish != nil {
		beaten := 0
		for _, p := range reference {
			if p.avgFinish == nil || *target.avgFinish < *p.avgFinish {
				beaten++
			}
		}
		out.AvgFinish = share(beaten, len(reference))
	}

	beaten := 0
	for _, p := range reference {
		if target.points > p.points {
			beaten++
		}
	}
	out.TotalPoints = share(beaten, len(reference))

	if target.consistency != nil {
		beaten = 0
		for _, p := range reference {
			if p.consistency == nil || *target.consistency > *p.consistency {
				beaten++
			}
		}
		out.Consistency = share(beaten, len(reference))
	}
	return out
}

func share(n, total int) *float64 {
	return analytics.Float64Ptr(analytics.Percent(n, total))
}

func distinctRaces(results []models.RaceResult) int {
	seen := make(map[models.RaceKey]struct{}, len(results))
	for _, r := range results {
		seen[r.Key()] = struct{}{}
	}
	return len(seen)
}
