package compare

import (
	"math"
	"sort"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// ReferenceWinPoints is the win value every season is normalized to
const ReferenceWinPoints = 25.0

// WinPoints returns the points awarded for a win in a season. Seasons before
// 1950 use the earliest known scale.
func WinPoints(season int) float64 {
	switch {
	case season <= 1960:
		return 8
	case season <= 1990:
		return 9
	case season <= 2009:
		return 10
	default:
		return 25
	}
}

// NormalizePoints rescales a season's points to the modern scale
func NormalizePoints(points float64, season int) float64 {
	return points * ReferenceWinPoints / WinPoints(season)
}

// Delta holds year-over-year percent changes. A nil field means the previous
// season's value was zero or either value is undefined.
type Delta struct {
	AvgFinish     *float64 `json:"avg_finish"`
	PointsPerRace *float64 `json:"points_per_race"`
	Consistency   *float64 `json:"consistency_score"`
	DNFRate       *float64 `json:"dnf_rate"`
}

// SeasonRow is one season of a season-over-season comparison
type SeasonRow struct {
	Season                  int      `json:"season"`
	Races                   int      `json:"races"`
	AvgFinish               *float64 `json:"avg_finish"`
	PointsPerRace           float64  `json:"points_per_race"`
	NormalizedPointsPerRace float64  `json:"normalized_points_per_race"`
	Consistency             *float64 `json:"consistency_score"`
	DNFRate                 float64  `json:"dnf_rate"`
	Change                  *Delta   `json:"yoy_change"`
}

// Seasons computes per-season metrics in ascending season order and the
// percent change against the previous listed season. Points per race is
// compared on the normalized scale.
func Seasons(bySeason map[int][]models.RaceResult, minRaces int) []SeasonRow {
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	rows := make([]SeasonRow, 0, len(seasons))
	for i, s := range seasons {
		base := buildRow("", bySeason[s], minRaces)
		row := SeasonRow{
			Season:                  s,
			Races:                   base.Races,
			AvgFinish:               base.AvgFinish,
			PointsPerRace:           base.PointsPerRace,
			NormalizedPointsPerRace: NormalizePoints(base.PointsPerRace, s),
			Consistency:             base.Consistency,
			DNFRate:                 base.DNFRate,
		}
		if i > 0 {
			prev := rows[i-1]
			row.Change = &Delta{
				AvgFinish:     percentChange(row.AvgFinish, prev.AvgFinish),
				PointsPerRace: percentChange(&row.NormalizedPointsPerRace, &prev.NormalizedPointsPerRace),
				Consistency:   percentChange(row.Consistency, prev.Consistency),
				DNFRate:       percentChange(&row.DNFRate, &prev.DNFRate),
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func percentChange(cur, prev *float64) *float64 {
	if cur == nil || prev == nil {
		return nil
	}
	ratio := analytics.SafeDividePtr(*cur-*prev, math.Abs(*prev))
	if ratio == nil {
		return nil
	}
	return analytics.Float64Ptr(*ratio * 100)
}
