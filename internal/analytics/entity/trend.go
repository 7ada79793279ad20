package entity

import (
	"fmt"

	"github.com/gridstats/gridstats/internal/models"
)

// TrendMetric selects the per-race value in PerformanceTrend
type TrendMetric string

const (
	MetricPosition TrendMetric = "position"
	MetricPoints   TrendMetric = "points"
)

// ParseTrendMetric accepts "position" or "points"
func ParseTrendMetric(s string) (TrendMetric, error) {
	switch TrendMetric(s) {
	case MetricPosition, MetricPoints:
		return TrendMetric(s), nil
	case "":
		return MetricPosition, nil
	}
	return "", fmt.Errorf("unknown trend metric %q", s)
}

// TrendPoint is one race in a performance trend series
type TrendPoint struct {
	Season           int      `json:"season"`
	Round            int      `json:"round"`
	RaceName         string   `json:"race_name"`
	Value            *float64 `json:"value"` // nil when position is requested for a non-finish
	CumulativePoints float64  `json:"cumulative_points"`
	Status           string   `json:"status"`
}

// PerformanceTrend returns one row per race in chronological order
func PerformanceTrend(results []models.RaceResult, metric TrendMetric) []TrendPoint {
	sorted := models.SortChronological(results)
	out := make([]TrendPoint, 0, len(sorted))
	cumulative := 0.0
	for _, r := range sorted {
		cumulative += r.Points
		p := TrendPoint{
			Season:           r.Season,
			Round:            r.Round,
			RaceName:         r.RaceName,
			CumulativePoints: cumulative,
			Status:           r.Status,
		}
		switch metric {
		case MetricPoints:
			v := r.Points
			p.Value = &v
		default:
			if pos, ok := r.FinishPosition(); ok {
				v := float64(pos)
				p.Value = &v
			}
		}
		out = append(out, p)
	}
	return out
}
