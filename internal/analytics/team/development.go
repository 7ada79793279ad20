package team

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// DevelopmentPoint is one race in a rolling development series.
// NoClassifiedFinish marks a race past the first window-1 whose whole window
// had no classified car, so RollingPosition is nil while RollingPoints is set.
type DevelopmentPoint struct {
	Season             int      `json:"season"`
	Round              int      `json:"round"`
	RaceName           string   `json:"race_name"`
	Points             float64  `json:"points"`
	AvgPosition        *float64 `json:"avg_position"`
	RollingPoints      *float64 `json:"rolling_avg_points"`
	RollingPosition    *float64 `json:"rolling_avg_position"`
	NoClassifiedFinish bool     `json:"no_classified_finish"`
}

// DevelopmentResult is the output of RollingDevelopment
type DevelopmentResult struct {
	Window int                `json:"window"`
	Races  []DevelopmentPoint `json:"races"`
	Trend  analytics.Trend    `json:"trend"`
	Slope  *float64           `json:"slope"`
}

// RollingDevelopment smooths a constructor's per-race points (summed over
// its cars) and average classified position over a trailing window. The
// first window-1 races have no rolling value. Later races always carry
// rolling points; the rolling position is nil only when no car finished
// classified anywhere in the window, and the race is flagged. The season trend is the slope
// of the rolling points; rising points are improving.
func RollingDevelopment(results []models.RaceResult, window int, slopeThreshold float64) DevelopmentResult {
	if window < 1 {
		window = analytics.DefaultRollingWindow
	}

	order, groups := models.GroupByRace(models.SortChronological(results))
	out := DevelopmentResult{Window: window, Races: make([]DevelopmentPoint, len(order)), Trend: analytics.TrendStable}

	points := make([]*float64, len(order))
	avgPos := make([]*float64, len(order))
	for i, k := range order {
		cars := groups[k]
		total := 0.0
		var positions analytics.Series
		for _, c := range cars {
			total += c.Points
			if pos, ok := c.FinishPosition(); ok {
				positions = append(positions, float64(pos))
			}
		}
		points[i] = analytics.Float64Ptr(total)
		avgPos[i] = positions.MeanPtr()
		out.Races[i] = DevelopmentPoint{
			Season:      k.Season,
			Round:       k.Round,
			RaceName:    cars[0].RaceName,
			Points:      total,
			AvgPosition: avgPos[i],
		}
	}

	rollingPoints := analytics.RollingMean(points, window)
	rollingPos := analytics.RollingMean(avgPos, window)
	var defined []float64
	for i := range out.Races {
		out.Races[i].RollingPoints = rollingPoints[i]
		out.Races[i].RollingPosition = rollingPos[i]
		out.Races[i].NoClassifiedFinish = i >= window-1 && rollingPos[i] == nil
		if rollingPoints[i] != nil {
			defined = append(defined, *rollingPoints[i])
		}
	}

	if slope := analytics.Slope(defined); slope != nil {
		out.Slope = slope
		out.Trend = analytics.ClassifyPointsTrend(*slope, slopeThreshold)
	}
	return out
}
