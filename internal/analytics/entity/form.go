package entity

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// FormResult is the output of FormIndicator
type FormResult struct {
	AvgPosition      *float64        `json:"avg_position"`
	TotalPoints      float64         `json:"total_points"`
	Direction        analytics.Trend `json:"trend_direction,omitempty"`
	Slope            *float64        `json:"trend_slope"`
	RacesAnalyzed    int             `json:"races_analyzed"`
	Window           int             `json:"window"`
	InsufficientData bool            `json:"insufficient_data"`
}

// FormIndicator summarises the most recent classified finishes. results must
// be ordered most recent first. The slope is fitted over list index, so a
// negative slope (positions falling along the list) reads as improving.
func FormIndicator(results []models.RaceResult, window int, slopeThreshold float64) FormResult {
	if window < 1 {
		window = analytics.DefaultFormWindow
	}

	var positions analytics.Series
	out := FormResult{Window: window}
	for _, r := range results {
		if len(positions) == window {
			break
		}
		pos, ok := r.FinishPosition()
		if !ok {
			continue
		}
		positions = append(positions, float64(pos))
		out.TotalPoints += r.Points
	}

	out.RacesAnalyzed = len(positions)
	if out.RacesAnalyzed == 0 {
		out.InsufficientData = true
		return out
	}

	out.AvgPosition = positions.MeanPtr()
	out.Direction = analytics.TrendStable
	if slope := analytics.Slope(positions); slope != nil {
		out.Slope = slope
		out.Direction = analytics.ClassifyPositionTrend(*slope, slopeThreshold)
	}
	return out
}
