package field

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// GridRow is the conversion record of one starting slot
type GridRow struct {
	Grid         int     `json:"grid_position"`
	WinPct       float64 `json:"win_pct"`
	PodiumPct    float64 `json:"podium_pct"`
	PointsPct    float64 `json:"points_pct"`
	Starts       int     `json:"starts"`
	Wins         int     `json:"wins"`
	Podiums      int     `json:"podiums"`
	PointsFinish int     `json:"points_finishes"`
}

// GridWinProbability returns one row per slot from 1 to gridSize, extended
// when a later slot was observed. Starts without a grid slot (pit lane or
// missing data) are not counted. A slot nobody started from reports 0%.
func GridWinProbability(results []models.RaceResult, gridSize int) []GridRow {
	if gridSize < 1 {
		gridSize = analytics.DefaultGridSize
	}
	for _, r := range results {
		if g, ok := r.GridPosition(); ok && g > gridSize {
			gridSize = g
		}
	}

	rows := make([]GridRow, gridSize)
	for i := range rows {
		rows[i].Grid = i + 1
	}

	for _, r := range results {
		g, ok := r.GridPosition()
		if !ok || g < 1 {
			continue
		}
		row := &rows[g-1]
		row.Starts++
		if r.Points > 0 {
			row.PointsFinish++
		}
		pos, ok := r.FinishPosition()
		if !ok {
			continue
		}
		if pos == 1 {
			row.Wins++
		}
		if pos <= 3 {
			row.Podiums++
		}
	}

	for i := range rows {
		row := &rows[i]
		row.WinPct = analytics.Percent(row.Wins, row.Starts)
		row.PodiumPct = analytics.Percent(row.Podiums, row.Starts)
		row.PointsPct = analytics.Percent(row.PointsFinish, row.Starts)
	}
	return rows
}
