// Package field computes metrics over the whole grid rather than a single
// driver or team: circuit difficulty, grid-slot conversion, championship
// projection and progression.
package field

import (
	"math"
	"sort"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// DifficultyRow rates one circuit
type DifficultyRow struct {
	CircuitID         string   `json:"circuit_id"`
	CircuitName       string   `json:"circuit_name"`
	DNFRate           float64  `json:"dnf_rate"`
	AvgPositionChange *float64 `json:"avg_position_change"`
	Score             float64  `json:"difficulty_score"`
	Races             int      `json:"races_analyzed"`
	Starts            int      `json:"starts"`
}

// CircuitDifficulty blends each circuit's DNF rate (per start) with the mean
// grid-to-finish change of classified cars carrying a grid slot:
//
//	score = clamp(dnf_rate*DifficultyDNFWeight + |avg_change|*DifficultyChangeWeight, 0, 100)
//
// Rows are ordered hardest first, ties by circuit id.
func CircuitDifficulty(results []models.RaceResult) []DifficultyRow {
	type acc struct {
		row     DifficultyRow
		dnfs    int
		changes analytics.Series
		races   map[models.RaceKey]struct{}
	}

	byCircuit := make(map[string]*acc)
	for _, r := range results {
		a, ok := byCircuit[r.CircuitID]
		if !ok {
			a = &acc{
				row:   DifficultyRow{CircuitID: r.CircuitID, CircuitName: r.CircuitName},
				races: make(map[models.RaceKey]struct{}),
			}
			byCircuit[r.CircuitID] = a
		}
		a.row.Starts++
		a.races[r.Key()] = struct{}{}
		if r.IsDNF() {
			a.dnfs++
		}
		grid, okGrid := r.GridPosition()
		pos, okPos := r.FinishPosition()
		if okGrid && okPos {
			a.changes = append(a.changes, float64(grid-pos))
		}
	}

	rows := make([]DifficultyRow, 0, len(byCircuit))
	for _, a := range byCircuit {
		row := a.row
		row.Races = len(a.races)
		row.DNFRate = analytics.Percent(a.dnfs, row.Starts)
		row.AvgPositionChange = a.changes.MeanPtr()

		change := 0.0
		if row.AvgPositionChange != nil {
			change = math.Abs(*row.AvgPositionChange)
		}
		row.Score = analytics.Clamp(
			row.DNFRate*analytics.DifficultyDNFWeight+change*analytics.DifficultyChangeWeight, 0, 100)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].CircuitID < rows[j].CircuitID
	})
	return rows
}
