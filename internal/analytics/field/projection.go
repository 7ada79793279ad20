package field

import (
	"fmt"
	"sort"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// Contender is one championship entry fed to a projection. Recent holds the
// points scored in each race of the recent-form window.
type Contender struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Points float64   `json:"points"`
	Wins   int       `json:"wins"`
	Recent []float64 `json:"recent_points"`
}

// ContendersFromDrivers turns standings into contenders, attaching each
// driver's recent points by driver id.
func ContendersFromDrivers(rows []models.DriverStanding, recent map[string][]float64) []Contender {
	out := make([]Contender, 0, len(rows))
	for _, s := range rows {
		out = append(out, Contender{
			ID:     s.Driver.ID,
			Name:   s.Driver.FullName(),
			Points: s.Points,
			Wins:   s.Wins,
			Recent: recent[s.Driver.ID],
		})
	}
	return out
}

// ProjectionRow is one contender's projected season total
type ProjectionRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CurrentPoints     float64 `json:"current_points"`
	CurrentPosition   int     `json:"current_position"`
	Optimistic        float64 `json:"optimistic"`
	Realistic         float64 `json:"realistic"`
	Pessimistic       float64 `json:"pessimistic"`
	ProjectedPosition int     `json:"projected_position"`
}

// ProjectionResult is the output of ChampionshipProjection
type ProjectionResult struct {
	RemainingRaces int             `json:"remaining_races"`
	Rows           []ProjectionRow `json:"standings"`
	LowRemaining   bool            `json:"low_remaining_races"`
	Notice         string          `json:"notice,omitempty"`
}

// ChampionshipProjection extends each contender's points over the remaining
// races at its best (optimistic), mean (realistic) and worst, floored at zero
// (pessimistic) recent points per race. Contenders must arrive in current
// championship order; rows are reordered by the realistic total and ties keep
// that order. A contender with no recent races gains nothing.
func ChampionshipProjection(contenders []Contender, remaining, lowThreshold int) ProjectionResult {
	if remaining < 0 {
		remaining = 0
	}
	if lowThreshold < 1 {
		lowThreshold = analytics.DefaultLowRemainingRaces
	}

	out := ProjectionResult{RemainingRaces: remaining, Rows: make([]ProjectionRow, 0, len(contenders))}
	left := float64(remaining)
	for i, c := range contenders {
		row := ProjectionRow{
			ID:              c.ID,
			Name:            c.Name,
			CurrentPoints:   c.Points,
			CurrentPosition: i + 1,
			Optimistic:      c.Points,
			Realistic:       c.Points,
			Pessimistic:     c.Points,
		}
		if recent := analytics.Series(c.Recent); recent.Len() > 0 {
			row.Optimistic += recent.Max() * left
			row.Realistic += recent.Mean() * left
			row.Pessimistic += maxFloat(0, recent.Min()) * left
		}
		out.Rows = append(out.Rows, row)
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].Realistic > out.Rows[j].Realistic
	})
	for i := range out.Rows {
		out.Rows[i].ProjectedPosition = i + 1
	}

	if remaining < lowThreshold {
		out.LowRemaining = true
		out.Notice = fmt.Sprintf("only %d races remaining; projections carry little weight", remaining)
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
