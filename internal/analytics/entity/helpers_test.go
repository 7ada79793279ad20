package entity

import (
	"strconv"

	"github.com/gridstats/gridstats/internal/models"
)

// result builds a RaceResult the way the API boundary would decode it
func result(round int, positionText, status string, points float64, grid int) models.RaceResult {
	r := models.RaceResult{
		Season:    2024,
		Round:     round,
		RaceName:  "Race " + strconv.Itoa(round),
		CircuitID: "monza",
		DriverID:  "driver",
		Outcome:   models.DecodeOutcome(positionText, status),
		Points:    points,
		Status:    status,
	}
	if grid > 0 {
		r.Grid = models.IntPtr(grid)
	}
	return r
}

func finished(round, pos int, points float64) models.RaceResult {
	return result(round, strconv.Itoa(pos), "Finished", points, pos)
}

func retired(round int, cause string) models.RaceResult {
	return result(round, "R", cause, 0, 10)
}

func positions(ps ...int) []models.RaceResult {
	out := make([]models.RaceResult, len(ps))
	for i, p := range ps {
		out[i] = finished(i+1, p, 0)
	}
	return out
}
