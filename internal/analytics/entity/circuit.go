package entity

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// CircuitResult is the output of CircuitPerformance. Rates are percentages.
type CircuitResult struct {
	CircuitID      string   `json:"circuit_id"`
	CircuitName    string   `json:"circuit_name,omitempty"`
	AvgFinish      *float64 `json:"avg_finish"`
	WinRate        float64  `json:"win_rate"`
	PodiumRate     float64  `json:"podium_rate"`
	PointsRate     float64  `json:"points_rate"`
	Appearances    int      `json:"appearances"`
	Wins           int      `json:"wins"`
	Podiums        int      `json:"podiums"`
	BestFinish     *int     `json:"best_finish"`
	LowSampleSize  bool     `json:"low_sample_size"`
	RequiredStarts int      `json:"required_appearances"`
}

// FilterByCircuit keeps results from one circuit
func FilterByCircuit(results []models.RaceResult, circuitID string) []models.RaceResult {
	var out []models.RaceResult
	for _, r := range results {
		if r.CircuitID == circuitID {
			out = append(out, r)
		}
	}
	return out
}

// CircuitPerformance summarises a driver's results at one circuit. The
// numbers are always computed; LowSampleSize flags fewer than
// minAppearances starts.
func CircuitPerformance(results []models.RaceResult, minAppearances int) CircuitResult {
	if minAppearances < 1 {
		minAppearances = analytics.DefaultMinCircuitAppearances
	}

	out := CircuitResult{Appearances: len(results), RequiredStarts: minAppearances}
	if len(results) > 0 {
		out.CircuitID = results[0].CircuitID
		out.CircuitName = results[0].CircuitName
	}

	scoring := 0
	for _, r := range results {
		if r.Points > 0 {
			scoring++
		}
		pos, ok := r.FinishPosition()
		if !ok {
			continue
		}
		if pos == 1 {
			out.Wins++
		}
		if pos <= 3 {
			out.Podiums++
		}
		if out.BestFinish == nil || pos < *out.BestFinish {
			best := pos
			out.BestFinish = &best
		}
	}

	out.AvgFinish = AverageFinish(results)
	out.WinRate = analytics.Percent(out.Wins, out.Appearances)
	out.PodiumRate = analytics.Percent(out.Podiums, out.Appearances)
	out.PointsRate = analytics.Percent(scoring, out.Appearances)
	out.LowSampleSize = out.Appearances < minAppearances
	return out
}
