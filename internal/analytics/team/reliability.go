// Package team computes constructor-level metrics over both cars of a team.
package team

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/analytics/entity"
	"github.com/gridstats/gridstats/internal/models"
)

// ReliabilityResult is the output of Reliability
type ReliabilityResult struct {
	BothFinishedPct   float64  `json:"both_finished_pct"`
	BothFinished      int      `json:"both_finished"`
	AvgFinish         *float64 `json:"avg_finish"`
	MechanicalDNFRate float64  `json:"mechanical_dnf_rate"`
	MechanicalDNFs    int      `json:"mechanical_dnfs"`
	Starts            int      `json:"starts"`
	TotalRaces        int      `json:"total_races"`
}

// Reliability takes every result of a constructor's cars. A race counts as
// both-finished when at least two cars were entered and all were classified.
// The mechanical DNF rate is per car start.
func Reliability(results []models.RaceResult) ReliabilityResult {
	order, groups := models.GroupByRace(results)

	out := ReliabilityResult{TotalRaces: len(order), Starts: len(results)}
	for _, k := range order {
		cars := groups[k]
		if len(cars) < 2 {
			continue
		}
		all := true
		for _, c := range cars {
			if !c.Classified() {
				all = false
				break
			}
		}
		if all {
			out.BothFinished++
		}
	}

	out.BothFinishedPct = analytics.Percent(out.BothFinished, out.TotalRaces)
	out.AvgFinish = entity.AverageFinish(results)
	out.MechanicalDNFs = entity.MechanicalDNFs(results)
	out.MechanicalDNFRate = analytics.Percent(out.MechanicalDNFs, out.Starts)
	return out
}
