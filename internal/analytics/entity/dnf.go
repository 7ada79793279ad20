package entity

import (
	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
)

// DNFRateResult is the output of DNFRate
type DNFRateResult struct {
	Percentage float64                       `json:"dnf_percentage"`
	Count      int                           `json:"dnf_count"`
	Total      int                           `json:"total_races"`
	Causes     map[string]int                `json:"dnf_causes"`
	Categories map[analytics.DNFCategory]int `json:"dnf_categories"`
}

// DNFRate counts retirements within results. Causes keys are the raw
// upstream statuses; Categories buckets them as mechanical, accident, other.
func DNFRate(results []models.RaceResult) DNFRateResult {
	out := DNFRateResult{
		Total:      len(results),
		Causes:     make(map[string]int),
		Categories: make(map[analytics.DNFCategory]int),
	}

	for _, r := range results {
		if !r.IsDNF() {
			continue
		}
		out.Count++
		cause := r.Cause()
		if cause == "" {
			cause = "Unknown"
		}
		out.Causes[cause]++
		out.Categories[analytics.CategorizeCause(cause)]++
	}

	out.Percentage = analytics.Percent(out.Count, out.Total)
	return out
}

// MechanicalDNFs counts retirements in the mechanical category
func MechanicalDNFs(results []models.RaceResult) int {
	n := 0
	for _, r := range results {
		if r.IsDNF() && analytics.CategorizeCause(r.Cause()) == analytics.CategoryMechanical {
			n++
		}
	}
	return n
}
