package entity

import "github.com/gridstats/gridstats/internal/models"

// Scope selects the races a metric is computed over
type Scope struct {
	Season int `json:"season,omitempty"` // 0 means every season
	LastN  int `json:"last_n,omitempty"` // 0 means every race
}

// AllTime keeps every result
func AllTime() Scope { return Scope{} }

// SeasonScope keeps one season
func SeasonScope(season int) Scope { return Scope{Season: season} }

// LastN keeps the n most recent races
func LastN(n int) Scope { return Scope{LastN: n} }

// Apply filters results to the scope. Output is chronological.
func (s Scope) Apply(results []models.RaceResult) []models.RaceResult {
	sorted := models.SortChronological(results)

	if s.Season != 0 {
		filtered := sorted[:0:0]
		for _, r := range sorted {
			if r.Season == s.Season {
				filtered = append(filtered, r)
			}
		}
		sorted = filtered
	}

	if s.LastN > 0 {
		order, _ := models.GroupByRace(sorted)
		if len(order) > s.LastN {
			cutoff := order[len(order)-s.LastN]
			for i, r := range sorted {
				if r.Key() == cutoff {
					sorted = sorted[i:]
					break
				}
			}
		}
	}

	return sorted
}

// MostRecentFirst returns a copy of results ordered newest race first
func MostRecentFirst(results []models.RaceResult) []models.RaceResult {
	sorted := models.SortChronological(results)
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted
}
