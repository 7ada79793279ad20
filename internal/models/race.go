package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Circuit is a race venue
type Circuit struct {
	ID       string `json:"circuit_id"`
	Name     string `json:"name"`
	Locality string `json:"locality,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Race is one calendar entry
type Race struct {
	Season  int     `json:"season"`
	Round   int     `json:"round"`
	Name    string  `json:"name"`
	Date    string  `json:"date"`           // YYYY-MM-DD
	Time    string  `json:"time,omitempty"` // HH:MM:SSZ
	Circuit Circuit `json:"circuit"`
}

// Driver identifies a driver
type Driver struct {
	ID          string `json:"driver_id"`
	Code        string `json:"code,omitempty"`
	Number      string `json:"number,omitempty"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	Nationality string `json:"nationality,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// FullName returns "Given Family"
func (d Driver) FullName() string {
	return FormatDriverName(d.GivenName, d.FamilyName)
}

// FormatDriverName joins given and family names for display
func FormatDriverName(given, family string) string {
	return given + " " + family
}

// Constructor identifies a team
type Constructor struct {
	ID          string `json:"constructor_id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
}

// RaceResult is one entry's outcome in one race. Values are immutable once decoded.
type RaceResult struct {
	Season          int         `json:"season"`
	Round           int         `json:"round"`
	RaceName        string      `json:"race_name"`
	Date            string      `json:"date"`
	CircuitID       string      `json:"circuit_id"`
	CircuitName     string      `json:"circuit_name"`
	DriverID        string      `json:"driver_id"`
	DriverName      string      `json:"driver_name"`
	ConstructorID   string      `json:"constructor_id"`
	ConstructorName string      `json:"constructor_name"`
	Grid            *int        `json:"grid"` // nil for pit-lane starts and missing data
	Outcome         RaceOutcome `json:"-"`
	Points          float64     `json:"points"`
	Status          string      `json:"status"`
	FastestLapRank  int         `json:"fastest_lap_rank,omitempty"`
}

// FinishPosition returns the classified position, if any
func (r RaceResult) FinishPosition() (int, bool) {
	if c, ok := r.Outcome.(Classified); ok {
		return c.Position, true
	}
	return 0, false
}

// Classified reports whether the entry was classified at the finish
func (r RaceResult) Classified() bool {
	_, ok := r.Outcome.(Classified)
	return ok
}

// IsDNF reports a retirement or disqualification
func (r RaceResult) IsDNF() bool {
	switch r.Outcome.(type) {
	case Retired, Disqualified:
		return true
	}
	return false
}

// Cause is the retirement cause, or the raw status for disqualifications
func (r RaceResult) Cause() string {
	if ret, ok := r.Outcome.(Retired); ok && ret.Cause != "" {
		return ret.Cause
	}
	return r.Status
}

// GridPosition returns the starting slot, if known
func (r RaceResult) GridPosition() (int, bool) {
	if r.Grid == nil {
		return 0, false
	}
	return *r.Grid, true
}

// RaceKey identifies a race across seasons
type RaceKey struct {
	Season int
	Round  int
}

func (k RaceKey) String() string {
	return fmt.Sprintf("%d/%d", k.Season, k.Round)
}

// Key returns the race this result belongs to
func (r RaceResult) Key() RaceKey {
	return RaceKey{Season: r.Season, Round: r.Round}
}

type raceResultAlias RaceResult

type raceResultJSON struct {
	raceResultAlias
	Outcome json.RawMessage `json:"outcome"`
}

// MarshalJSON encodes the outcome alongside the flat fields
func (r RaceResult) MarshalJSON() ([]byte, error) {
	outcome, err := MarshalOutcome(r.Outcome)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raceResultJSON{raceResultAlias: raceResultAlias(r), Outcome: outcome})
}

// UnmarshalJSON restores the outcome variant
func (r *RaceResult) UnmarshalJSON(data []byte) error {
	var in raceResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = RaceResult(in.raceResultAlias)
	r.Outcome = Unknown{}
	if len(in.Outcome) > 0 && string(in.Outcome) != "null" {
		outcome, err := UnmarshalOutcome(in.Outcome)
		if err != nil {
			return err
		}
		r.Outcome = outcome
	}
	return nil
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// SortChronological returns a copy of results ordered by season then round.
// Entries within a race keep their input order.
func SortChronological(results []RaceResult) []RaceResult {
	out := make([]RaceResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].Round < out[j].Round
	})
	return out
}

// GroupByRace splits results into per-race groups in first-seen order
func GroupByRace(results []RaceResult) ([]RaceKey, map[RaceKey][]RaceResult) {
	var order []RaceKey
	groups := make(map[RaceKey][]RaceResult)
	for _, r := range results {
		k := r.Key()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	return order, groups
}
