package models

import "sort"

// DriverStanding is one row of the drivers' championship
type DriverStanding struct {
	Position     int           `json:"position"`
	Driver       Driver        `json:"driver"`
	Constructors []Constructor `json:"constructors,omitempty"`
	Points       float64       `json:"points"`
	Wins         int           `json:"wins"`
}

// Team returns the first listed constructor name, or "Unknown"
func (s DriverStanding) Team() string {
	if len(s.Constructors) == 0 {
		return "Unknown"
	}
	return s.Constructors[0].Name
}

// ConstructorStanding is one row of the constructors' championship
type ConstructorStanding struct {
	Position    int         `json:"position"`
	Constructor Constructor `json:"constructor"`
	Points      float64     `json:"points"`
	Wins        int         `json:"wins"`
}

// Standings rows arrive from the upstream API already ordered by championship
// rules (countback on lower placings included). Callers that assemble rows
// themselves must sort them with the functions below before relying on order.

// SortDriverStandings orders rows by points desc, then wins desc, then driver id,
// and renumbers Position.
func SortDriverStandings(rows []DriverStanding) []DriverStanding {
	out := make([]DriverStanding, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Driver.ID < out[j].Driver.ID
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// SortConstructorStandings applies the same rule to constructors
func SortConstructorStandings(rows []ConstructorStanding) []ConstructorStanding {
	out := make([]ConstructorStanding, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Constructor.ID < out[j].Constructor.ID
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// FindDriverID looks up a driver id by display name ("Max Verstappen")
func FindDriverID(name string, rows []DriverStanding) (string, bool) {
	for _, s := range rows {
		if s.Driver.FullName() == name {
			return s.Driver.ID, true
		}
	}
	return "", false
}

// FindConstructorID looks up a constructor id by display name ("Red Bull")
func FindConstructorID(name string, rows []ConstructorStanding) (string, bool) {
	for _, s := range rows {
		if s.Constructor.Name == name {
			return s.Constructor.ID, true
		}
	}
	return "", false
}
