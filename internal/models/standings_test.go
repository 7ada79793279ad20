package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDriverStandings(t *testing.T) {
	rows := []DriverStanding{
		{Driver: Driver{ID: "norris"}, Points: 150, Wins: 1},
		{Driver: Driver{ID: "leclerc"}, Points: 150, Wins: 2},
		{Driver: Driver{ID: "verstappen"}, Points: 250, Wins: 7},
		{Driver: Driver{ID: "alonso"}, Points: 150, Wins: 1},
	}

	sorted := SortDriverStandings(rows)

	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.Driver.ID
		assert.Equal(t, i+1, r.Position)
	}
	assert.Equal(t, []string{"verstappen", "leclerc", "alonso", "norris"}, ids)
	assert.Equal(t, "norris", rows[0].Driver.ID, "input is not reordered")
}

func TestSortConstructorStandings(t *testing.T) {
	rows := []ConstructorStanding{
		{Constructor: Constructor{ID: "ferrari"}, Points: 400, Wins: 3},
		{Constructor: Constructor{ID: "mclaren"}, Points: 400, Wins: 5},
	}
	sorted := SortConstructorStandings(rows)
	assert.Equal(t, "mclaren", sorted[0].Constructor.ID)
	assert.Equal(t, 2, sorted[1].Position)
}

func TestLookups(t *testing.T) {
	drivers := []DriverStanding{
		{Driver: Driver{ID: "max_verstappen", GivenName: "Max", FamilyName: "Verstappen"}},
		{Driver: Driver{ID: "leclerc", GivenName: "Charles", FamilyName: "Leclerc"}},
	}
	id, ok := FindDriverID("Charles Leclerc", drivers)
	assert.True(t, ok)
	assert.Equal(t, "leclerc", id)

	_, ok = FindDriverID("Ayrton Senna", drivers)
	assert.False(t, ok)

	teams := []ConstructorStanding{{Constructor: Constructor{ID: "red_bull", Name: "Red Bull"}}}
	id, ok = FindConstructorID("Red Bull", teams)
	assert.True(t, ok)
	assert.Equal(t, "red_bull", id)

	assert.Equal(t, "Unknown", DriverStanding{}.Team())
}
