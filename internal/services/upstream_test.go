package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/ergast"
	"github.com/gridstats/gridstats/internal/models"
)

// fakeUpstream serves fixture results and counts calls per method
type fakeUpstream struct {
	mu    sync.Mutex
	calls map[string]int

	results   map[string][]models.RaceResult // by season
	schedule  map[string][]models.Race
	standings map[string][]models.DriverStanding
	next      map[string]models.Race
	err       error
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		calls:     make(map[string]int),
		results:   make(map[string][]models.RaceResult),
		schedule:  make(map[string][]models.Race),
		standings: make(map[string][]models.DriverStanding),
		next:      make(map[string]models.Race),
	}
}

func (f *fakeUpstream) hit(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.err
}

func (f *fakeUpstream) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeUpstream) filter(season string, keep func(models.RaceResult) bool) []models.RaceResult {
	var out []models.RaceResult
	seasons := make([]string, 0, len(f.results))
	for s := range f.results {
		if season == "" || s == season {
			seasons = append(seasons, s)
		}
	}
	sort.Strings(seasons)
	for _, s := range seasons {
		for _, r := range f.results[s] {
			if keep(r) {
				out = append(out, r)
			}
		}
	}
	return out
}

func (f *fakeUpstream) LatestRace(_ context.Context, season string) (models.Race, []models.RaceResult, error) {
	if err := f.hit("LatestRace"); err != nil {
		return models.Race{}, nil, err
	}
	results := f.results[season]
	if len(results) == 0 {
		return models.Race{}, nil, ergast.ErrNoData
	}
	last := 0
	for _, r := range results {
		if r.Round > last {
			last = r.Round
		}
	}
	rs := f.filter(season, func(r models.RaceResult) bool { return r.Round == last })
	return models.Race{Season: rs[0].Season, Round: last, Name: rs[0].RaceName}, rs, nil
}

func (f *fakeUpstream) NextRace(_ context.Context, season string) (models.Race, error) {
	if err := f.hit("NextRace"); err != nil {
		return models.Race{}, err
	}
	race, ok := f.next[season]
	if !ok {
		return models.Race{}, ergast.ErrNoData
	}
	return race, nil
}

func (f *fakeUpstream) Schedule(_ context.Context, season string) ([]models.Race, error) {
	if err := f.hit("Schedule"); err != nil {
		return nil, err
	}
	return f.schedule[season], nil
}

func (f *fakeUpstream) SeasonResults(_ context.Context, season string) ([]models.RaceResult, error) {
	if err := f.hit("SeasonResults"); err != nil {
		return nil, err
	}
	return f.filter(season, func(models.RaceResult) bool { return true }), nil
}

func (f *fakeUpstream) DriverStandings(_ context.Context, season string) ([]models.DriverStanding, error) {
	if err := f.hit("DriverStandings"); err != nil {
		return nil, err
	}
	return f.standings[season], nil
}

func (f *fakeUpstream) DriverStandingsAfterRound(_ context.Context, season string, _ int) ([]models.DriverStanding, error) {
	if err := f.hit("DriverStandingsAfterRound"); err != nil {
		return nil, err
	}
	return f.standings[season], nil
}

func (f *fakeUpstream) ConstructorStandings(_ context.Context, _ string) ([]models.ConstructorStanding, error) {
	if err := f.hit("ConstructorStandings"); err != nil {
		return nil, err
	}
	return []models.ConstructorStanding{
		{Position: 1, Constructor: models.Constructor{ID: "mclaren", Name: "McLaren"}, Points: 90},
	}, nil
}

func (f *fakeUpstream) Driver(_ context.Context, season, driverID string) (models.Driver, error) {
	if err := f.hit("Driver"); err != nil {
		return models.Driver{}, err
	}
	rs := f.filter(season, func(r models.RaceResult) bool { return r.DriverID == driverID })
	if len(rs) == 0 {
		return models.Driver{}, ergast.ErrNoData
	}
	return models.Driver{ID: driverID, FamilyName: rs[0].DriverName}, nil
}

func (f *fakeUpstream) DriverResults(_ context.Context, season, driverID string) ([]models.RaceResult, error) {
	if err := f.hit("DriverResults"); err != nil {
		return nil, err
	}
	return f.filter(season, func(r models.RaceResult) bool { return r.DriverID == driverID }), nil
}

func (f *fakeUpstream) DriverCareerResults(_ context.Context, driverID string) ([]models.RaceResult, error) {
	if err := f.hit("DriverCareerResults"); err != nil {
		return nil, err
	}
	return f.filter("", func(r models.RaceResult) bool { return r.DriverID == driverID }), nil
}

func (f *fakeUpstream) Constructor(_ context.Context, _, constructorID string) (models.Constructor, error) {
	if err := f.hit("Constructor"); err != nil {
		return models.Constructor{}, err
	}
	return models.Constructor{ID: constructorID, Name: constructorID}, nil
}

func (f *fakeUpstream) ConstructorResults(_ context.Context, season, constructorID string) ([]models.RaceResult, error) {
	if err := f.hit("ConstructorResults"); err != nil {
		return nil, err
	}
	return f.filter(season, func(r models.RaceResult) bool { return r.ConstructorID == constructorID }), nil
}

func (f *fakeUpstream) ConstructorDrivers(_ context.Context, season, constructorID string) ([]models.Driver, error) {
	if err := f.hit("ConstructorDrivers"); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []models.Driver
	for _, r := range f.filter(season, func(r models.RaceResult) bool { return r.ConstructorID == constructorID }) {
		if !seen[r.DriverID] {
			seen[r.DriverID] = true
			out = append(out, models.Driver{ID: r.DriverID})
		}
	}
	return out, nil
}

func (f *fakeUpstream) CircuitResults(_ context.Context, circuitID string) ([]models.RaceResult, error) {
	if err := f.hit("CircuitResults"); err != nil {
		return nil, err
	}
	return f.filter("", func(r models.RaceResult) bool { return r.CircuitID == circuitID }), nil
}

func result(season, round int, driver, constructor string, finish int, status string, points float64, grid int) models.RaceResult {
	r := models.RaceResult{
		Season:          season,
		Round:           round,
		RaceName:        "Round " + itoa(round),
		CircuitID:       "circuit" + itoa(round),
		CircuitName:     "Circuit " + itoa(round),
		DriverID:        driver,
		DriverName:      driver,
		ConstructorID:   constructor,
		ConstructorName: constructor,
		Points:          points,
		Status:          status,
	}
	if finish > 0 {
		r.Outcome = models.DecodeOutcome(itoa(finish), status)
	} else {
		r.Outcome = models.DecodeOutcome("R", status)
	}
	if grid > 0 {
		r.Grid = models.IntPtr(grid)
	}
	return r
}

// seed2024 is three rounds of a four-car field plus a one-off McLaren
// substitute in round 3
func seed2024(f *fakeUpstream) {
	f.results["2024"] = []models.RaceResult{
		result(2024, 1, "ver", "red_bull", 1, "Finished", 25, 1),
		result(2024, 1, "nor", "mclaren", 2, "Finished", 18, 3),
		result(2024, 1, "pia", "mclaren", 3, "Finished", 15, 2),
		result(2024, 1, "per", "red_bull", 0, "Engine", 0, 4),

		result(2024, 2, "nor", "mclaren", 1, "Finished", 25, 2),
		result(2024, 2, "ver", "red_bull", 2, "Finished", 18, 1),
		result(2024, 2, "per", "red_bull", 3, "Finished", 15, 5),
		result(2024, 2, "pia", "mclaren", 4, "Finished", 12, 3),

		result(2024, 3, "ver", "red_bull", 1, "Finished", 25, 2),
		result(2024, 3, "nor", "mclaren", 2, "Finished", 18, 1),
		result(2024, 3, "per", "red_bull", 3, "Finished", 15, 3),
		result(2024, 3, "bea", "mclaren", 4, "Finished", 12, 4),
	}
	f.schedule["2024"] = []models.Race{{Round: 1}, {Round: 2}, {Round: 3}, {Round: 4}, {Round: 5}}
	f.standings["2024"] = []models.DriverStanding{
		{Position: 1, Driver: models.Driver{ID: "ver", GivenName: "Max", FamilyName: "Verstappen"}, Points: 68, Wins: 2},
		{Position: 2, Driver: models.Driver{ID: "nor", GivenName: "Lando", FamilyName: "Norris"}, Points: 61, Wins: 1},
		{Position: 3, Driver: models.Driver{ID: "per", GivenName: "Sergio", FamilyName: "Perez"}, Points: 30},
		{Position: 4, Driver: models.Driver{ID: "pia", GivenName: "Oscar", FamilyName: "Piastri"}, Points: 27},
		{Position: 5, Driver: models.Driver{ID: "bea", GivenName: "Oliver", FamilyName: "Bearman"}, Points: 12},
	}
	f.next["2024"] = models.Race{Season: 2024, Round: 4, Name: "Round 4", Date: "2024-04-07", Time: "05:00:00Z"}

	f.results["2023"] = []models.RaceResult{
		result(2023, 1, "ver", "red_bull", 1, "Finished", 25, 1),
		result(2023, 1, "nor", "mclaren", 0, "Collision", 0, 2),
		result(2023, 2, "ver", "red_bull", 2, "Finished", 18, 1),
		result(2023, 2, "nor", "mclaren", 1, "Finished", 25, 2),
	}
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		LiveTTL:      time.Minute,
		ScheduleTTL:  time.Hour,
		HistoryTTL:   24 * time.Hour,
		AnalyticsTTL: time.Minute,
	}
}
