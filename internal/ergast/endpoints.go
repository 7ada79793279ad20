package ergast

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/gridstats/gridstats/internal/models"
)

// ErrNoData is returned when the upstream answers with an empty table
var ErrNoData = errors.New("ergast: no data")

func seg(s string) string {
	return url.PathEscape(s)
}

// fetchRaces walks every page of a race table. The API pages over result
// rows, so one race can span two pages; its rows are merged.
func (c *Client) fetchRaces(ctx context.Context, path string) ([]rawRace, error) {
	var races []rawRace
	index := make(map[string]int)

	offset := 0
	for {
		data, err := c.get(ctx, path, c.pageQuery(offset))
		if err != nil {
			return nil, err
		}
		if data.RaceTable == nil {
			break
		}

		for _, r := range data.RaceTable.Races {
			key := r.Season + "/" + r.Round
			if i, ok := index[key]; ok {
				races[i].Results = append(races[i].Results, r.Results...)
				continue
			}
			index[key] = len(races)
			races = append(races, r)
		}

		limit, off, total := data.page()
		if limit <= 0 {
			break
		}
		offset = off + limit
		if offset >= total {
			break
		}
	}
	return races, nil
}

func (c *Client) fetchResults(ctx context.Context, path string) ([]models.RaceResult, error) {
	races, err := c.fetchRaces(ctx, path)
	if err != nil {
		return nil, err
	}
	var out []models.RaceResult
	for _, r := range races {
		out = append(out, r.results()...)
	}
	return out, nil
}

// LatestRace returns the most recent race of a season with its results
func (c *Client) LatestRace(ctx context.Context, season string) (models.Race, []models.RaceResult, error) {
	races, err := c.fetchRaces(ctx, seg(season)+"/last/results")
	if err != nil {
		return models.Race{}, nil, err
	}
	if len(races) == 0 {
		return models.Race{}, nil, ErrNoData
	}
	return races[0].model(), races[0].results(), nil
}

// NextRace returns the next scheduled race of a season
func (c *Client) NextRace(ctx context.Context, season string) (models.Race, error) {
	races, err := c.fetchRaces(ctx, seg(season)+"/next")
	if err != nil {
		return models.Race{}, err
	}
	if len(races) == 0 {
		return models.Race{}, ErrNoData
	}
	return races[0].model(), nil
}

// Schedule returns a season's calendar in round order
func (c *Client) Schedule(ctx context.Context, season string) ([]models.Race, error) {
	races, err := c.fetchRaces(ctx, seg(season))
	if err != nil {
		return nil, err
	}
	out := make([]models.Race, 0, len(races))
	for _, r := range races {
		out = append(out, r.model())
	}
	return out, nil
}

// SeasonResults returns every result of every completed race in a season
func (c *Client) SeasonResults(ctx context.Context, season string) ([]models.RaceResult, error) {
	return c.fetchResults(ctx, seg(season)+"/results")
}

func (c *Client) driverStandings(ctx context.Context, path string) ([]models.DriverStanding, error) {
	data, err := c.get(ctx, path, c.pageQuery(0))
	if err != nil {
		return nil, err
	}
	if data.StandingsTable == nil || len(data.StandingsTable.StandingsLists) == 0 {
		return nil, nil
	}
	rows := data.StandingsTable.StandingsLists[0].DriverStandings
	out := make([]models.DriverStanding, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.model())
	}
	return out, nil
}

// DriverStandings returns the drivers' championship in upstream order
func (c *Client) DriverStandings(ctx context.Context, season string) ([]models.DriverStanding, error) {
	return c.driverStandings(ctx, seg(season)+"/driverStandings")
}

// DriverStandingsAfterRound returns the drivers' championship as it stood
// after round
func (c *Client) DriverStandingsAfterRound(ctx context.Context, season string, round int) ([]models.DriverStanding, error) {
	return c.driverStandings(ctx, seg(season)+"/"+strconv.Itoa(round)+"/driverStandings")
}

// ConstructorStandings returns the constructors' championship in upstream order
func (c *Client) ConstructorStandings(ctx context.Context, season string) ([]models.ConstructorStanding, error) {
	data, err := c.get(ctx, seg(season)+"/constructorStandings", c.pageQuery(0))
	if err != nil {
		return nil, err
	}
	if data.StandingsTable == nil || len(data.StandingsTable.StandingsLists) == 0 {
		return nil, nil
	}
	rows := data.StandingsTable.StandingsLists[0].ConstructorStandings
	out := make([]models.ConstructorStanding, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.model())
	}
	return out, nil
}

// Driver returns one driver's details
func (c *Client) Driver(ctx context.Context, season, driverID string) (models.Driver, error) {
	data, err := c.get(ctx, seg(season)+"/drivers/"+seg(driverID), nil)
	if err != nil {
		return models.Driver{}, err
	}
	if data.DriverTable == nil || len(data.DriverTable.Drivers) == 0 {
		return models.Driver{}, ErrNoData
	}
	return data.DriverTable.Drivers[0].model(), nil
}

// DriverResults returns a driver's results in one season
func (c *Client) DriverResults(ctx context.Context, season, driverID string) ([]models.RaceResult, error) {
	return c.fetchResults(ctx, seg(season)+"/drivers/"+seg(driverID)+"/results")
}

// DriverCareerResults returns every result of a driver's career
func (c *Client) DriverCareerResults(ctx context.Context, driverID string) ([]models.RaceResult, error) {
	return c.fetchResults(ctx, "drivers/"+seg(driverID)+"/results")
}

// Constructor returns one constructor's details
func (c *Client) Constructor(ctx context.Context, season, constructorID string) (models.Constructor, error) {
	data, err := c.get(ctx, seg(season)+"/constructors/"+seg(constructorID), nil)
	if err != nil {
		return models.Constructor{}, err
	}
	if data.ConstructorTable == nil || len(data.ConstructorTable.Constructors) == 0 {
		return models.Constructor{}, ErrNoData
	}
	return data.ConstructorTable.Constructors[0].model(), nil
}

// ConstructorResults returns both cars' results for a constructor in one season
func (c *Client) ConstructorResults(ctx context.Context, season, constructorID string) ([]models.RaceResult, error) {
	return c.fetchResults(ctx, seg(season)+"/constructors/"+seg(constructorID)+"/results")
}

// ConstructorDrivers returns the drivers who raced for a constructor in a season
func (c *Client) ConstructorDrivers(ctx context.Context, season, constructorID string) ([]models.Driver, error) {
	data, err := c.get(ctx, seg(season)+"/constructors/"+seg(constructorID)+"/drivers", nil)
	if err != nil {
		return nil, err
	}
	if data.DriverTable == nil {
		return nil, nil
	}
	out := make([]models.Driver, 0, len(data.DriverTable.Drivers))
	for _, d := range data.DriverTable.Drivers {
		out = append(out, d.model())
	}
	return out, nil
}

// CircuitResults returns every result ever recorded at a circuit
func (c *Client) CircuitResults(ctx context.Context, circuitID string) ([]models.RaceResult, error) {
	return c.fetchResults(ctx, "circuits/"+seg(circuitID)+"/results")
}
