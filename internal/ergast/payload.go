package ergast

import (
	"strconv"
	"strings"

	"github.com/gridstats/gridstats/internal/models"
)

// The upstream API encodes every number as a string. These types mirror the
// wire format and are converted to models before leaving the package.

type response struct {
	MRData mrData `json:"MRData"`
}

type mrData struct {
	Limit            string            `json:"limit"`
	Offset           string            `json:"offset"`
	Total            string            `json:"total"`
	RaceTable        *raceTable        `json:"RaceTable,omitempty"`
	StandingsTable   *standingsTable   `json:"StandingsTable,omitempty"`
	DriverTable      *driverTable      `json:"DriverTable,omitempty"`
	ConstructorTable *constructorTable `json:"ConstructorTable,omitempty"`
}

func (m mrData) page() (limit, offset, total int) {
	return atoi(m.Limit), atoi(m.Offset), atoi(m.Total)
}

type raceTable struct {
	Season string    `json:"season"`
	Races  []rawRace `json:"Races"`
}

type rawRace struct {
	Season   string      `json:"season"`
	Round    string      `json:"round"`
	RaceName string      `json:"raceName"`
	Date     string      `json:"date"`
	Time     string      `json:"time"`
	Circuit  rawCircuit  `json:"Circuit"`
	Results  []rawResult `json:"Results"`
}

type rawCircuit struct {
	CircuitID   string `json:"circuitId"`
	CircuitName string `json:"circuitName"`
	Location    struct {
		Locality string `json:"locality"`
		Country  string `json:"country"`
	} `json:"Location"`
}

type rawResult struct {
	Number       string         `json:"number"`
	Position     string         `json:"position"`
	PositionText string         `json:"positionText"`
	Points       string         `json:"points"`
	Driver       rawDriver      `json:"Driver"`
	Constructor  rawConstructor `json:"Constructor"`
	Grid         string         `json:"grid"`
	Laps         string         `json:"laps"`
	Status       string         `json:"status"`
	FastestLap   *struct {
		Rank string `json:"rank"`
	} `json:"FastestLap,omitempty"`
}

type rawDriver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

type rawConstructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

type standingsTable struct {
	Season         string         `json:"season"`
	Round          string         `json:"round"`
	StandingsLists []standingList `json:"StandingsLists"`
}

type standingList struct {
	Season               string                   `json:"season"`
	Round                string                   `json:"round"`
	DriverStandings      []rawDriverStanding      `json:"DriverStandings"`
	ConstructorStandings []rawConstructorStanding `json:"ConstructorStandings"`
}

type rawDriverStanding struct {
	Position     string           `json:"position"`
	PositionText string           `json:"positionText"`
	Points       string           `json:"points"`
	Wins         string           `json:"wins"`
	Driver       rawDriver        `json:"Driver"`
	Constructors []rawConstructor `json:"Constructors"`
}

type rawConstructorStanding struct {
	Position     string         `json:"position"`
	PositionText string         `json:"positionText"`
	Points       string         `json:"points"`
	Wins         string         `json:"wins"`
	Constructor  rawConstructor `json:"Constructor"`
}

type driverTable struct {
	Drivers []rawDriver `json:"Drivers"`
}

type constructorTable struct {
	Constructors []rawConstructor `json:"Constructors"`
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func (d rawDriver) model() models.Driver {
	return models.Driver{
		ID:          d.DriverID,
		Code:        d.Code,
		Number:      d.PermanentNumber,
		GivenName:   d.GivenName,
		FamilyName:  d.FamilyName,
		Nationality: d.Nationality,
		DateOfBirth: d.DateOfBirth,
	}
}

func (c rawConstructor) model() models.Constructor {
	return models.Constructor{ID: c.ConstructorID, Name: c.Name, Nationality: c.Nationality}
}

func (r rawRace) model() models.Race {
	return models.Race{
		Season: atoi(r.Season),
		Round:  atoi(r.Round),
		Name:   r.RaceName,
		Date:   r.Date,
		Time:   r.Time,
		Circuit: models.Circuit{
			ID:       r.Circuit.CircuitID,
			Name:     r.Circuit.CircuitName,
			Locality: r.Circuit.Location.Locality,
			Country:  r.Circuit.Location.Country,
		},
	}
}

// results flattens a race's result rows. Grid 0 is a pit-lane start and
// decodes to nil.
func (r rawRace) results() []models.RaceResult {
	race := r.model()
	out := make([]models.RaceResult, 0, len(r.Results))
	for _, res := range r.Results {
		positionText := res.PositionText
		if positionText == "" {
			positionText = res.Position
		}

		row := models.RaceResult{
			Season:          race.Season,
			Round:           race.Round,
			RaceName:        race.Name,
			Date:            race.Date,
			CircuitID:       race.Circuit.ID,
			CircuitName:     race.Circuit.Name,
			DriverID:        res.Driver.DriverID,
			DriverName:      models.FormatDriverName(res.Driver.GivenName, res.Driver.FamilyName),
			ConstructorID:   res.Constructor.ConstructorID,
			ConstructorName: res.Constructor.Name,
			Outcome:         models.DecodeOutcome(positionText, res.Status),
			Points:          atof(res.Points),
			Status:          res.Status,
		}
		if grid := atoi(res.Grid); grid > 0 {
			row.Grid = models.IntPtr(grid)
		}
		if res.FastestLap != nil {
			row.FastestLapRank = atoi(res.FastestLap.Rank)
		}
		out = append(out, row)
	}
	return out
}

func (s rawDriverStanding) model() models.DriverStanding {
	constructors := make([]models.Constructor, 0, len(s.Constructors))
	for _, c := range s.Constructors {
		constructors = append(constructors, c.model())
	}
	return models.DriverStanding{
		Position:     atoi(s.Position),
		Driver:       s.Driver.model(),
		Constructors: constructors,
		Points:       atof(s.Points),
		Wins:         atoi(s.Wins),
	}
}

func (s rawConstructorStanding) model() models.ConstructorStanding {
	return models.ConstructorStanding{
		Position:    atoi(s.Position),
		Constructor: s.Constructor.model(),
		Points:      atof(s.Points),
		Wins:        atoi(s.Wins),
	}
}
