package ergast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, m *metrics.Manager) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.UpstreamConfig{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		PageSize:   2,
	}, WithMetrics(m), WithLogger(logging.Nop()))
}

func counterValue(t *testing.T, m *metrics.Manager, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metricLoop:
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metricLoop
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

const lastResultsBody = `{"MRData":{"limit":"30","offset":"0","total":"3","RaceTable":{"season":"2024","Races":[
{"season":"2024","round":"5","raceName":"Miami Grand Prix","date":"2024-05-05","time":"20:00:00Z",
 "Circuit":{"circuitId":"miami","circuitName":"Miami International Autodrome","Location":{"locality":"Miami","country":"USA"}},
 "Results":[
  {"number":"4","position":"1","positionText":"1","points":"25","Driver":{"driverId":"norris","code":"NOR","givenName":"Lando","familyName":"Norris"},"Constructor":{"constructorId":"mclaren","name":"McLaren"},"grid":"5","laps":"57","status":"Finished","FastestLap":{"rank":"3"}},
  {"number":"1","position":"2","positionText":"2","points":"18","Driver":{"driverId":"max_verstappen","givenName":"Max","familyName":"Verstappen"},"Constructor":{"constructorId":"red_bull","name":"Red Bull"},"grid":"1","laps":"57","status":"Finished"},
  {"number":"2","position":"20","positionText":"R","points":"0","Driver":{"driverId":"sargeant","givenName":"Logan","familyName":"Sargeant"},"Constructor":{"constructorId":"williams","name":"Williams"},"grid":"0","laps":"27","status":"Accident"}
 ]}]}}}`

func TestLatestRaceDecodes(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, lastResultsBody)
	}, metrics.Nop())

	race, results, err := c.LatestRace(context.Background(), "current")
	require.NoError(t, err)
	assert.Equal(t, "/current/last/results.json", path)

	assert.Equal(t, 2024, race.Season)
	assert.Equal(t, 5, race.Round)
	assert.Equal(t, "miami", race.Circuit.ID)
	assert.Equal(t, "USA", race.Circuit.Country)

	require.Len(t, results, 3)
	assert.Equal(t, "Lando Norris", results[0].DriverName)
	assert.Equal(t, models.Classified{Position: 1}, results[0].Outcome)
	assert.Equal(t, 25.0, results[0].Points)
	assert.Equal(t, 5, *results[0].Grid)
	assert.Equal(t, 3, results[0].FastestLapRank)

	assert.Nil(t, results[2].Grid)
	assert.True(t, results[2].IsDNF())
	assert.Equal(t, "Accident", results[2].Cause())
}

func TestRetriesServerErrors(t *testing.T) {
	m := metrics.NewManager()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, lastResultsBody)
	}, m)

	_, results, err := c.LatestRace(context.Background(), "2024")
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	assert.Equal(t, 2.0, counterValue(t, m, "gridstats_upstream_retries_total", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "gridstats_upstream_requests_total", map[string]string{"outcome": OutcomeOK}))
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	m := metrics.NewManager()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, m)

	_, err := c.Schedule(context.Background(), "2024")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, counterValue(t, m, "gridstats_upstream_requests_total", map[string]string{"outcome": OutcomeUnavailable}))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such driver", http.StatusNotFound)
	}, metrics.Nop())

	_, err := c.Driver(context.Background(), "2024", "nobody")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.NotFound())
	assert.False(t, apiErr.Temporary())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMalformedJSONIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `<html>rate limited</html>`)
	}, metrics.Nop())

	_, err := c.DriverStandings(context.Background(), "2024")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCanceledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	}, metrics.Nop())

	_, err := c.Schedule(ctx, "2024")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPaginationMergesSplitRaces(t *testing.T) {
	// Three result rows over two pages of two; round 1 spans the boundary.
	pages := map[string]string{
		"0": `{"MRData":{"limit":"2","offset":"0","total":"3","RaceTable":{"Races":[
			{"season":"2024","round":"1","raceName":"Bahrain Grand Prix","Circuit":{"circuitId":"bahrain"},"Results":[
				{"position":"1","positionText":"1","points":"25","Driver":{"driverId":"max_verstappen"},"Constructor":{"constructorId":"red_bull"},"grid":"1","status":"Finished"},
				{"position":"2","positionText":"2","points":"18","Driver":{"driverId":"perez"},"Constructor":{"constructorId":"red_bull"},"grid":"5","status":"Finished"}]}]}}}`,
		"2": `{"MRData":{"limit":"2","offset":"2","total":"3","RaceTable":{"Races":[
			{"season":"2024","round":"1","raceName":"Bahrain Grand Prix","Circuit":{"circuitId":"bahrain"},"Results":[
				{"position":"3","positionText":"3","points":"15","Driver":{"driverId":"sainz"},"Constructor":{"constructorId":"ferrari"},"grid":"4","status":"Finished"}]}]}}}`,
	}

	var offsets []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)
		body, ok := pages[offset]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}, metrics.Nop())

	results, err := c.SeasonResults(context.Background(), "2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, offsets)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, 1, r.Round)
		pos, ok := r.FinishPosition()
		require.True(t, ok)
		assert.Equal(t, i+1, pos)
	}
}

func TestPaginationCoversEveryPage(t *testing.T) {
	const total = 7
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		races := ""
		for i := offset; i < offset+2 && i < total; i++ {
			if races != "" {
				races += ","
			}
			races += fmt.Sprintf(`{"season":"2023","round":"%d","Results":[{"position":"1","positionText":"1","points":"25","Driver":{"driverId":"d"},"Constructor":{"constructorId":"c"},"grid":"1","status":"Finished"}]}`, i+1)
		}
		fmt.Fprintf(w, `{"MRData":{"limit":"2","offset":"%d","total":"%d","RaceTable":{"Races":[%s]}}}`, offset, total, races)
	}, metrics.Nop())

	results, err := c.DriverCareerResults(context.Background(), "d")
	require.NoError(t, err)
	assert.Len(t, results, total)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, 7, results[6].Round)
}

func TestStandings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2024/10/driverStandings.json":
			fmt.Fprint(w, `{"MRData":{"StandingsTable":{"season":"2024","round":"10","StandingsLists":[{"DriverStandings":[
				{"position":"1","points":"194","wins":"6","Driver":{"driverId":"max_verstappen","givenName":"Max","familyName":"Verstappen"},"Constructors":[{"constructorId":"red_bull","name":"Red Bull"}]},
				{"position":"2","points":"138","wins":"1","Driver":{"driverId":"norris","givenName":"Lando","familyName":"Norris"},"Constructors":[{"constructorId":"mclaren","name":"McLaren"}]}]}]}}}`)
		case "/2024/constructorStandings.json":
			fmt.Fprint(w, `{"MRData":{"StandingsTable":{"StandingsLists":[{"ConstructorStandings":[
				{"position":"1","points":"589","wins":"9","Constructor":{"constructorId":"red_bull","name":"Red Bull"}}]}]}}}`)
		default:
			fmt.Fprint(w, `{"MRData":{"StandingsTable":{"StandingsLists":[]}}}`)
		}
	}, metrics.Nop())
	ctx := context.Background()

	drivers, err := c.DriverStandingsAfterRound(ctx, "2024", 10)
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "max_verstappen", drivers[0].Driver.ID)
	assert.Equal(t, 194.0, drivers[0].Points)
	assert.Equal(t, 6, drivers[0].Wins)
	assert.Equal(t, "Red Bull", drivers[0].Team())

	teams, err := c.ConstructorStandings(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, 589.0, teams[0].Points)

	empty, err := c.DriverStandings(ctx, "1900")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmptyTables(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2024/drivers/ghost.json":
			fmt.Fprint(w, `{"MRData":{"DriverTable":{"Drivers":[]}}}`)
		default:
			fmt.Fprint(w, `{"MRData":{"limit":"2","offset":"0","total":"0","RaceTable":{"Races":[]}}}`)
		}
	}, metrics.Nop())
	ctx := context.Background()

	_, err := c.Driver(ctx, "2024", "ghost")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = c.NextRace(ctx, "2024")
	assert.ErrorIs(t, err, ErrNoData)

	_, _, err = c.LatestRace(ctx, "2024")
	assert.ErrorIs(t, err, ErrNoData)

	races, err := c.Schedule(ctx, "2024")
	require.NoError(t, err)
	assert.Empty(t, races)
}

func TestConstructorEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2024/constructors/mclaren.json":
			fmt.Fprint(w, `{"MRData":{"ConstructorTable":{"Constructors":[{"constructorId":"mclaren","name":"McLaren","nationality":"British"}]}}}`)
		case "/2024/constructors/mclaren/drivers.json":
			fmt.Fprint(w, `{"MRData":{"DriverTable":{"Drivers":[
				{"driverId":"norris","givenName":"Lando","familyName":"Norris"},
				{"driverId":"piastri","givenName":"Oscar","familyName":"Piastri"}]}}}`)
		default:
			http.NotFound(w, r)
		}
	}, metrics.Nop())
	ctx := context.Background()

	team, err := c.Constructor(ctx, "2024", "mclaren")
	require.NoError(t, err)
	assert.Equal(t, "British", team.Nationality)

	drivers, err := c.ConstructorDrivers(ctx, "2024", "mclaren")
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "Oscar Piastri", drivers[1].FullName())
}

func TestDefaults(t *testing.T) {
	c := New(config.UpstreamConfig{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, 3, c.maxAttempts)
	assert.Equal(t, 100, c.pageSize)

	b := &linearBackOff{step: time.Second}
	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	b.Reset()
	assert.Equal(t, time.Second, b.NextBackOff())
}
