package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/cache"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalytics(t *testing.T) (*AnalyticsService, *fakeUpstream) {
	t.Helper()
	f := newFakeUpstream()
	seed2024(f)

	c := cache.NewMemory(time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	data := NewDataService(logging.Nop(), f, c, testCacheConfig())
	th := analytics.DefaultThresholds()
	th.MinConsistencyRaces = 2
	th.MinCorrelationRaces = 2

	s := NewAnalyticsService(logging.Nop(), data, c, AnalyticsOptions{TTL: time.Minute, Thresholds: th}, metrics.Nop())
	return s, f
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr), "expected *ServiceError, got %v", err)
	assert.Equal(t, code, svcErr.Code)
}

func TestThresholdsFromConfig(t *testing.T) {
	th := ThresholdsFromConfig(config.AnalyticsConfig{RollingWindow: 4, ImbalanceThreshold: 65})
	assert.Equal(t, 4, th.RollingWindow)
	assert.Equal(t, 65.0, th.ImbalanceThreshold)
	assert.Equal(t, analytics.DefaultFormWindow, th.FormWindow)
	assert.Equal(t, analytics.DefaultGridSize, th.GridSize)
}

func TestLatestRacePodium(t *testing.T) {
	s, _ := newTestAnalytics(t)

	out, err := s.LatestRace(context.Background(), "2024")
	require.NoError(t, err)
	require.Len(t, out.Podium, 3)
	assert.Equal(t, "ver", out.Podium[0].DriverID)
	assert.Equal(t, "nor", out.Podium[1].DriverID)
	assert.Equal(t, "per", out.Podium[2].DriverID)
}

func TestNextRaceCountdown(t *testing.T) {
	s, _ := newTestAnalytics(t)
	s.now = func() time.Time { return time.Date(2024, 4, 5, 3, 0, 0, 0, time.UTC) }
	s.location = time.FixedZone("+09:00", 9*3600)

	out, err := s.NextRace(context.Background(), "2024")
	require.NoError(t, err)
	assert.Equal(t, "2d 2h", out.Countdown)
	assert.Equal(t, "2024-04-07 14:00 +09:00", out.LocalTime)

	_, err = s.NextRace(context.Background(), "2023")
	assertCode(t, err, CodeNotFound)
}

func TestProjectionUsesRemainingRounds(t *testing.T) {
	s, _ := newTestAnalytics(t)

	out, err := s.Projection(context.Background(), "2024")
	require.NoError(t, err)
	assert.Equal(t, 2, out.RemainingRaces)
	assert.True(t, out.LowRemaining)
	require.Len(t, out.Rows, 5)

	// ver: 68 + mean(25,18,25)*2
	assert.Equal(t, "ver", out.Rows[0].ID)
	assert.InDelta(t, 68+2*68.0/3, out.Rows[0].Realistic, 1e-9)
	assert.InDelta(t, 68+2*25.0, out.Rows[0].Optimistic, 1e-9)
	assert.InDelta(t, 68+2*18.0, out.Rows[0].Pessimistic, 1e-9)
}

func TestCompareValidatesDriverCount(t *testing.T) {
	s, f := newTestAnalytics(t)
	ctx := context.Background()

	_, err := s.Compare(ctx, "2024", []string{"ver", "nor", "ver", " "})
	assertCode(t, err, CodeInvalidRequest)
	assert.Equal(t, 0, f.count("SeasonResults"))

	rows, err := s.Compare(ctx, "2024", []string{"pia", "ver", "nor"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "nor", rows[0].Entity)
	assert.Equal(t, 3, rows[0].Races)
	assert.InDelta(t, 61.0/3, rows[0].PointsPerRace, 1e-9)

	// same set in another order is served from cache
	_, err = s.Compare(ctx, "2024", []string{"nor", "pia", "ver"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("SeasonResults"))
}

func TestAnalyticsAreMemoized(t *testing.T) {
	f := newFakeUpstream()
	seed2024(f)
	c := cache.NewMemory(time.Minute)
	defer c.Close()

	m := metrics.NewManager()
	data := NewDataService(logging.Nop(), f, nil, testCacheConfig())
	s := NewAnalyticsService(logging.Nop(), data, c, AnalyticsOptions{TTL: time.Minute, Thresholds: analytics.DefaultThresholds()}, m)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rows, err := s.GridProbability(ctx, "2024")
		require.NoError(t, err)
		require.Len(t, rows, analytics.DefaultGridSize)
		assert.Equal(t, 1, rows[0].Wins)
		assert.Equal(t, 2, rows[1].Wins)
	}
	assert.Equal(t, 1, f.count("SeasonResults"))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var observed uint64
	for _, fam := range families {
		if fam.GetName() == "gridstats_analytics_compute_duration_seconds" {
			observed = fam.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), observed)
}

func TestDriverAnalytics(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	out, err := s.DriverAnalytics(ctx, "2024", "per")
	require.NoError(t, err)
	assert.Equal(t, "per", out.Driver.ID)
	assert.Equal(t, 1, out.DNF.Count)
	assert.InDelta(t, 100.0/3, out.DNF.Percentage, 1e-9)
	assert.Equal(t, 2, out.Consistency.CompletedRaces)
	assert.InDelta(t, 10.0, out.PointsPerRace.PointsPerRace, 1e-9)
	assert.InDelta(t, 15.0, out.PointsPerFinish.PointsPerRace, 1e-9)

	stats, err := s.DriverStatistics(ctx, "2024", "ver")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 2, stats.PolePositions)
	assert.Equal(t, 68.0, stats.TotalPoints)

	_, err = s.DriverStatistics(ctx, "2024", "nobody")
	assertCode(t, err, CodeNotFound)
}

func TestDriverTrend(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	points, err := s.DriverTrend(ctx, "2024", "nor", "points")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 61.0, points[2].CumulativePoints)

	_, err = s.DriverTrend(ctx, "2024", "nor", "laps")
	assertCode(t, err, CodeInvalidRequest)
}

func TestDriverPercentile(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	out, err := s.DriverPercentile(ctx, "2024", "ver")
	require.NoError(t, err)
	assert.True(t, out.TargetIncluded)
	require.NotNil(t, out.TotalPoints)
	assert.Equal(t, 100.0, *out.TotalPoints)

	_, err = s.DriverPercentile(ctx, "2024", "nobody")
	assertCode(t, err, CodeNotFound)
}

func TestLookups(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	got, err := s.DriverLookup(ctx, "2024", "Lando Norris")
	require.NoError(t, err)
	assert.Equal(t, "nor", got.ID)

	_, err = s.DriverLookup(ctx, "2024", "Ayrton Senna")
	assertCode(t, err, CodeNotFound)

	team, err := s.ConstructorLookup(ctx, "2024", "McLaren")
	require.NoError(t, err)
	assert.Equal(t, "mclaren", team.ID)
}

func TestConstructorAnalytics(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	stats, err := s.ConstructorStatistics(ctx, "2024", "red_bull")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.DNFCount)

	rel, err := s.Reliability(ctx, "2024", "red_bull")
	require.NoError(t, err)
	assert.Equal(t, 2, rel.BothFinished)
	assert.Equal(t, 1, rel.MechanicalDNFs)

	dev, err := s.Development(ctx, "2024", "mclaren", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Window)
	require.Len(t, dev.Races, 3)
	assert.Nil(t, dev.Races[0].RollingPoints)
	require.NotNil(t, dev.Races[1].RollingPoints)
	assert.InDelta(t, 35.0, *dev.Races[1].RollingPoints, 1e-9)

	dev, err = s.Development(ctx, "2024", "mclaren", 0)
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultRollingWindow, dev.Window)
}

func TestPairingPicksRegularDrivers(t *testing.T) {
	s, _ := newTestAnalytics(t)

	out, err := s.Pairing(context.Background(), "2024", "mclaren")
	require.NoError(t, err)
	assert.Equal(t, "nor", out.FirstDriver)
	assert.Equal(t, "pia", out.SecondDriver)
	assert.Equal(t, 2, out.SharedRaces)
	assert.Equal(t, 61.0, out.FirstPoints)
	assert.Equal(t, 27.0, out.SecondPoints)

	_, err = s.Pairing(context.Background(), "2024", "williams")
	assertCode(t, err, CodeNotFound)
}

func TestDriverSeasonsAndCircuit(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	rows, err := s.DriverSeasons(ctx, "nor", 2023, 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2023, rows[0].Season)
	assert.Nil(t, rows[0].Change)
	require.NotNil(t, rows[1].Change)

	_, err = s.DriverSeasons(ctx, "nor", 2010, 2012)
	assertCode(t, err, CodeNotFound)

	circuit, err := s.DriverCircuit(ctx, "nor", "circuit1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, circuit.Appearances)
	assert.True(t, circuit.LowSampleSize)

	empty, err := s.DriverCircuit(ctx, "nor", "monaco", 1)
	require.NoError(t, err)
	assert.Equal(t, "monaco", empty.CircuitID)
	assert.Equal(t, 0, empty.Appearances)
}

func TestCircuitDifficulty(t *testing.T) {
	s, f := newTestAnalytics(t)
	ctx := context.Background()

	rows, err := s.CircuitDifficulty(ctx, 2023, 2024)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, f.count("SeasonResults"))

	// circuit1 has two retirements in six starts over both seasons
	found := false
	for _, r := range rows {
		if r.CircuitID == "circuit1" {
			found = true
			assert.Equal(t, 6, r.Starts)
			assert.InDelta(t, 100.0/3, r.DNFRate, 1e-9)
		}
	}
	assert.True(t, found)

	row, err := s.CircuitHistory(ctx, "circuit2")
	require.NoError(t, err)
	assert.Equal(t, 6, row.Starts)

	_, err = s.CircuitHistory(ctx, "nowhere")
	assertCode(t, err, CodeNotFound)
}

func TestProgressionAndCorrelation(t *testing.T) {
	s, _ := newTestAnalytics(t)
	ctx := context.Background()

	points, err := s.Progression(ctx, "2024")
	require.NoError(t, err)
	assert.NotEmpty(t, points)

	corr, err := s.Correlation(ctx, "2024")
	require.NoError(t, err)
	assert.NotEmpty(t, corr.Drivers)
}
