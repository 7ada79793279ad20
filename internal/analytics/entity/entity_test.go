package entity

import (
	"testing"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistencyPerfect(t *testing.T) {
	c := Consistency(positions(1, 1, 1, 1, 1, 1), 5)

	require.NotNil(t, c.Score)
	assert.Equal(t, 100.0, *c.Score)
	assert.Equal(t, 0.0, *c.StdDev)
	assert.Equal(t, 1.0, *c.AvgPosition)
	assert.Equal(t, 6, c.CompletedRaces)
	assert.False(t, c.InsufficientData)
}

func TestConsistencyExcludesDNF(t *testing.T) {
	results := []models.RaceResult{
		finished(1, 1, 25), retired(2, "Engine"), finished(3, 2, 18),
		retired(4, "Accident"), finished(5, 1, 25), finished(6, 2, 18), finished(7, 1, 25),
	}
	c := Consistency(results, 5)

	require.NotNil(t, c.Score)
	assert.Equal(t, 7, c.TotalRaces)
	assert.Equal(t, 5, c.CompletedRaces)
	assert.InDelta(t, 1.4, *c.AvgPosition, 0.01)
	assert.InDelta(t, 0.4899, *c.StdDev, 0.01)
	assert.InDelta(t, 100-0.4899*10, *c.Score, 0.01)
}

func TestConsistencyThresholds(t *testing.T) {
	c := Consistency(positions(1, 2, 3, 4), 5)
	assert.True(t, c.InsufficientData)
	assert.Nil(t, c.Score)
	assert.Equal(t, 4, c.CompletedRaces)
	assert.Equal(t, 5, c.RequiredRaces)

	c = Consistency(positions(1, 2, 3, 4, 5), 5)
	assert.False(t, c.InsufficientData, "exactly at the minimum computes")

	c = Consistency([]models.RaceResult{retired(1, "Engine"), retired(2, "Gearbox")}, 5)
	assert.True(t, c.InsufficientData)
	assert.Equal(t, 0, c.CompletedRaces)
	assert.Equal(t, 2, c.TotalRaces)

	c = Consistency(positions(1, 22, 1, 22, 1, 22), 5)
	require.NotNil(t, c.Score)
	assert.Equal(t, 0.0, *c.Score, "score saturates at zero")
}

func TestConsistencyScoreBounded(t *testing.T) {
	inputs := [][]int{
		{1, 1, 1, 1, 1},
		{1, 2, 3, 4, 5, 6},
		{20, 1, 20, 1, 20},
		{3, 3, 4, 3, 3, 2},
	}
	for _, ps := range inputs {
		c := Consistency(positions(ps...), 5)
		require.NotNil(t, c.Score)
		assert.GreaterOrEqual(t, *c.Score, 0.0)
		assert.LessOrEqual(t, *c.Score, 100.0)
	}
}

func TestDNFRateScenario(t *testing.T) {
	results := []models.RaceResult{
		result(1, "R", "Engine", 0, 3),
		result(2, "R", "Accident", 0, 4),
		result(3, "R", "Gearbox", 0, 5),
		result(4, "6", "Finished", 8, 6),
	}
	d := DNFRate(results)

	assert.Equal(t, 75.0, d.Percentage)
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, 4, d.Total)
	assert.Equal(t, map[string]int{"Engine": 1, "Accident": 1, "Gearbox": 1}, d.Causes)
	assert.Equal(t, 2, d.Categories[analytics.CategoryMechanical])
	assert.Equal(t, 1, d.Categories[analytics.CategoryAccident])
}

func TestDNFRateCategories(t *testing.T) {
	results := []models.RaceResult{
		retired(1, "Engine"), retired(2, "Gearbox"), retired(3, "Electrical"),
		retired(4, "Accident"), retired(5, "Collision"), retired(6, "Retired"),
		finished(7, 4, 12),
	}
	d := DNFRate(results)

	assert.Equal(t, 6, d.Count)
	assert.Equal(t, 3, d.Categories[analytics.CategoryMechanical])
	assert.Equal(t, 2, d.Categories[analytics.CategoryAccident])
	assert.Equal(t, 1, d.Categories[analytics.CategoryOther])
	assert.Equal(t, 3, MechanicalDNFs(results))
}

func TestDNFRateEdges(t *testing.T) {
	d := DNFRate(nil)
	assert.Equal(t, 0.0, d.Percentage)
	assert.Equal(t, 0, d.Total)
	assert.Empty(t, d.Causes)

	d = DNFRate(positions(1, 2, 3, 4, 5))
	assert.Equal(t, 0.0, d.Percentage)
	assert.Equal(t, 5, d.Total)

	d = DNFRate([]models.RaceResult{retired(1, "Engine"), retired(2, "Brakes"), retired(3, "Accident")})
	assert.Equal(t, 100.0, d.Percentage)

	lapped := result(1, "15", "+2 Laps", 0, 18)
	assert.Equal(t, 0, DNFRate([]models.RaceResult{lapped}).Count)
}

func TestDNFRateProperty(t *testing.T) {
	seqs := [][]models.RaceResult{
		{retired(1, "Engine"), finished(2, 1, 25)},
		{retired(1, "Engine"), retired(2, "Hydraulics"), finished(3, 9, 2)},
		positions(2, 2, 2),
	}
	for _, seq := range seqs {
		d := DNFRate(seq)
		assert.LessOrEqual(t, d.Count, d.Total)
		assert.GreaterOrEqual(t, d.Percentage, 0.0)
		assert.LessOrEqual(t, d.Percentage, 100.0)
		assert.InDelta(t, float64(d.Count)/float64(d.Total)*100, d.Percentage, 1e-9)
	}
}

func TestPointsPerRace(t *testing.T) {
	results := []models.RaceResult{finished(1, 1, 25), retired(2, "Engine"), finished(3, 2, 18), finished(4, 10, 1)}

	p := PointsPerRace(results, false)
	assert.Equal(t, 44.0, p.TotalPoints)
	assert.Equal(t, 4, p.RacesCounted)
	assert.Equal(t, 11.0, p.PointsPerRace)

	p = PointsPerRace(results, true)
	assert.Equal(t, 3, p.RacesCounted)
	assert.InDelta(t, 44.0/3.0, p.PointsPerRace, 1e-9)

	p = PointsPerRace([]models.RaceResult{retired(1, "Engine")}, true)
	assert.Equal(t, 0.0, p.PointsPerRace)
	assert.Equal(t, 0, p.RacesCounted)
}

func TestFormIndicatorImproving(t *testing.T) {
	// most recent first
	results := []models.RaceResult{
		finished(5, 6, 8), finished(4, 5, 10), finished(3, 4, 12), finished(2, 3, 15), finished(1, 2, 18),
	}
	f := FormIndicator(results, 5, analytics.DefaultTrendSlopeThreshold)

	assert.Equal(t, 5, f.RacesAnalyzed)
	assert.Equal(t, analytics.TrendImproving, f.Direction)
	require.NotNil(t, f.Slope)
	assert.Less(t, *f.Slope, 0.0)
	assert.InDelta(t, 4.0, *f.AvgPosition, 0.01)
	assert.InDelta(t, 63.0, f.TotalPoints, 0.1)
}

func TestFormIndicatorScenarioD(t *testing.T) {
	f := FormIndicator(positions(5, 4, 3, 2, 1), 5, analytics.DefaultTrendSlopeThreshold)
	require.NotNil(t, f.Slope)
	assert.Less(t, *f.Slope, 0.0)
	assert.Equal(t, analytics.TrendImproving, f.Direction)
}

func TestFormIndicatorDecliningAndStable(t *testing.T) {
	f := FormIndicator(positions(2, 3, 4, 5, 6), 5, analytics.DefaultTrendSlopeThreshold)
	assert.Equal(t, analytics.TrendDeclining, f.Direction)
	assert.Greater(t, *f.Slope, 0.0)

	f = FormIndicator(positions(3, 4, 3, 4, 3), 5, analytics.DefaultTrendSlopeThreshold)
	assert.Equal(t, analytics.TrendStable, f.Direction)
	assert.Less(t, *f.Slope, analytics.DefaultTrendSlopeThreshold)
}

func TestFormIndicatorWindow(t *testing.T) {
	f := FormIndicator(positions(1, 2), 5, analytics.DefaultTrendSlopeThreshold)
	assert.Equal(t, 2, f.RacesAnalyzed, "fewer races than the window")

	f = FormIndicator(positions(1, 2, 3, 4, 5, 6, 7), 5, analytics.DefaultTrendSlopeThreshold)
	assert.Equal(t, 5, f.RacesAnalyzed)
	assert.InDelta(t, 3.0, *f.AvgPosition, 1e-9)

	withDNF := []models.RaceResult{retired(3, "Engine"), finished(2, 4, 12), finished(1, 2, 18)}
	f = FormIndicator(withDNF, 5, analytics.DefaultTrendSlopeThreshold)
	assert.Equal(t, 2, f.RacesAnalyzed)

	f = FormIndicator(nil, 5, analytics.DefaultTrendSlopeThreshold)
	assert.Equal(t, 0, f.RacesAnalyzed)
	assert.True(t, f.InsufficientData)
	assert.Nil(t, f.Slope)

	f = FormIndicator([]models.RaceResult{finished(1, 3, 15)}, 5, analytics.DefaultTrendSlopeThreshold)
	assert.Nil(t, f.Slope)
	assert.Equal(t, analytics.TrendStable, f.Direction)
}

func TestCorrelationScenarioC(t *testing.T) {
	c := QualiRaceCorrelation(positions(1, 2, 3, 4, 5), 5)

	require.NotNil(t, c.Correlation)
	assert.InDelta(t, 1.0, *c.Correlation, 1e-9)
	assert.Equal(t, 0.0, *c.AvgPositionChange)
	assert.Equal(t, QualifyingDependentPerformer, c.Classification)
	assert.Len(t, c.Pairs, 5)
}

func TestCorrelationExclusions(t *testing.T) {
	results := []models.RaceResult{
		result(1, "1", "Finished", 25, 5),
		result(2, "2", "Finished", 18, 7),
		result(3, "3", "Finished", 15, 2),
		result(4, "R", "Engine", 0, 4),
		result(5, "4", "Finished", 12, 0), // pit-lane start
		result(6, "", "", 0, 3),
	}
	c := QualiRaceCorrelation(results, 5)

	assert.True(t, c.InsufficientData)
	assert.Nil(t, c.Correlation)
	assert.Equal(t, 3, c.RacesAnalyzed)
	assert.Equal(t, 2, c.MissingData)
	assert.Equal(t, 1, c.DNFExcluded)
}

func TestCorrelationLabels(t *testing.T) {
	strong := []models.RaceResult{
		result(1, "1", "Finished", 0, 10), result(2, "2", "Finished", 0, 8),
		result(3, "3", "Finished", 0, 6), result(4, "4", "Finished", 0, 4), result(5, "5", "Finished", 0, 2),
	}
	c := QualiRaceCorrelation(strong, 5)
	assert.Equal(t, StrongRacePerformer, c.Classification)
	assert.Greater(t, *c.AvgPositionChange, 0.0)

	sameGrid := []models.RaceResult{
		result(1, "1", "Finished", 0, 3), result(2, "5", "Finished", 0, 3),
		result(3, "2", "Finished", 0, 3), result(4, "4", "Finished", 0, 3), result(5, "3", "Finished", 0, 3),
	}
	c = QualiRaceCorrelation(sameGrid, 5)
	assert.False(t, c.InsufficientData)
	assert.Nil(t, c.Correlation, "zero grid variance is undefined")
	assert.Equal(t, BalancedPerformer, c.Classification)

	mid := analytics.Float64Ptr(0.2)
	assert.Equal(t, BalancedPerformer, ClassifyCorrelation(mid))
}

func TestCircuitPerformance(t *testing.T) {
	results := []models.RaceResult{finished(1, 1, 25), finished(2, 3, 15), retired(3, "Engine"), finished(4, 12, 0)}
	c := CircuitPerformance(results, 3)

	assert.Equal(t, "monza", c.CircuitID)
	assert.Equal(t, 4, c.Appearances)
	assert.Equal(t, 25.0, c.WinRate)
	assert.Equal(t, 50.0, c.PodiumRate)
	assert.Equal(t, 50.0, c.PointsRate)
	assert.InDelta(t, 16.0/3.0, *c.AvgFinish, 1e-9)
	assert.Equal(t, 1, *c.BestFinish)
	assert.False(t, c.LowSampleSize)

	c = CircuitPerformance(results[:2], 3)
	assert.True(t, c.LowSampleSize)
	assert.Equal(t, 50.0, c.WinRate, "numbers are still computed")

	c = CircuitPerformance(nil, 3)
	assert.Equal(t, 0.0, c.WinRate)
	assert.Nil(t, c.AvgFinish)
	assert.True(t, c.LowSampleSize)
}

func TestFilterByCircuit(t *testing.T) {
	a := finished(1, 1, 25)
	b := finished(2, 2, 18)
	b.CircuitID = "spa"
	assert.Len(t, FilterByCircuit([]models.RaceResult{a, b}, "spa"), 1)
}

func TestScope(t *testing.T) {
	r1 := finished(1, 1, 25)
	r2 := finished(2, 2, 18)
	old := finished(20, 3, 15)
	old.Season = 2023
	all := []models.RaceResult{r2, old, r1}

	assert.Len(t, AllTime().Apply(all), 3)
	assert.Equal(t, 2023, AllTime().Apply(all)[0].Season)
	assert.Len(t, SeasonScope(2024).Apply(all), 2)

	last := LastN(2).Apply(all)
	require.Len(t, last, 2)
	assert.Equal(t, 1, last[0].Round)
	assert.Equal(t, 2, last[1].Round)

	recent := MostRecentFirst(all)
	assert.Equal(t, 2, recent[0].Round)
	assert.Equal(t, 2023, recent[2].Season)
}

func TestRecentPoints(t *testing.T) {
	results := []models.RaceResult{finished(3, 1, 25), retired(2, "Engine"), finished(1, 2, 18)}
	assert.Equal(t, []float64{25, 0}, RecentPoints(results, 2))
	assert.Equal(t, []float64{25, 0, 18}, RecentPoints(results, 10))
	assert.Empty(t, RecentPoints(nil, 5))
}

func TestDriverStatistics(t *testing.T) {
	pole := finished(1, 1, 26)
	pole.FastestLapRank = 1
	results := []models.RaceResult{pole, finished(2, 3, 15), retired(3, "Engine"), finished(4, 2, 18)}
	s := DriverStatistics(results)

	assert.Equal(t, 4, s.TotalRaces)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 3, s.Podiums)
	assert.Equal(t, 59.0, s.TotalPoints)
	assert.Equal(t, 1, s.DNFCount)
	assert.Equal(t, 1, s.PolePositions)
	assert.Equal(t, 1, s.FastestLaps)
	assert.InDelta(t, 2.0, *s.AvgFinish, 1e-9)

	empty := DriverStatistics(nil)
	assert.Equal(t, 0, empty.TotalRaces)
	assert.Nil(t, empty.AvgFinish)
}

func TestPerformanceTrend(t *testing.T) {
	results := []models.RaceResult{finished(2, 3, 15), finished(1, 1, 25), retired(3, "Engine")}

	rows := PerformanceTrend(results, MetricPosition)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Round)
	assert.Equal(t, 1.0, *rows[0].Value)
	assert.Nil(t, rows[2].Value)
	assert.Equal(t, 40.0, rows[2].CumulativePoints)

	rows = PerformanceTrend(results, MetricPoints)
	assert.Equal(t, 0.0, *rows[2].Value)

	m, err := ParseTrendMetric("points")
	assert.NoError(t, err)
	assert.Equal(t, MetricPoints, m)
	_, err = ParseTrendMetric("laps")
	assert.Error(t, err)
}
