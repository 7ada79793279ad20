package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gridstats/gridstats/internal/analytics"
	"github.com/gridstats/gridstats/internal/analytics/compare"
	"github.com/gridstats/gridstats/internal/analytics/entity"
	"github.com/gridstats/gridstats/internal/analytics/field"
	"github.com/gridstats/gridstats/internal/analytics/team"
	"github.com/gridstats/gridstats/internal/cache"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/utils"
)

// AnalyticsOptions configures an AnalyticsService
type AnalyticsOptions struct {
	TTL        time.Duration
	Thresholds analytics.Thresholds
	Location   *time.Location // display timezone for race start times
}

// ThresholdsFromConfig fills unset values with the analytics defaults
func ThresholdsFromConfig(cfg config.AnalyticsConfig) analytics.Thresholds {
	t := analytics.DefaultThresholds()
	if cfg.MinConsistencyRaces > 0 {
		t.MinConsistencyRaces = cfg.MinConsistencyRaces
	}
	if cfg.MinCorrelationRaces > 0 {
		t.MinCorrelationRaces = cfg.MinCorrelationRaces
	}
	if cfg.MinCircuitAppearances > 0 {
		t.MinCircuitAppearances = cfg.MinCircuitAppearances
	}
	if cfg.RollingWindow > 0 {
		t.RollingWindow = cfg.RollingWindow
	}
	if cfg.FormWindow > 0 {
		t.FormWindow = cfg.FormWindow
	}
	if cfg.TrendSlopeThreshold > 0 {
		t.TrendSlopeThreshold = cfg.TrendSlopeThreshold
	}
	if cfg.ImbalanceThreshold > 0 {
		t.ImbalanceThreshold = cfg.ImbalanceThreshold
	}
	if cfg.LowRemainingRaces > 0 {
		t.LowRemainingRaces = cfg.LowRemainingRaces
	}
	if cfg.ParticipationThreshold > 0 {
		t.ParticipationThreshold = cfg.ParticipationThreshold
	}
	if cfg.GridSize > 0 {
		t.GridSize = cfg.GridSize
	}
	return t
}

// DriverAnalytics bundles the per-driver season metrics
type DriverAnalytics struct {
	Driver          models.Driver              `json:"driver"`
	Season          string                     `json:"season"`
	Consistency     entity.ConsistencyResult   `json:"consistency"`
	DNF             entity.DNFRateResult       `json:"dnf"`
	PointsPerRace   entity.PointsPerRaceResult `json:"points_per_race"`
	PointsPerFinish entity.PointsPerRaceResult `json:"points_per_finish"`
	Form            entity.FormResult          `json:"form"`
	Correlation     entity.CorrelationResult   `json:"correlation"`
}

// DriverStats is a driver's season summary with identity
type DriverStats struct {
	Driver models.Driver `json:"driver"`
	Season string        `json:"season"`
	entity.DriverStats
}

// ConstructorStats is a constructor's season summary with identity
type ConstructorStats struct {
	Constructor models.Constructor `json:"constructor"`
	Season      string             `json:"season"`
	team.ConstructorStats
}

// AnalyticsService composes upstream data with the analytics packages and
// memoizes each derived result
type AnalyticsService struct {
	logger     *logging.Logger
	data       *DataService
	cache      cache.Cache
	ttl        time.Duration
	thresholds analytics.Thresholds
	location   *time.Location
	metrics    *metrics.Manager
	now        func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(logger *logging.Logger, data *DataService, c cache.Cache, opts AnalyticsOptions, m *metrics.Manager) *AnalyticsService {
	if logger == nil {
		logger = logging.Global()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &AnalyticsService{
		logger:     logger,
		data:       data,
		cache:      c,
		ttl:        opts.TTL,
		thresholds: opts.Thresholds,
		location:   opts.Location,
		metrics:    m,
		now:        time.Now,
	}
}

// Thresholds returns the thresholds every metric is computed with
func (s *AnalyticsService) Thresholds() analytics.Thresholds {
	return s.thresholds
}

func analyticsKey(parts ...string) string {
	return cache.Key(append([]string{AnalyticsKeyPrefix}, parts...)...)
}

// memoize caches fn's result under key and times computation on a miss
func memoize[T any](ctx context.Context, s *AnalyticsService, metric, key string, fn func(context.Context) (T, error)) (T, error) {
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) (T, error) {
		start := time.Now()
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		d := time.Since(start)
		s.metrics.RecordAnalytics(metric, d)
		s.logger.WithContext(ctx).Debug("Computed analytics", "metric", metric, "key", key, "duration_ms", d.Milliseconds())
		return v, nil
	})
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func byDriver(results []models.RaceResult) map[string][]models.RaceResult {
	out := make(map[string][]models.RaceResult)
	for _, r := range results {
		out[r.DriverID] = append(out[r.DriverID], r)
	}
	return out
}

// LatestRace returns the last race of season with its podium
func (s *AnalyticsService) LatestRace(ctx context.Context, season string) (*models.RaceResultsResponse, error) {
	rr, err := s.data.LatestRace(ctx, season)
	if err != nil {
		return nil, err
	}

	var podium []models.RaceResult
	for _, r := range rr.Results {
		if pos, ok := r.FinishPosition(); ok && pos <= 3 {
			podium = append(podium, r)
		}
	}
	sort.SliceStable(podium, func(i, j int) bool {
		a, _ := podium[i].FinishPosition()
		b, _ := podium[j].FinishPosition()
		return a < b
	})

	return &models.RaceResultsResponse{Race: rr.Race, Results: rr.Results, Podium: podium}, nil
}

// NextRace returns the next race with a countdown from now
func (s *AnalyticsService) NextRace(ctx context.Context, season string) (*models.NextRaceResponse, error) {
	race, err := s.data.NextRace(ctx, season)
	if err != nil {
		return nil, err
	}

	out := &models.NextRaceResponse{
		Race:      race,
		Countdown: field.Countdown(race.Date, race.Time, s.now()),
	}
	if start, err := field.RaceStart(race.Date, race.Time); err == nil {
		out.LocalTime = start.In(s.location).Format("2006-01-02 15:04 MST")
	}
	return out, nil
}

// Progression returns cumulative championship points per driver per round
func (s *AnalyticsService) Progression(ctx context.Context, season string) ([]field.ProgressionPoint, error) {
	return memoize(ctx, s, "progression", analyticsKey(season, "progression"),
		func(ctx context.Context) ([]field.ProgressionPoint, error) {
			results, err := s.data.SeasonResults(ctx, season)
			if err != nil {
				return nil, err
			}
			return field.ChampionshipProgression(results), nil
		})
}

// GridProbability returns win, podium and points rates per starting slot
func (s *AnalyticsService) GridProbability(ctx context.Context, season string) ([]field.GridRow, error) {
	gridSize := s.thresholds.GridSize
	return memoize(ctx, s, "grid_probability", analyticsKey(season, "grid", itoa(gridSize)),
		func(ctx context.Context) ([]field.GridRow, error) {
			results, err := s.data.SeasonResults(ctx, season)
			if err != nil {
				return nil, err
			}
			return field.GridWinProbability(results, gridSize), nil
		})
}

// Correlation returns field-wide and per-driver grid/finish correlation
func (s *AnalyticsService) Correlation(ctx context.Context, season string) (field.SeasonCorrelationResult, error) {
	minRaces := s.thresholds.MinCorrelationRaces
	return memoize(ctx, s, "season_correlation", analyticsKey(season, "correlation", itoa(minRaces)),
		func(ctx context.Context) (field.SeasonCorrelationResult, error) {
			results, err := s.data.SeasonResults(ctx, season)
			if err != nil {
				return field.SeasonCorrelationResult{}, err
			}
			return field.SeasonCorrelation(results, minRaces), nil
		})
}

// Projection projects the drivers' championship over the remaining rounds
func (s *AnalyticsService) Projection(ctx context.Context, season string) (field.ProjectionResult, error) {
	window, low := s.thresholds.FormWindow, s.thresholds.LowRemainingRaces
	return memoize(ctx, s, "projection", analyticsKey(season, "projection", itoa(window), itoa(low)),
		func(ctx context.Context) (field.ProjectionResult, error) {
			standings, err := s.data.DriverStandings(ctx, season)
			if err != nil {
				return field.ProjectionResult{}, err
			}
			schedule, err := s.data.Schedule(ctx, season)
			if err != nil {
				return field.ProjectionResult{}, err
			}
			results, err := s.data.SeasonResults(ctx, season)
			if err != nil {
				return field.ProjectionResult{}, err
			}

			completed, _ := models.GroupByRace(results)
			remaining := len(schedule) - len(completed)

			recent := make(map[string][]float64)
			for id, rs := range byDriver(results) {
				recent[id] = entity.RecentPoints(entity.MostRecentFirst(rs), window)
			}

			contenders := field.ContendersFromDrivers(standings, recent)
			return field.ChampionshipProjection(contenders, remaining, low), nil
		})
}

// Compare lines up several drivers of one season
func (s *AnalyticsService) Compare(ctx context.Context, season string, driverIDs []string) ([]compare.Row, error) {
	ids := normalizeIDs(driverIDs)
	if len(ids) < utils.MinCompareEntities || len(ids) > utils.MaxCompareEntities {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest,
			fmt.Sprintf("compare needs %d-%d distinct drivers", utils.MinCompareEntities, utils.MaxCompareEntities),
			map[string]interface{}{"drivers": len(ids)})
	}

	minRaces := s.thresholds.MinConsistencyRaces
	return memoize(ctx, s, "compare", analyticsKey(season, "compare", strings.Join(ids, ","), itoa(minRaces)),
		func(ctx context.Context) ([]compare.Row, error) {
			results, err := s.data.SeasonResults(ctx, season)
			if err != nil {
				return nil, err
			}
			grouped := byDriver(results)

			byName := make(map[string][]models.RaceResult, len(ids))
			for _, id := range ids {
				rs := grouped[id]
				name := id
				if len(rs) > 0 {
					name = rs[0].DriverName
				}
				byName[name] = rs
			}
			return compare.Entities(byName, minRaces), nil
		})
}

// normalizeIDs trims, drops empties and duplicates, and sorts so the cache
// key does not depend on request order
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DriverLookup finds a driver id by display name in the season's standings
func (s *AnalyticsService) DriverLookup(ctx context.Context, season, name string) (models.LookupResponse, error) {
	standings, err := s.data.DriverStandings(ctx, season)
	if err != nil {
		return models.LookupResponse{}, err
	}
	id, ok := models.FindDriverID(strings.TrimSpace(name), standings)
	if !ok {
		return models.LookupResponse{}, NewServiceError(CodeNotFound, fmt.Sprintf("no driver named %q in %s", name, season))
	}
	return models.LookupResponse{Name: name, ID: id}, nil
}

// ConstructorLookup finds a constructor id by name in the season's standings
func (s *AnalyticsService) ConstructorLookup(ctx context.Context, season, name string) (models.LookupResponse, error) {
	standings, err := s.data.ConstructorStandings(ctx, season)
	if err != nil {
		return models.LookupResponse{}, err
	}
	id, ok := models.FindConstructorID(strings.TrimSpace(name), standings)
	if !ok {
		return models.LookupResponse{}, NewServiceError(CodeNotFound, fmt.Sprintf("no constructor named %q in %s", name, season))
	}
	return models.LookupResponse{Name: name, ID: id}, nil
}

// DriverStatistics returns a driver's season totals
func (s *AnalyticsService) DriverStatistics(ctx context.Context, season, driverID string) (DriverStats, error) {
	return memoize(ctx, s, "driver_stats", analyticsKey(season, "driver", driverID, "stats"),
		func(ctx context.Context) (DriverStats, error) {
			driver, err := s.data.Driver(ctx, season, driverID)
			if err != nil {
				return DriverStats{}, err
			}
			results, err := s.data.DriverResults(ctx, season, driverID)
			if err != nil {
				return DriverStats{}, err
			}
			return DriverStats{Driver: driver, Season: season, DriverStats: entity.DriverStatistics(results)}, nil
		})
}

// DriverAnalytics returns consistency, DNF, points, form and correlation for
// one driver's season
func (s *AnalyticsService) DriverAnalytics(ctx context.Context, season, driverID string) (DriverAnalytics, error) {
	t := s.thresholds
	key := analyticsKey(season, "driver", driverID, "analytics",
		itoa(t.MinConsistencyRaces), itoa(t.MinCorrelationRaces), itoa(t.FormWindow), ftoa(t.TrendSlopeThreshold))

	return memoize(ctx, s, "driver_analytics", key,
		func(ctx context.Context) (DriverAnalytics, error) {
			driver, err := s.data.Driver(ctx, season, driverID)
			if err != nil {
				return DriverAnalytics{}, err
			}
			results, err := s.data.DriverResults(ctx, season, driverID)
			if err != nil {
				return DriverAnalytics{}, err
			}

			return DriverAnalytics{
				Driver:          driver,
				Season:          season,
				Consistency:     entity.Consistency(results, t.MinConsistencyRaces),
				DNF:             entity.DNFRate(results),
				PointsPerRace:   entity.PointsPerRace(results, false),
				PointsPerFinish: entity.PointsPerRace(results, true),
				Form:            entity.FormIndicator(entity.MostRecentFirst(results), t.FormWindow, t.TrendSlopeThreshold),
				Correlation:     entity.QualiRaceCorrelation(results, t.MinCorrelationRaces),
			}, nil
		})
}

// DriverTrend returns a per-race series of position or points
func (s *AnalyticsService) DriverTrend(ctx context.Context, season, driverID, metric string) ([]entity.TrendPoint, error) {
	m, err := entity.ParseTrendMetric(metric)
	if err != nil {
		return nil, invalid("metric must be %q or %q", entity.MetricPosition, entity.MetricPoints)
	}

	return memoize(ctx, s, "driver_trend", analyticsKey(season, "driver", driverID, "trend", string(m)),
		func(ctx context.Context) ([]entity.TrendPoint, error) {
			results, err := s.data.DriverResults(ctx, season, driverID)
			if err != nil {
				return nil, err
			}
			return entity.PerformanceTrend(results, m), nil
		})
}

// DriverPercentile ranks a driver against the season's regular starters
func (s *AnalyticsService) DriverPercentile(ctx context.Context, season, driverID string) (compare.PercentileResult, error) {
	t := s.thresholds
	key := analyticsKey(season, "driver", driverID, "percentile", ftoa(t.ParticipationThreshold), itoa(t.MinConsistencyRaces))

	return memoize(ctx, s, "driver_percentile", key,
		func(ctx context.Context) (compare.PercentileResult, error) {
			results, err := s.data.SeasonResults(ctx, season)
			if err != nil {
				return compare.PercentileResult{}, err
			}
			grouped := byDriver(results)
			if len(grouped[driverID]) == 0 {
				return compare.PercentileResult{}, NewServiceError(CodeNotFound,
					fmt.Sprintf("driver %s has no results in %s", driverID, season))
			}
			return compare.Percentile(driverID, grouped, t.ParticipationThreshold, t.MinConsistencyRaces), nil
		})
}

// ConstructorStatistics returns a constructor's season totals
func (s *AnalyticsService) ConstructorStatistics(ctx context.Context, season, constructorID string) (ConstructorStats, error) {
	return memoize(ctx, s, "constructor_stats", analyticsKey(season, "constructor", constructorID, "stats"),
		func(ctx context.Context) (ConstructorStats, error) {
			constructor, err := s.data.Constructor(ctx, season, constructorID)
			if err != nil {
				return ConstructorStats{}, err
			}
			results, err := s.data.ConstructorResults(ctx, season, constructorID)
			if err != nil {
				return ConstructorStats{}, err
			}
			return ConstructorStats{
				Constructor:      constructor,
				Season:           season,
				ConstructorStats: team.ConstructorStatistics(results),
			}, nil
		})
}

// Reliability returns a constructor's finishing and mechanical DNF rates
func (s *AnalyticsService) Reliability(ctx context.Context, season, constructorID string) (team.ReliabilityResult, error) {
	return memoize(ctx, s, "reliability", analyticsKey(season, "constructor", constructorID, "reliability"),
		func(ctx context.Context) (team.ReliabilityResult, error) {
			results, err := s.data.ConstructorResults(ctx, season, constructorID)
			if err != nil {
				return team.ReliabilityResult{}, err
			}
			return team.Reliability(results), nil
		})
}

// Development returns a constructor's rolling points and position. A window
// below 1 uses the configured rolling window.
func (s *AnalyticsService) Development(ctx context.Context, season, constructorID string, window int) (team.DevelopmentResult, error) {
	if window < 1 {
		window = s.thresholds.RollingWindow
	}
	slope := s.thresholds.TrendSlopeThreshold
	key := analyticsKey(season, "constructor", constructorID, "development", itoa(window), ftoa(slope))

	return memoize(ctx, s, "development", key,
		func(ctx context.Context) (team.DevelopmentResult, error) {
			results, err := s.data.ConstructorResults(ctx, season, constructorID)
			if err != nil {
				return team.DevelopmentResult{}, err
			}
			return team.RollingDevelopment(results, window, slope), nil
		})
}

// Pairing compares a constructor's two regular drivers. With more than two
// drivers in a season the two with the most starts are used.
func (s *AnalyticsService) Pairing(ctx context.Context, season, constructorID string) (team.PairingResult, error) {
	threshold := s.thresholds.ImbalanceThreshold
	key := analyticsKey(season, "constructor", constructorID, "pairing", ftoa(threshold))

	return memoize(ctx, s, "pairing", key,
		func(ctx context.Context) (team.PairingResult, error) {
			results, err := s.data.ConstructorResults(ctx, season, constructorID)
			if err != nil {
				return team.PairingResult{}, err
			}

			grouped := byDriver(results)
			ids := make([]string, 0, len(grouped))
			for id := range grouped {
				ids = append(ids, id)
			}
			if len(ids) < 2 {
				return team.PairingResult{}, NewServiceError(CodeNotFound,
					fmt.Sprintf("constructor %s has fewer than two drivers in %s", constructorID, season))
			}
			sort.Slice(ids, func(i, j int) bool {
				if len(grouped[ids[i]]) != len(grouped[ids[j]]) {
					return len(grouped[ids[i]]) > len(grouped[ids[j]])
				}
				return ids[i] < ids[j]
			})

			first, second := grouped[ids[0]], grouped[ids[1]]
			return team.DriverPairing(first, second, first[0].DriverName, second[0].DriverName, threshold), nil
		})
}

// DriverSeasons compares a driver's seasons between from and to inclusive
func (s *AnalyticsService) DriverSeasons(ctx context.Context, driverID string, from, to int) ([]compare.SeasonRow, error) {
	minRaces := s.thresholds.MinConsistencyRaces
	key := analyticsKey("career", driverID, "seasons", itoa(from), itoa(to), itoa(minRaces))

	return memoize(ctx, s, "driver_seasons", key,
		func(ctx context.Context) ([]compare.SeasonRow, error) {
			results, err := s.data.DriverCareerResults(ctx, driverID)
			if err != nil {
				return nil, err
			}

			bySeason := make(map[int][]models.RaceResult)
			for _, r := range results {
				if r.Season >= from && r.Season <= to {
					bySeason[r.Season] = append(bySeason[r.Season], r)
				}
			}
			if len(bySeason) == 0 {
				return nil, NewServiceError(CodeNotFound,
					fmt.Sprintf("driver %s has no results between %d and %d", driverID, from, to))
			}
			return compare.Seasons(bySeason, minRaces), nil
		})
}

// DriverCircuit summarises a driver's career at one circuit. minAppearances
// below 1 uses the configured minimum.
func (s *AnalyticsService) DriverCircuit(ctx context.Context, driverID, circuitID string, minAppearances int) (entity.CircuitResult, error) {
	if minAppearances < 1 {
		minAppearances = s.thresholds.MinCircuitAppearances
	}
	key := analyticsKey("career", driverID, "circuit", circuitID, itoa(minAppearances))

	return memoize(ctx, s, "driver_circuit", key,
		func(ctx context.Context) (entity.CircuitResult, error) {
			results, err := s.data.DriverCareerResults(ctx, driverID)
			if err != nil {
				return entity.CircuitResult{}, err
			}
			out := entity.CircuitPerformance(entity.FilterByCircuit(results, circuitID), minAppearances)
			if out.CircuitID == "" {
				out.CircuitID = circuitID
			}
			return out, nil
		})
}

// CircuitDifficulty rates every circuit raced between from and to inclusive.
// Seasons are fetched concurrently.
func (s *AnalyticsService) CircuitDifficulty(ctx context.Context, from, to int) ([]field.DifficultyRow, error) {
	return memoize(ctx, s, "circuit_difficulty", analyticsKey("circuits", "difficulty", itoa(from), itoa(to)),
		func(ctx context.Context) ([]field.DifficultyRow, error) {
			perSeason := make([][]models.RaceResult, to-from+1)
			errs := make([]error, len(perSeason))

			var wg sync.WaitGroup
			sem := make(chan struct{}, utils.MaxConcurrentSeasonFetches)
			for i := range perSeason {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					sem <- struct{}{}
					defer func() { <-sem }()
					perSeason[i], errs[i] = s.data.SeasonResults(ctx, itoa(from+i))
				}(i)
			}
			wg.Wait()

			var all []models.RaceResult
			for i, rs := range perSeason {
				if errs[i] != nil {
					return nil, errs[i]
				}
				all = append(all, rs...)
			}
			return field.CircuitDifficulty(all), nil
		})
}

// CircuitHistory rates one circuit over every race held there
func (s *AnalyticsService) CircuitHistory(ctx context.Context, circuitID string) (field.DifficultyRow, error) {
	return memoize(ctx, s, "circuit_history", analyticsKey("circuits", circuitID, "difficulty"),
		func(ctx context.Context) (field.DifficultyRow, error) {
			results, err := s.data.CircuitResults(ctx, circuitID)
			if err != nil {
				return field.DifficultyRow{}, err
			}
			rows := field.CircuitDifficulty(results)
			if len(rows) == 0 {
				return field.DifficultyRow{}, NewServiceError(CodeNotFound, "circuit "+circuitID+" not found")
			}
			return rows[0], nil
		})
}
