package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gridstats/gridstats/internal/cache"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/utils"
)

// Upstream is the results API as seen by the data service. *ergast.Client
// implements it.
type Upstream interface {
	LatestRace(ctx context.Context, season string) (models.Race, []models.RaceResult, error)
	NextRace(ctx context.Context, season string) (models.Race, error)
	Schedule(ctx context.Context, season string) ([]models.Race, error)
	SeasonResults(ctx context.Context, season string) ([]models.RaceResult, error)
	DriverStandings(ctx context.Context, season string) ([]models.DriverStanding, error)
	DriverStandingsAfterRound(ctx context.Context, season string, round int) ([]models.DriverStanding, error)
	ConstructorStandings(ctx context.Context, season string) ([]models.ConstructorStanding, error)
	Driver(ctx context.Context, season, driverID string) (models.Driver, error)
	DriverResults(ctx context.Context, season, driverID string) ([]models.RaceResult, error)
	DriverCareerResults(ctx context.Context, driverID string) ([]models.RaceResult, error)
	Constructor(ctx context.Context, season, constructorID string) (models.Constructor, error)
	ConstructorResults(ctx context.Context, season, constructorID string) ([]models.RaceResult, error)
	ConstructorDrivers(ctx context.Context, season, constructorID string) ([]models.Driver, error)
	CircuitResults(ctx context.Context, circuitID string) ([]models.RaceResult, error)
}

// Cache key namespaces. Season-scoped keys put the season right after the
// namespace so one season can be invalidated by prefix.
const (
	DataKeyPrefix      = "data"
	AnalyticsKeyPrefix = "analytics"
)

// InvalidationPrefixes returns prefix plus the alias that shares its cached
// season. Entries fetched for "current" are keyed under "current", so a
// prefix naming year also covers the current keys and the reverse.
func InvalidationPrefixes(prefix string, year int) []string {
	out := []string{prefix}
	parts := strings.SplitN(prefix, ":", 3)
	if len(parts) < 2 || (parts[0] != DataKeyPrefix && parts[0] != AnalyticsKeyPrefix) {
		return out
	}

	thisYear := strconv.Itoa(year)
	switch parts[1] {
	case thisYear:
		parts[1] = utils.CurrentSeason
	case utils.CurrentSeason:
		parts[1] = thisYear
	default:
		return out
	}
	return append(out, cache.Key(parts...))
}

// RaceResults is one race with its classification
type RaceResults struct {
	Race    models.Race         `json:"race"`
	Results []models.RaceResult `json:"results"`
}

// DataService reads upstream data through the cache
type DataService struct {
	logger   *logging.Logger
	upstream Upstream
	cache    cache.Cache
	ttl      config.CacheConfig
}

// NewDataService creates a new DataService. A nil cache disables caching.
func NewDataService(logger *logging.Logger, upstream Upstream, c cache.Cache, ttl config.CacheConfig) *DataService {
	if logger == nil {
		logger = logging.Global()
	}
	return &DataService{
		logger:   logger,
		upstream: upstream,
		cache:    c,
		ttl:      ttl,
	}
}

func dataKey(parts ...string) string {
	return cache.Key(append([]string{DataKeyPrefix}, parts...)...)
}

func load[T any](ctx context.Context, s *DataService, key string, ttl time.Duration, resource string, fn func(context.Context) (T, error)) (T, error) {
	v, err := cache.Remember(ctx, s.cache, key, ttl, fn)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Upstream load failed", "key", key, "error", err)
		return v, upstreamError(err, resource)
	}
	return v, nil
}

// LatestRace returns the most recent race of season with its results
func (s *DataService) LatestRace(ctx context.Context, season string) (RaceResults, error) {
	return load(ctx, s, dataKey(season, "last"), s.ttl.LiveTTL, "latest race of "+season,
		func(ctx context.Context) (RaceResults, error) {
			race, results, err := s.upstream.LatestRace(ctx, season)
			return RaceResults{Race: race, Results: results}, err
		})
}

// NextRace returns the next scheduled race of season
func (s *DataService) NextRace(ctx context.Context, season string) (models.Race, error) {
	return load(ctx, s, dataKey(season, "next"), s.ttl.LiveTTL, "next race of "+season,
		func(ctx context.Context) (models.Race, error) {
			return s.upstream.NextRace(ctx, season)
		})
}

// Schedule returns the calendar of season
func (s *DataService) Schedule(ctx context.Context, season string) ([]models.Race, error) {
	return load(ctx, s, dataKey(season, "schedule"), s.ttl.ScheduleTTL, "schedule of "+season,
		func(ctx context.Context) ([]models.Race, error) {
			return s.upstream.Schedule(ctx, season)
		})
}

// SeasonResults returns every result of season so far
func (s *DataService) SeasonResults(ctx context.Context, season string) ([]models.RaceResult, error) {
	return load(ctx, s, dataKey(season, "results"), s.ttl.LiveTTL, "results of "+season,
		func(ctx context.Context) ([]models.RaceResult, error) {
			return s.upstream.SeasonResults(ctx, season)
		})
}

// DriverStandings returns the drivers' championship in upstream order
func (s *DataService) DriverStandings(ctx context.Context, season string) ([]models.DriverStanding, error) {
	return load(ctx, s, dataKey(season, "standings", "drivers"), s.ttl.LiveTTL, "driver standings of "+season,
		func(ctx context.Context) ([]models.DriverStanding, error) {
			return s.upstream.DriverStandings(ctx, season)
		})
}

// DriverStandingsAfterRound returns the drivers' championship after round
func (s *DataService) DriverStandingsAfterRound(ctx context.Context, season string, round int) ([]models.DriverStanding, error) {
	r := strconv.Itoa(round)
	return load(ctx, s, dataKey(season, "standings", "drivers", r), s.ttl.HistoryTTL, "driver standings after round "+r,
		func(ctx context.Context) ([]models.DriverStanding, error) {
			return s.upstream.DriverStandingsAfterRound(ctx, season, round)
		})
}

// ConstructorStandings returns the constructors' championship in upstream order
func (s *DataService) ConstructorStandings(ctx context.Context, season string) ([]models.ConstructorStanding, error) {
	return load(ctx, s, dataKey(season, "standings", "constructors"), s.ttl.LiveTTL, "constructor standings of "+season,
		func(ctx context.Context) ([]models.ConstructorStanding, error) {
			return s.upstream.ConstructorStandings(ctx, season)
		})
}

// Driver returns one driver's details
func (s *DataService) Driver(ctx context.Context, season, driverID string) (models.Driver, error) {
	return load(ctx, s, dataKey(season, "driver", driverID), s.ttl.ScheduleTTL, "driver "+driverID,
		func(ctx context.Context) (models.Driver, error) {
			return s.upstream.Driver(ctx, season, driverID)
		})
}

// DriverResults returns a driver's results in season
func (s *DataService) DriverResults(ctx context.Context, season, driverID string) ([]models.RaceResult, error) {
	return load(ctx, s, dataKey(season, "driver", driverID, "results"), s.ttl.LiveTTL, "results of driver "+driverID,
		func(ctx context.Context) ([]models.RaceResult, error) {
			return s.upstream.DriverResults(ctx, season, driverID)
		})
}

// DriverCareerResults returns every result of a driver's career
func (s *DataService) DriverCareerResults(ctx context.Context, driverID string) ([]models.RaceResult, error) {
	return load(ctx, s, dataKey("career", driverID), s.ttl.HistoryTTL, "career of driver "+driverID,
		func(ctx context.Context) ([]models.RaceResult, error) {
			return s.upstream.DriverCareerResults(ctx, driverID)
		})
}

// Constructor returns one constructor's details
func (s *DataService) Constructor(ctx context.Context, season, constructorID string) (models.Constructor, error) {
	return load(ctx, s, dataKey(season, "constructor", constructorID), s.ttl.ScheduleTTL, "constructor "+constructorID,
		func(ctx context.Context) (models.Constructor, error) {
			return s.upstream.Constructor(ctx, season, constructorID)
		})
}

// ConstructorResults returns both cars' results for a constructor in season
func (s *DataService) ConstructorResults(ctx context.Context, season, constructorID string) ([]models.RaceResult, error) {
	return load(ctx, s, dataKey(season, "constructor", constructorID, "results"), s.ttl.LiveTTL, "results of constructor "+constructorID,
		func(ctx context.Context) ([]models.RaceResult, error) {
			return s.upstream.ConstructorResults(ctx, season, constructorID)
		})
}

// ConstructorDrivers returns the drivers who raced for a constructor in season
func (s *DataService) ConstructorDrivers(ctx context.Context, season, constructorID string) ([]models.Driver, error) {
	return load(ctx, s, dataKey(season, "constructor", constructorID, "drivers"), s.ttl.ScheduleTTL, "drivers of constructor "+constructorID,
		func(ctx context.Context) ([]models.Driver, error) {
			return s.upstream.ConstructorDrivers(ctx, season, constructorID)
		})
}

// CircuitResults returns every result recorded at a circuit
func (s *DataService) CircuitResults(ctx context.Context, circuitID string) ([]models.RaceResult, error) {
	return load(ctx, s, dataKey("circuit", circuitID), s.ttl.HistoryTTL, "circuit "+circuitID,
		func(ctx context.Context) ([]models.RaceResult, error) {
			return s.upstream.CircuitResults(ctx, circuitID)
		})
}
