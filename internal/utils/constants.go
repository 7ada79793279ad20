package utils

import "time"

// Upstream client constants
const (
	// DefaultRequestTimeout bounds a single upstream request
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxAttempts is the number of tries per upstream request
	DefaultMaxAttempts = 3

	// DefaultRetryStep is multiplied by the attempt number between tries
	DefaultRetryStep = time.Second

	// MaxPageSize is the largest page the upstream API serves
	MaxPageSize = 100

	// CurrentSeason is the upstream alias for the running season
	CurrentSeason = "current"
)

// Cache and broadcast constants
const (
	// DefaultCleanupInterval is how often expired memory cache entries are swept
	DefaultCleanupInterval = time.Minute

	// RedisPingTimeout bounds the connectivity check on startup
	RedisPingTimeout = 5 * time.Second

	// SubscriberBufferSize is the per-subscriber channel size of the memory queue
	SubscriberBufferSize = 256
)

// HTTP handler constants
const (
	// AnalyticsRequestTimeout bounds a handler that may fan out to several upstream calls
	AnalyticsRequestTimeout = 45 * time.Second

	// MinCompareEntities and MaxCompareEntities bound the comparison table
	MinCompareEntities = 3
	MaxCompareEntities = 10
)

// QueueType represents the type of broadcast transport
type QueueType string

const (
	QueueTypeNone   QueueType = "none"
	QueueTypeMemory QueueType = "memory"
	QueueTypeRedis  QueueType = "redis"
	QueueTypeNATS   QueueType = "nats"
	QueueTypeKafka  QueueType = "kafka"
)

// Analytics service constants
const (
	// MaxSeasonSpan bounds the seasons one multi-season request may cover
	MaxSeasonSpan = 10

	// MaxConcurrentSeasonFetches bounds parallel upstream season loads
	MaxConcurrentSeasonFetches = 4
)
