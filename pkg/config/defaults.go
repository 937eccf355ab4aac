package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "guidecal"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Providers get 48 hours to answer a hold before it expires.
	DefaultHoldResponseWindow = 48 * time.Hour
	DefaultHoldLockTTL        = 10 * time.Second

	DefaultKafkaBrokers = "localhost:9092"
	DefaultNotifyTopic  = "guidecal.hold-events"

	DefaultHoldsServiceURL = "http://localhost:8081"
	DefaultSweepSchedule   = "*/15 * * * *"

	DefaultPaginationLimit = 100
)
