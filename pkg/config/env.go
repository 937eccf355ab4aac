package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvHoldResponseWindow = "HOLD_RESPONSE_WINDOW"
	EnvHoldLockTTL        = "HOLD_LOCK_TTL"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvNotifyTopic  = "NOTIFY_TOPIC"

	EnvHoldsServiceURL = "HOLDS_SERVICE_URL"
	EnvSweepSchedule   = "SWEEP_SCHEDULE"
)
