package config

import (
	"os"
	"time"
)

var (
	Hostname, _    = os.Hostname()
	ServiceName    = GetEnv("SERVICE_NAME", "LocationService")
	ServiceVersion = GetEnv("SERVICE_VERSION", "1.0")
)

// HTTP server
var (
	ServerAddress      = GetEnv("SERVER_ADDRESS", ":8080")
	ServerWriteTimeout = GetEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerReadTimeout  = GetEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second)
	ShutdownTimeout    = GetEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
)

// Logging
var (
	LogLevel  = GetEnv("LOG_LEVEL", "info")
	LogFormat = GetEnv("LOG_FORMAT", "text")
)

// OpenTelemetry
var (
	OTELCollectorURL          = GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	OTELCompressor            = GetEnv("OTEL_EXPORTER_OTLP_COMPRESSION", "gzip")
	OTELExporterInsecure      = GetEnvAsBool("INSECURE_MODE", true)
	OTELMeterInterval         = GetEnvAsDuration("OTEL_METRIC_EXPORT_INTERVAL", 10*time.Second)
	OTELTraceSampleRatio      = GetEnvAsFloat("OTEL_TRACES_SAMPLER_RATIO", 1.0)
	OTELTracerEnabled         = GetEnvAsBool("OTEL_TRACES_ENABLED", true)
	OTELMetricsEnabled        = GetEnvAsBool("OTEL_METRICS_ENABLED", true)
	OTELLogsEnabled           = GetEnvAsBool("OTEL_LOGS_ENABLED", false)
	OTELLogsExporter          = GetEnv("OTEL_LOGS_EXPORTER", "otlp") // otlp | stdout
	OTELPrefixQuerySpanName   = GetEnvAsBool("OTEL_PGX_PREFIX_QUERY_SPAN_NAME", true)
	OTELTracerLogSQLStatement = GetEnvAsBool("OTEL_PGX_LOG_SQL_STATEMENT", true)
	OTELTracerIncludeParams   = GetEnvAsBool("OTEL_PGX_INCLUDE_PARAMS", false)
)

// Database (YugabyteDB YSQL or plain PostgreSQL)
var (
	DBUserName              = GetEnv("DB_USERNAME", "yugabyte")
	DBPassword              = GetEnv("DB_PASSWORD", "")
	DBHostname              = GetEnv("DB_HOSTNAME", "127.0.0.1:5433")
	DBDatabase              = GetEnv("DB_DATABASE", "yugabyte")
	DBSSLMode               = GetEnv("DB_SSLMODE", "disable")
	DBStatementTimeout      = GetEnvAsDuration("DB_STATEMENT_TIMEOUT", 5*time.Second)
	DBYSQLLoadBalance       = GetEnv("DB_YSQL_LOAD_BALANCE", "false")
	DBYSQLTopologyKeys      = GetEnv("DB_YSQL_TOPOLOGY_KEYS", "")
	DBMaxConns              = int32(GetEnvAsInt("DB_MAX_CONNS", 10))
	DBMinConns              = int32(GetEnvAsInt("DB_MIN_CONNS", 2))
	DBMaxConnLifetime       = GetEnvAsDuration("DB_MAX_CONN_LIFETIME", 4*time.Hour)
	DBMaxConnLifetimeJitter = GetEnvAsDuration("DB_MAX_CONN_LIFETIME_JITTER", 15*time.Minute)
	DBHealthCheckPeriod     = GetEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 10*time.Minute)
	DBConnectTimeout        = GetEnvAsDuration("DB_CONNECT_TIMEOUT", 5*time.Second)
	DBFollowerReads         = GetEnvAsBool("DB_YB_FOLLOWER_READS", false)
)

// Redis result cache; an empty address disables caching.
var (
	RedisAddress  = GetEnv("REDIS_ADDRESS", "")
	RedisPassword = GetEnv("REDIS_PASSWORD", "")
	RedisDB       = GetEnvAsInt("REDIS_DB", 0)
	CacheTTL      = GetEnvAsDuration("CACHE_TTL", 24*time.Hour)
)

// Address catalog provider
var (
	CatalogRouteStepMeters      = GetEnvAsFloat("CATALOG_ROUTE_STEP_METERS", 1000)
	CatalogMaxRoutePoints       = GetEnvAsInt("CATALOG_MAX_ROUTE_POINTS", 256)
	CatalogMaxReverseDistanceM  = GetEnvAsFloat("CATALOG_MAX_REVERSE_DISTANCE_METERS", 5000)
	ProviderRequestsPerSecond   = GetEnvAsFloat("PROVIDER_REQUESTS_PER_SECOND", 50)
	ProviderRequestBurst        = GetEnvAsInt("PROVIDER_REQUEST_BURST", 10)
	ProviderMaxBatchConcurrency = GetEnvAsInt("PROVIDER_MAX_BATCH_CONCURRENCY", 8)
)
