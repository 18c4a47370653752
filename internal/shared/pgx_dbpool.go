package shared

import (
	"context"
	"fmt"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/yugabyte/pgx/v5"
	"github.com/yugabyte/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

func InitializeDB(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, configErr := pgxPoolConfig()
	if configErr != nil {
		return nil, configErr
	}

	dbPool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		slog.Error("Unable to create pgx connection pool", config.ErrAttr(poolErr))
		return nil, poolErr
	}

	if config.OTELMetricsEnabled {
		_ = InitPgxPoolMeter(dbPool)
	}
	return dbPool, nil
}

// PingDB forces at least one connection so a bad DSN fails at startup rather
// than on the first request.
func PingDB(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, config.DBConnectTimeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		slog.Error("Unable to reach database", slog.String("host", config.DBHostname), config.ErrAttr(err))
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func connectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?%s",
		url.PathEscape(config.DBUserName), url.PathEscape(config.DBPassword), config.DBHostname, config.DBDatabase,
		mapToOptions(
			map[string]string{
				"sslmode":           config.DBSSLMode,
				"statement_timeout": fmt.Sprint(config.DBStatementTimeout.Milliseconds()),
				"load_balance":      config.DBYSQLLoadBalance,
				"topology_keys":     config.DBYSQLTopologyKeys,
			},
		),
	)
}

func pgxPoolConfig() (*pgxpool.Config, error) {
	connURL := connectionURL()

	poolConfig, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		slog.Warn("Failed to parse pgxpool url", slog.String("url", maskPostgresPassword(connURL)), config.ErrAttr(err))
		return nil, err
	}

	poolConfig.MaxConns = config.DBMaxConns
	poolConfig.MinConns = config.DBMinConns
	poolConfig.MaxConnLifetime = config.DBMaxConnLifetime
	poolConfig.MaxConnLifetimeJitter = config.DBMaxConnLifetimeJitter
	poolConfig.HealthCheckPeriod = config.DBHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = config.DBConnectTimeout

	poolConfig.BeforeAcquire = defaultBeforeAcquireFn()
	poolConfig.AfterRelease = defaultAfterReleaseFn()
	poolConfig.BeforeClose = defaultBeforeCloseFn()

	if config.OTELTracerEnabled {
		poolConfig.ConnConfig.Tracer = NewQueryTracer(nil, []attribute.KeyValue{
			semconv.DBSystemKey.String("yugabytedb"),
			semconv.DBConnectionStringKey.String(maskPostgresPassword(connURL)),
			semconv.ServerAddress(config.Hostname),
		})
	}

	return poolConfig, nil
}

func defaultBeforeAcquireFn() func(ctx context.Context, c *pgx.Conn) bool {
	return func(ctx context.Context, c *pgx.Conn) bool {
		slog.Debug("Before acquiring a database connection from the pool")
		return !c.IsClosed()
	}
}

func defaultAfterReleaseFn() func(c *pgx.Conn) bool {
	return func(c *pgx.Conn) bool {
		slog.Debug("After releasing database connection back to the pool")

		if config.DBFollowerReads && slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			var value string
			_ = c.QueryRow(context.Background(), "select current_setting('yb_read_from_followers')").Scan(&value)
			slog.Debug("Checking current_setting of yb_read_from_followers", "yb_read_from_followers", value)
		}

		return true
	}
}

func defaultBeforeCloseFn() func(c *pgx.Conn) {
	return func(c *pgx.Conn) {
		slog.Debug("Closed database connection", "host", c.Config().Host)
	}
}

// mapToOptions renders params as a sorted query string, skipping empty values.
func mapToOptions(params map[string]string) string {
	var pairs []string
	for key, value := range params {
		if value == "" {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, url.QueryEscape(value)))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

var postgresPassword = regexp.MustCompile(`(postgres://[^:]+:)([^@]+)(@.+)`)

func maskPostgresPassword(connURL string) string {
	return postgresPassword.ReplaceAllString(connURL, `${1}*****${3}`)
}
