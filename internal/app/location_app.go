package app

import (
	"context"
	"errors"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ssherwood/locationservices/internal/catalog"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/location"
	"github.com/ssherwood/locationservices/internal/shared"
	"github.com/yugabyte/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel/sdk/log"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

const providerName = "catalog"

type Application interface {
	Initialize(ctx context.Context) error
	Run()
	Shutdown(ctx context.Context) error
}

type LocationApplication struct {
	Server          *http.Server
	Router          *mux.Router
	TracerProvider  *trace.TracerProvider
	MetricsProvider *metricsdk.MeterProvider
	LoggerProvider  *log.LoggerProvider
	DB              *pgxpool.Pool
	Redis           *redis.Client
	Locations       location.Service
}

var _ Application = (*LocationApplication)(nil)

func (app *LocationApplication) Initialize(ctx context.Context) error {
	if lp, err := shared.InitializeLogging(ctx); err != nil {
		return err
	} else {
		app.LoggerProvider = lp
	}

	if config.OTELTracerEnabled {
		if tp, err := shared.InitTracerProvider(ctx); err != nil {
			return err
		} else {
			app.TracerProvider = tp
		}
	}

	if config.OTELMetricsEnabled {
		if mp, err := shared.InitializeMetricProvider(ctx); err != nil {
			return err
		} else {
			app.MetricsProvider = mp
		}
	}

	if db, err := shared.InitializeDB(ctx); err != nil {
		return err
	} else {
		app.DB = db

		// force establishing at least one valid connection
		if err = shared.PingDB(ctx, db); err != nil {
			return err
		}
	}

	catalogRepository := catalog.NewRepository(app.DB, config.DBFollowerReads)
	if err := catalogRepository.EnsureSchema(ctx); err != nil {
		slog.Error("Unable to prepare address catalog", config.ErrAttr(err))
		return err
	}

	if rc, err := shared.InitializeRedis(ctx); err != nil {
		return err
	} else {
		app.Redis = rc
	}

	catalogService := catalog.NewService(catalogRepository, catalog.Options{
		RouteStep:          config.CatalogRouteStepMeters,
		MaxRoutePoints:     config.CatalogMaxRoutePoints,
		MaxReverseDistance: config.CatalogMaxReverseDistanceM,
	})
	app.Locations = app.decorate(catalogService)

	app.Router = mux.NewRouter()
	app.Router.Use(otelmux.Middleware(config.ServiceName), location.RequestID)

	_ = location.NewHandler(app.Router, app.Locations, config.ProviderMaxBatchConcurrency)
	_ = catalog.NewHandler(app.Router, catalogService)

	app.Server = &http.Server{
		Handler:      app.Router,
		Addr:         config.ServerAddress,
		WriteTimeout: config.ServerWriteTimeout,
		ReadTimeout:  config.ServerReadTimeout,
		ErrorLog:     slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	return nil
}

// decorate wraps svc so cache hits skip the rate limiter and every call that
// reaches the provider is traced and measured.
func (app *LocationApplication) decorate(svc location.Service) location.Service {
	svc = location.Instrument(svc, providerName)

	if config.ProviderRequestsPerSecond > 0 {
		svc = location.RateLimit(svc,
			rate.NewLimiter(rate.Limit(config.ProviderRequestsPerSecond), config.ProviderRequestBurst))
	}

	if app.Redis != nil {
		svc = location.WithCache(svc, shared.NewRedisCache(app.Redis, config.ServiceName+":"), config.CacheTTL)
	}

	return svc
}

func (app *LocationApplication) Run() {

	go func() {
		slog.Info("Starting application", config.SlogServiceName, config.SlogServiceAddress)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("Failed to start application", config.SlogServiceName, config.ErrAttr(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// create a context with timeout for the shutdown process
	cancelContext, cancelFn := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancelFn()

	if err := app.Shutdown(cancelContext); err != nil {
		slog.Info("Failed to gracefully shutdown", config.SlogServiceName, config.ErrAttr(err))
	}

	slog.Info("Application stopped.", config.SlogServiceName)
}

// Shutdown - stops the HTTP server first, then flushes telemetry and closes
// the database and cache clients concurrently.
func (app *LocationApplication) Shutdown(ctx context.Context) error {
	slog.Info("Application shutting down...", config.SlogServiceName)

	var errs []error
	if app.Server != nil {
		if err := app.Server.Shutdown(ctx); err != nil {
			slog.Warn("Unable to shutdown HTTP server", config.SlogServiceName, config.ErrAttr(err))
			errs = append(errs, err)
		}
	}

	var g errgroup.Group

	if app.MetricsProvider != nil {
		g.Go(func() error {
			if err := app.MetricsProvider.Shutdown(ctx); err != nil {
				slog.Warn("Unable to shutdown OTEL metrics provider", config.SlogServiceName, config.ErrAttr(err))
				return err
			}
			return nil
		})
	}

	if app.TracerProvider != nil {
		g.Go(func() error {
			if err := app.TracerProvider.Shutdown(ctx); err != nil {
				slog.Warn("Unable to shutdown OTEL tracer provider", config.ErrAttr(err))
				return err
			}
			return nil
		})
	}

	if app.Redis != nil {
		g.Go(func() error {
			if err := app.Redis.Close(); err != nil {
				slog.Warn("Unable to close redis client", config.ErrAttr(err))
				return err
			}
			return nil
		})
	}

	if app.DB != nil {
		g.Go(func() error {
			// waits for acquired connections to be released
			app.DB.Close()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	// last, so the records above are still exported
	if app.LoggerProvider != nil {
		if err := app.LoggerProvider.Shutdown(ctx); err != nil {
			slog.Warn("Unable to shutdown OTEL logger provider", config.ErrAttr(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
