package shared

import (
	"context"
	"errors"
	"fmt"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/yugabyte/pgx/v5"
	"github.com/yugabyte/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"go.opentelemetry.io/otel/trace"
	"log/slog"
	"runtime/debug"
	"strings"
)

const (
	tracerName          = "github.com/ssherwood/locationservices/internal/shared/pgx"
	sqlOperationUnknown = "UNKNOWN"
)

const (
	RowsAffectedKey    = attribute.Key("pgx.rows_affected")
	QueryParametersKey = attribute.Key("pgx.query.parameters")
	// SQLStateKey is the PostgreSQL error code,
	// see https://www.postgresql.org/docs/current/errcodes-appendix.html.
	SQLStateKey = attribute.Key("pgx.sql_state")
)

// PgxQueryTracer starts a client span per query when the caller already has a
// recording span, e.g. one started by otelmux or location.Instrument.
type PgxQueryTracer struct {
	tracer              trace.Tracer
	attrs               []attribute.KeyValue
	prefixQuerySpanName bool
	logSQLStatement     bool
	includeParams       bool
}

func NewQueryTracer(tp trace.TracerProvider, globalAttrs []attribute.KeyValue) *PgxQueryTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &PgxQueryTracer{
		tracer:              tp.Tracer(tracerName, trace.WithInstrumentationVersion(moduleVersion())),
		attrs:               globalAttrs,
		prefixQuerySpanName: config.OTELPrefixQuerySpanName,
		logSQLStatement:     config.OTELTracerLogSQLStatement,
		includeParams:       config.OTELTracerIncludeParams,
	}
}

func (t *PgxQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if !trace.SpanFromContext(ctx).IsRecording() {
		return ctx
	}

	attrs := append([]attribute.KeyValue{}, t.attrs...)
	if conn != nil {
		if cfg := conn.Config(); cfg != nil {
			attrs = append(attrs,
				semconv.ClientAddress(cfg.Host),
				semconv.ClientPort(int(cfg.Port)),
				semconv.DBUser(cfg.User),
			)
		}
	}
	if t.logSQLStatement {
		attrs = append(attrs, semconv.DBStatement(data.SQL))
		if t.includeParams {
			attrs = append(attrs, paramsAttribute(data.Args))
		}
	}

	spanName := sqlOperationName(data.SQL)
	if t.prefixQuerySpanName {
		spanName = "query " + spanName
	}

	ctx, _ = t.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx
}

func (t *PgxQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)

	if data.Err == nil {
		span.SetAttributes(RowsAffectedKey.Int64(data.CommandTag.RowsAffected()))
	} else {
		recordSQLError(span, data.Err)
	}

	span.End()
}

func (t *PgxQueryTracer) TraceConnectStart(ctx context.Context, data pgx.TraceConnectStartData) context.Context {
	slog.DebugContext(ctx, "Connecting to database", slog.String("conn", maskPostgresPassword(data.ConnConfig.ConnString())))
	return ctx
}

func (t *PgxQueryTracer) TraceConnectEnd(ctx context.Context, data pgx.TraceConnectEndData) {
	if data.Err != nil {
		slog.WarnContext(ctx, "Database connection failed", config.ErrAttr(data.Err))
	}
}

// sqlOperationName returns the first word of stmt upper-cased, e.g. SELECT.
// Falling back to a fixed name keeps span names low cardinality.
func sqlOperationName(stmt string) string {
	parts := strings.Fields(stmt)
	if len(parts) == 0 {
		return sqlOperationUnknown
	}
	return strings.ToUpper(parts[0])
}

func paramsAttribute(args []any) attribute.KeyValue {
	ss := make([]string, len(args))
	for i := range args {
		ss[i] = fmt.Sprintf("%+v", args[i])
	}
	return QueryParametersKey.StringSlice(ss)
}

// recordSQLError marks span failed; no rows is an answer, not a failure.
func recordSQLError(span trace.Span, err error) {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		span.SetAttributes(SQLStateKey.String(pgErr.Code))
	}
}

func moduleVersion() string {
	if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo.Main.Version != "" {
		return buildInfo.Main.Version
	}
	return "unknown"
}
