package shared

import (
	"context"
	"fmt"
	"github.com/ssherwood/locationservices/internal/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"google.golang.org/grpc/credentials"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

const loggerName = "github.com/ssherwood/locationservices"

func grpcLogOptions() []otlploggrpc.Option {
	options := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(config.OTELCollectorURL),
		otlploggrpc.WithCompressor(config.OTELCompressor),
	}

	if config.OTELExporterInsecure {
		options = append(options, otlploggrpc.WithInsecure())
	} else {
		options = append(options, otlploggrpc.WithTLSCredentials(
			credentials.NewClientTLSFromCert(nil, ""),
		))
	}

	return options
}

// InitializeLogging installs the default slog logger. Records always go to the
// console; with OTEL logs enabled they are also emitted through the returned
// provider, which is nil otherwise.
func InitializeLogging(ctx context.Context) (*sdklog.LoggerProvider, error) {
	console := NewConsoleHandler(os.Stdout, config.LogFormat, config.LogLevel)
	slog.SetDefault(slog.New(console))

	if !config.OTELLogsEnabled {
		return nil, nil
	}

	provider, err := InitializeLoggingProvider(ctx)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(NewOTLPLogHandler(console, provider.Logger(loggerName))))
	return provider, nil
}

func InitializeLoggingProvider(ctx context.Context) (*sdklog.LoggerProvider, error) {
	var processor sdklog.Processor

	switch config.OTELLogsExporter {
	case "stdout":
		stdoutExporter, err := stdoutlog.New()
		if err != nil {
			slog.Error("Unable to initialize OTEL log stdout exporter", config.ErrAttr(err))
			return nil, err
		}
		processor = sdklog.NewSimpleProcessor(stdoutExporter)
	default:
		grpcExporter, err := otlploggrpc.New(ctx, grpcLogOptions()...)
		if err != nil {
			slog.Error("Unable to initialize OTEL log grpc exporter", config.ErrAttr(err))
			return nil, err
		}
		processor = sdklog.NewBatchProcessor(grpcExporter)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(processor),
		sdklog.WithResource(serviceResource()),
	)

	global.SetLoggerProvider(provider)

	return provider, nil
}

// NewConsoleHandler builds a text or json handler at the named level
// (debug, info, warn, error). Unknown levels fall back to info.
func NewConsoleHandler(w io.Writer, format, level string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// OTLPLogHandler writes every record to the console handler and emits it as an
// OTEL log record. Groups flatten into dotted attribute keys.
type OTLPLogHandler struct {
	consoleHandler slog.Handler
	logger         log.Logger
	attrs          []log.KeyValue
	groupPrefix    string
}

func NewOTLPLogHandler(consoleHandler slog.Handler, logger log.Logger) *OTLPLogHandler {
	return &OTLPLogHandler{consoleHandler: consoleHandler, logger: logger}
}

func (h *OTLPLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.consoleHandler.Enabled(ctx, level)
}

func (h *OTLPLogHandler) Handle(ctx context.Context, rec slog.Record) error {
	// Log to console
	if err := h.consoleHandler.Handle(ctx, rec); err != nil {
		return err
	}

	var record log.Record
	record.SetTimestamp(rec.Time)
	record.SetObservedTimestamp(time.Now())
	record.SetSeverity(severity(rec.Level))
	record.SetSeverityText(rec.Level.String())
	record.SetBody(log.StringValue(rec.Message))
	record.AddAttributes(h.attrs...)

	rec.Attrs(func(attr slog.Attr) bool {
		if kv, ok := convertAttr(h.groupPrefix, attr); ok {
			record.AddAttributes(kv)
		}
		return true
	})

	// the SDK takes the trace and span ids from ctx
	h.logger.Emit(ctx, record)
	return nil
}

func (h *OTLPLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.consoleHandler = h.consoleHandler.WithAttrs(attrs)
	clone.attrs = append(make([]log.KeyValue, 0, len(h.attrs)+len(attrs)), h.attrs...)
	for _, attr := range attrs {
		if kv, ok := convertAttr(h.groupPrefix, attr); ok {
			clone.attrs = append(clone.attrs, kv)
		}
	}
	return &clone
}

func (h *OTLPLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.consoleHandler = h.consoleHandler.WithGroup(name)
	clone.groupPrefix = h.groupPrefix + name + "."
	return &clone
}

// severity maps slog levels onto the OTEL severity ranges; levels between the
// named ones land on the matching sub-level, e.g. INFO+2 is INFO3.
func severity(level slog.Level) log.Severity {
	return log.Severity(int(level) + int(log.SeverityInfo))
}

func convertAttr(prefix string, attr slog.Attr) (log.KeyValue, bool) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return log.KeyValue{}, false
	}
	return log.KeyValue{Key: prefix + attr.Key, Value: convertValue(attr.Value)}, true
}

func convertValue(v slog.Value) log.Value {
	switch v.Kind() {
	case slog.KindString:
		return log.StringValue(v.String())
	case slog.KindInt64:
		return log.Int64Value(v.Int64())
	case slog.KindUint64:
		return log.Int64Value(int64(v.Uint64()))
	case slog.KindFloat64:
		return log.Float64Value(v.Float64())
	case slog.KindBool:
		return log.BoolValue(v.Bool())
	case slog.KindDuration:
		return log.StringValue(v.Duration().String())
	case slog.KindTime:
		return log.StringValue(v.Time().Format(time.RFC3339Nano))
	case slog.KindGroup:
		group := v.Group()
		kvs := make([]log.KeyValue, 0, len(group))
		for _, attr := range group {
			if kv, ok := convertAttr("", attr); ok {
				kvs = append(kvs, kv)
			}
		}
		return log.MapValue(kvs...)
	default:
		if err, ok := v.Any().(error); ok {
			return log.StringValue(err.Error())
		}
		return log.StringValue(fmt.Sprintf("%+v", v.Any()))
	}
}
