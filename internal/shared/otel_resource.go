package shared

import (
	"github.com/ssherwood/locationservices/internal/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"os"
)

// serviceResource describes this process to every OTEL provider.
func serviceResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.TelemetrySDKLanguageGo,
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		semconv.HostNameKey.String(config.Hostname),
		semconv.ProcessPIDKey.Int64(int64(os.Getpid())),
	)
}
