package tracing

import (
	"os"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("liftmates-backend")

// Setup configures the OpenTelemetry SDK via the honeycomb distro and
// instruments the redis client. Returns a shutdown function; a no-op one
// when tracing is disabled.
func Setup(enabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !enabled {
		log.Debugln("tracing disabled, otel setup skipped")
		return func() {}, nil
	}

	if apiKey := os.Getenv("HONEYCOMB_API_KEY"); apiKey == "" {
		log.Warnln("HONEYCOMB_API_KEY env var not set")
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, err
	}

	rdb.AddHook(redisotel.NewTracingHook())

	return otelShutdown, nil
}

// EndSpanWithErrCheck records the error on the span (if any) and ends it.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
