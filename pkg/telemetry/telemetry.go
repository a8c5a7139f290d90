package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sweetpotato0/chainsocket/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// InstrumentationName names the tracer used for capability spans.
const InstrumentationName = "github.com/sweetpotato0/chainsocket"

// Attributes of a capability span.
const (
	AttrKind         = attribute.Key("capability.kind")
	AttrName         = attribute.Key("capability.name")
	AttrCaller       = attribute.Key("capability.caller")
	AttrPromptTokens = attribute.Key("capability.prompt_tokens")
	AttrOutputBytes  = attribute.Key("capability.output_bytes")
)

const exportTimeout = 5 * time.Second

// Config selects where spans go.
type Config struct {
	// ServiceName defaults to chainsocket.
	ServiceName string
	// Endpoint is the OTLP gRPC collector address. Empty falls back to
	// OTEL_EXPORTER_OTLP_ENDPOINT, then to pretty-printed spans on Writer.
	Endpoint string
	// Writer defaults to stderr.
	Writer  io.Writer
	Disable bool
	Logger  *slog.Logger
}

// Init installs a global tracer provider. The returned function flushes
// pending spans and must be called before the process exits.
func Init(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Disable {
		return func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "chainsocket"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.WithComponent("telemetry")
	}

	exp, err := exporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)),
		resource.WithFromEnv(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, exportTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			cfg.Logger.Error("telemetry shutdown failed", "error", err)
			return err
		}
		return nil
	}, nil
}

func exporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if endpoint == "" {
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		cfg.Logger.Debug("no OTLP endpoint, printing spans")
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	}

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
	}
	cfg.Logger.Info("exporting spans over OTLP", "endpoint", endpoint)
	return exp, nil
}

// Tracer returns the capability tracer of the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartCapability opens the span of one generate, execute or delegate call.
func StartCapability(ctx context.Context, tracer trace.Tracer, kind, name, caller string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, AttrKind.String(kind), AttrName.String(name), AttrCaller.String(caller))
	return tracer.Start(ctx, "capability."+kind, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// EndCapability ends a span from StartCapability, recording the reply size
// on success.
func EndCapability(span trace.Span, output string, err error) {
	if err == nil {
		span.SetAttributes(AttrOutputBytes.Int(len(output)))
	}
	End(span, err)
}

// End sets the span status from err and ends it.
func End(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
