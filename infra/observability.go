package infra

import (
	"context"
	"log"

	"github.com/tnqbao/gau-photobooth/config"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Observability struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

func newResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.Grafana.ServiceName),
		attribute.String("deployment.environment", cfg.Environment.Mode),
		attribute.String("group", cfg.Environment.Group),
	)
}

// InitObservability wires OTLP trace and metric exporters plus Go runtime
// instrumentation. Disabled when no OTLP endpoint is configured.
func InitObservability(cfg *config.EnvConfig) *Observability {
	if cfg.Grafana.OTLPEndpoint == "" {
		return &Observability{}
	}

	ctx := context.Background()
	res := newResource(cfg)

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
	)
	if err != nil {
		log.Printf("Warning: failed to initialize OTLP trace exporter: %v", err)
		return &Observability{}
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
	)
	if err != nil {
		log.Printf("Warning: failed to initialize OTLP metric exporter: %v", err)
		return &Observability{TracerProvider: tracerProvider}
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		log.Printf("Warning: failed to start runtime instrumentation: %v", err)
	}

	return &Observability{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	if o.TracerProvider != nil {
		_ = o.TracerProvider.Shutdown(ctx)
	}
	if o.MeterProvider != nil {
		_ = o.MeterProvider.Shutdown(ctx)
	}
}
