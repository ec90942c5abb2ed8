package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/BaSui01/policyswarm/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/BaSui01/policyswarm"

// Run 描述一次运行，写入导出的 resource，便于按运行筛选 span 与指标
type Run struct {
	ID          string
	Version     string
	Model       string
	TotalTurns  int
	Temperature float64
	Personas    int
}

// Attributes 返回运行相关的 resource 属性
func (r Run) Attributes(serviceName string) []attribute.KeyValue {
	version := r.Version
	if version == "" {
		version = "dev"
	}
	return []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(version),
		semconv.ServiceInstanceIDKey.String(r.ID),
		attribute.String("policyswarm.llm.model", r.Model),
		attribute.Float64("policyswarm.llm.temperature", r.Temperature),
		attribute.Int("policyswarm.run.total_turns", r.TotalTurns),
		attribute.Int("policyswarm.run.personas", r.Personas),
	}
}

// Providers 持有运行的 TracerProvider 与 MeterProvider。
// 未启用时两者为 nil，Tracer/Meter 回退到全局 noop 实现。
type Providers struct {
	res *resource.Resource
	tp  *sdktrace.TracerProvider
	mp  *sdkmetric.MeterProvider
}

// Init 按配置创建 OTLP gRPC 导出器；未启用时不连接任何外部服务
func Init(ctx context.Context, cfg config.TelemetryConfig, run Run, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "telemetry"), zap.String("run_id", run.ID))

	p := &Providers{}
	if !cfg.Enabled {
		logger.Debug("telemetry disabled")
		return p, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(run.Attributes(cfg.ServiceName)...))
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	spans, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	points, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure())
	if err != nil {
		_ = spans.Shutdown(ctx)
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	p.res = res
	p.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spans),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))))
	p.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(points)),
		sdkmetric.WithResource(res))

	otel.SetTracerProvider(p.tp)
	otel.SetMeterProvider(p.mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("telemetry enabled",
		zap.String("endpoint", cfg.OTLPEndpoint),
		zap.String("model", run.Model),
		zap.Float64("sample_rate", cfg.SampleRate))
	return p, nil
}

// Resource 返回导出使用的 resource，未启用时为 nil
func (p *Providers) Resource() *resource.Resource {
	if p == nil {
		return nil
	}
	return p.res
}

// Tracer 返回对话引擎使用的 tracer
func (p *Providers) Tracer() trace.Tracer {
	if p == nil || p.tp == nil {
		return otel.Tracer(instrumentationName)
	}
	return p.tp.Tracer(instrumentationName)
}

// Meter 返回回合指标使用的 meter
func (p *Providers) Meter() metric.Meter {
	if p == nil || p.mp == nil {
		return otel.Meter(instrumentationName)
	}
	return p.mp.Meter(instrumentationName)
}

// Shutdown 刷出剩余的 span 与指标。nil 或未启用时为空操作。
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.mp != nil {
		if err := p.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
