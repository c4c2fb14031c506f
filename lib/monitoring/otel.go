/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

// Package monitoring exports traces, metrics and logs of the test processes with OpenTelemetry
package monitoring

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	otellog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
)

const (
	serviceName    = "qa-starter-kit"
	serviceVersion = "0.1.0"
)

// Monitor owns the telemetry providers of the process
type Monitor struct {
	cfg   *config.MonitoringConfig
	conn  *grpc.ClientConn
	suite string

	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
	loggerProvider *otellog.LoggerProvider

	shutdownFuncs []func(context.Context) error
}

// Initialize installs the global OpenTelemetry providers exporting to the collector. When
// monitoring is disabled the returned Monitor does nothing and the globals stay no-op.
func Initialize(ctx context.Context, cfg *config.MonitoringConfig, suite string) (*Monitor, error) {
	logger := log.WithFunc("monitoring", "Initialize")
	m := &Monitor{cfg: cfg, suite: suite}
	if !cfg.Enabled {
		logger.Debug("Monitoring disabled")
		return m, nil
	}

	res, err := m.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// All the exporters are sharing one lazy connection, nothing is dialed here
	m.conn, err = grpc.NewClient(cfg.OTLPEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	if err := m.initTracing(ctx, res); err != nil {
		m.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(ctx, res); err != nil {
		m.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := m.initLogging(ctx, res); err != nil {
		m.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	logger.Info("Monitoring initialized", "endpoint", cfg.OTLPEndpoint, "suite", suite)
	return m, nil
}

func (m *Monitor) createResource() (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
		semconv.ServiceNamespace(m.suite),
	))
}

func (m *Monitor) initTracing(ctx context.Context, res *resource.Resource) error {
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(m.conn))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	m.tracerProvider = trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(m.cfg.SampleRate))),
	)
	otel.SetTracerProvider(m.tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.shutdownFuncs = append(m.shutdownFuncs, m.tracerProvider.Shutdown)
	return nil
}

func (m *Monitor) initMetrics(ctx context.Context, res *resource.Resource) error {
	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(m.conn))
	if err != nil {
		return fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	m.meterProvider = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(m.cfg.MetricsInterval.Std()))),
	)
	otel.SetMeterProvider(m.meterProvider)

	metrics, err := NewMetrics(m.meterProvider.Meter(serviceName))
	if err != nil {
		return err
	}
	metrics.StartCollection(m.cfg.MetricsInterval.Std())
	setCurrent(metrics)

	m.shutdownFuncs = append(m.shutdownFuncs, func(context.Context) error {
		metrics.StopCollection()
		return nil
	}, m.meterProvider.Shutdown)
	return nil
}

func (m *Monitor) initLogging(ctx context.Context, res *resource.Resource) error {
	exporter, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(m.conn))
	if err != nil {
		return fmt.Errorf("failed to create log exporter: %w", err)
	}

	m.loggerProvider = otellog.NewLoggerProvider(
		otellog.WithProcessor(otellog.NewBatchProcessor(exporter)),
		otellog.WithResource(res),
	)
	global.SetLoggerProvider(m.loggerProvider)
	m.shutdownFuncs = append(m.shutdownFuncs, m.loggerProvider.Shutdown)

	// Console output stays, the records are duplicated into the bridge
	return log.SetupOtelIntegration()
}

// Tracer returns the tracer of the global provider, no-op when monitoring is disabled
func Tracer() oteltrace.Tracer {
	return otel.Tracer(serviceName)
}

// StartSpan starts a span on the global tracer
func StartSpan(ctx context.Context, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// Enabled tells if the telemetry is exported
func (m *Monitor) Enabled() bool {
	return m.cfg.Enabled
}

// Shutdown flushes the pending telemetry and closes the exporters
func (m *Monitor) Shutdown(ctx context.Context) error {
	var errs []error
	// Logs go last to keep the records of the other shutdowns
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.shutdownFuncs = nil
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		m.conn = nil
	}
	setCurrent(nil)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("monitoring shutdown: %w", err)
	}
	return nil
}
