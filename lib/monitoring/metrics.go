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

package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the instruments recorded by the fixtures
type Metrics struct {
	// Fixture metrics
	sessionLogins   metric.Int64Counter
	loginDuration   metric.Float64Histogram
	browserContexts metric.Int64Counter
	screenshots     metric.Int64Counter
	traces          metric.Int64Counter
	apiLogins       metric.Int64Counter

	// Runner host metrics, browsers are heavy so it's useful to see the load next to the failures
	cpuUsage    metric.Float64Gauge
	memoryUsage metric.Float64Gauge
	goroutines  metric.Int64Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var (
	current  atomic.Pointer[Metrics]
	disabled = mustNoop()
)

func mustNoop() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider().Meter(serviceName))
	if err != nil {
		panic(err)
	}
	return m
}

// Current returns the metrics of the initialized monitor or no-op ones
func Current() *Metrics {
	if m := current.Load(); m != nil {
		return m
	}
	return disabled
}

func setCurrent(m *Metrics) {
	current.Store(m)
}

// NewMetrics creates the instruments on the meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{stopCh: make(chan struct{})}

	var err error
	if m.sessionLogins, err = meter.Int64Counter("qa_session_logins_total",
		metric.WithDescription("Browser session logins performed")); err != nil {
		return nil, fmt.Errorf("failed to create session_logins metric: %w", err)
	}
	if m.loginDuration, err = meter.Float64Histogram("qa_session_login_duration_seconds",
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create login_duration metric: %w", err)
	}
	if m.browserContexts, err = meter.Int64Counter("qa_browser_contexts_total"); err != nil {
		return nil, fmt.Errorf("failed to create browser_contexts metric: %w", err)
	}
	if m.screenshots, err = meter.Int64Counter("qa_screenshots_total"); err != nil {
		return nil, fmt.Errorf("failed to create screenshots metric: %w", err)
	}
	if m.traces, err = meter.Int64Counter("qa_traces_total",
		metric.WithDescription("Playwright traces stopped, kept attribute shows if the zip was saved")); err != nil {
		return nil, fmt.Errorf("failed to create traces metric: %w", err)
	}
	if m.apiLogins, err = meter.Int64Counter("qa_api_logins_total"); err != nil {
		return nil, fmt.Errorf("failed to create api_logins metric: %w", err)
	}

	if m.cpuUsage, err = meter.Float64Gauge("qa_host_cpu_usage_percent"); err != nil {
		return nil, fmt.Errorf("failed to create cpu_usage metric: %w", err)
	}
	if m.memoryUsage, err = meter.Float64Gauge("qa_host_memory_usage_percent"); err != nil {
		return nil, fmt.Errorf("failed to create memory_usage metric: %w", err)
	}
	if m.goroutines, err = meter.Int64Gauge("qa_go_goroutines"); err != nil {
		return nil, fmt.Errorf("failed to create goroutines metric: %w", err)
	}

	return m, nil
}

// StartCollection starts periodic host metrics collection
func (m *Metrics) StartCollection(interval time.Duration) {
	m.wg.Add(1)
	go m.collectLoop(interval)
}

// StopCollection stops the collection and waits for the loop to exit
func (m *Metrics) StopCollection() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}

func (m *Metrics) collectLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.CollectHostMetrics(context.Background())
		}
	}
}

// CollectHostMetrics records the current cpu, memory and goroutines usage
func (m *Metrics) CollectHostMetrics(ctx context.Context) {
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		m.cpuUsage.Record(ctx, cpuPercent[0])
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		m.memoryUsage.Record(ctx, memInfo.UsedPercent)
	}
	m.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}

// RecordSessionLogin records the shared session login attempt
func (m *Metrics) RecordSessionLogin(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.sessionLogins.Add(ctx, 1, attrs)
	m.loginDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordBrowserContext records new browser context creation
func (m *Metrics) RecordBrowserContext(ctx context.Context, browser string) {
	m.browserContexts.Add(ctx, 1, metric.WithAttributes(attribute.String("browser", browser)))
}

// RecordScreenshot records the taken screenshot
func (m *Metrics) RecordScreenshot(ctx context.Context, phase string) {
	m.screenshots.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}

// RecordTrace records the stopped trace and whether it was saved
func (m *Metrics) RecordTrace(ctx context.Context, mode string, kept bool) {
	m.traces.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("kept", kept),
	))
}

// RecordAPILogin records the API credentials exchange, stubbed shows the no-auth token was used
func (m *Metrics) RecordAPILogin(ctx context.Context, stubbed, success bool) {
	m.apiLogins.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("stubbed", stubbed),
		attribute.Bool("success", success),
	))
}
