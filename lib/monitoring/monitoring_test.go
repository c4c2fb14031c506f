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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/adobe/qa-starter-kit/lib/config"
)

func collect(t *testing.T, reader sdkmetric.Reader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func Test_disabled_monitor(t *testing.T) {
	cfg := config.Default().Monitoring
	m, err := Initialize(context.Background(), &cfg, "tests")
	require.NoError(t, err)

	assert.False(t, m.Enabled())
	assert.Same(t, disabled, Current())
	// No-op instruments are accepting the records
	Current().RecordScreenshot(context.Background(), "start")
	assert.NoError(t, m.Shutdown(context.Background()))
}

func Test_metrics_recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSessionLogin(ctx, true, 2*time.Second)
	m.RecordBrowserContext(ctx, "chromium")
	m.RecordBrowserContext(ctx, "chromium")
	m.RecordTrace(ctx, config.TracingRetainOnFailure, false)
	m.RecordAPILogin(ctx, true, true)
	m.CollectHostMetrics(ctx)

	data := collect(t, reader)

	contexts, ok := data["qa_browser_contexts_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, contexts.DataPoints, 1)
	assert.Equal(t, int64(2), contexts.DataPoints[0].Value)

	duration, ok := data["qa_session_login_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, 2.0, duration.DataPoints[0].Sum)

	assert.Contains(t, data, "qa_traces_total")
	assert.Contains(t, data, "qa_api_logins_total")
	assert.Contains(t, data, "qa_go_goroutines")
	assert.NotContains(t, data, "qa_screenshots_total", "nothing was recorded")
}

func Test_collection_stop(t *testing.T) {
	m := mustNoop()
	m.StartCollection(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.StopCollection()
	// Second stop is not blocking
	m.StopCollection()
}

func Test_enabled_monitor_sets_current(t *testing.T) {
	cfg := config.Default().Monitoring
	cfg.Enabled = true
	// Connection is lazy, so unreachable collector is not failing the initialization
	cfg.OTLPEndpoint = "127.0.0.1:1"

	m, err := Initialize(context.Background(), &cfg, "tests")
	require.NoError(t, err)
	assert.True(t, m.Enabled())
	assert.NotSame(t, disabled, Current())

	_, span := StartSpan(context.Background(), "test")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// Export to the missing collector could fail, only the cleanup is checked
	m.Shutdown(ctx)
	assert.Same(t, disabled, Current())
}
