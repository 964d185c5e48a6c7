package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// counterTotal sums all data points of an int64 counter.
func counterTotal(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordRequest(t *testing.T) {
	reader, mp := newManualMeter()
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	ctx := context.Background()
	meta := RequestMeta{Method: "GET", Route: "/api/products/{id}", Path: "/api/products/1"}
	metrics.RecordRequest(ctx, meta, 200, 5*time.Millisecond)
	metrics.RecordRequest(ctx, meta, 403, time.Millisecond)
	metrics.RecordRequest(ctx, meta, 503, time.Millisecond)

	rm := collect(t, reader)
	if got := counterTotal(t, rm, "http.server.requests"); got != 3 {
		t.Errorf("http.server.requests = %d, want 3", got)
	}
	if got := counterTotal(t, rm, "http.server.errors"); got != 1 {
		t.Errorf("http.server.errors = %d, want 1 (5xx only)", got)
	}

	hist := findMetric(rm, "http.server.duration_ms")
	if hist == nil {
		t.Fatal("http.server.duration_ms not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	var count uint64
	for _, dp := range h.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("histogram count = %d, want 3", count)
	}
}

func TestMetrics_LabelsUseRoute(t *testing.T) {
	reader, mp := newManualMeter()
	metrics, _ := NewMetrics(mp.Meter("test"))

	metrics.RecordRequest(context.Background(),
		RequestMeta{Method: "PUT", Route: "/api/products/{id}", Path: "/api/products/9"},
		200, time.Millisecond)

	m := findMetric(collect(t, reader), "http.server.requests")
	sum := m.Data.(metricdata.Sum[int64])
	attrs := sum.DataPoints[0].Attributes

	if v, ok := attrs.Value(attribute.Key("http.route")); !ok || v.AsString() != "/api/products/{id}" {
		t.Errorf("http.route = %v", v.AsString())
	}
	if v, ok := attrs.Value(attribute.Key("http.request.method")); !ok || v.AsString() != "PUT" {
		t.Errorf("http.request.method = %v", v.AsString())
	}
	if v, ok := attrs.Value(attribute.Key("http.response.status_code")); !ok || v.AsString() != "200" {
		t.Errorf("http.response.status_code = %v", v.AsString())
	}
}

func TestAuthMetrics_Counters(t *testing.T) {
	reader, mp := newManualMeter()
	am, err := NewAuthMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewAuthMetrics() error = %v", err)
	}

	ctx := context.Background()
	am.RecordTokenFailure(ctx, "expired")
	am.RecordTokenFailure(ctx, "invalid_signature")
	am.RecordAuthorization(ctx, "allow", "none")
	am.RecordAuthorization(ctx, "deny", "forbidden")
	am.RecordAuthorization(ctx, "deny", "unauthenticated")

	rm := collect(t, reader)
	if got := counterTotal(t, rm, "auth.token.failures"); got != 2 {
		t.Errorf("auth.token.failures = %d, want 2", got)
	}
	if got := counterTotal(t, rm, "auth.decisions"); got != 3 {
		t.Errorf("auth.decisions = %d, want 3", got)
	}

	sum := findMetric(rm, "auth.token.failures").Data.(metricdata.Sum[int64])
	kinds := map[string]bool{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("failure"))
		kinds[v.AsString()] = true
	}
	if !kinds["expired"] || !kinds["invalid_signature"] {
		t.Errorf("unexpected failure labels: %v", kinds)
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	reader, mp := newManualMeter()
	metrics, _ := NewMetrics(mp.Meter("test"))

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			metrics.RecordRequest(context.Background(), RequestMeta{Method: "GET", Path: "/x"}, 200, time.Millisecond)
		}()
	}
	wg.Wait()

	if got := counterTotal(t, collect(t, reader), "http.server.requests"); got != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, got)
	}
}

func TestNopMetrics_NoPanic(t *testing.T) {
	ctx := context.Background()
	NopMetrics().RecordRequest(ctx, RequestMeta{Method: "GET"}, 200, time.Millisecond)
	NopAuthMetrics().RecordTokenFailure(ctx, "malformed")
	NopAuthMetrics().RecordAuthorization(ctx, "deny", "forbidden")
}
