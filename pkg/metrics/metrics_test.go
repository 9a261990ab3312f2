package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest(http.MethodGet, "/api/products", http.StatusOK, 120*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/products", http.StatusOK, 80*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/api/products", "status": "200"}); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}); err != nil {
		t.Fatalf("fetch unmatched: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 unmatched request, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", map[string]string{"route": "/api/products"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCatalogMetricsLabelsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCatalogMetrics(reg)
	m.ObserveMutation("product", "create", nil)
	m.ObserveMutation("product", "create", pkgerrors.New(pkgerrors.CodeInvalidVariants, "At least one variant is required"))
	m.ObserveMutation("category", "delete", errors.New("boom"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	cases := []struct {
		labels map[string]string
		want   float64
	}{
		{map[string]string{"entity": "product", "op": "create", "outcome": "ok"}, 1},
		{map[string]string{"entity": "product", "op": "create", "outcome": "INVALID_VARIANTS"}, 1},
		{map[string]string{"entity": "category", "op": "delete", "outcome": "INTERNAL_ERROR"}, 1},
	}
	for _, tc := range cases {
		got, err := fetchCounterValue(mfs, "catalog_mutations_total", tc.labels)
		if err != nil {
			t.Fatalf("fetch %v: %v", tc.labels, err)
		}
		if got != tc.want {
			t.Fatalf("labels %v expected %f got %f", tc.labels, tc.want, got)
		}
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	NewCatalogMetrics(nil).ObserveMutation("product", "create", nil)

	var m *CatalogMetrics
	m.ObserveMutation("product", "create", nil)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCatalogMetrics(reg).ObserveMutation("category", "create", nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catalog_mutations_total") {
		t.Fatalf("expected exposition to include catalog_mutations_total")
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if pair.GetValue() != v {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
