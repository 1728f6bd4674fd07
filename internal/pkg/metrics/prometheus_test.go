package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/wren/config"
)

func TestNewPrometheusRegistry(t *testing.T) {
	tests := []struct {
		name   string
		config config.MetricsConfig
		want   bool // whether we expect success
	}{
		{
			name: "valid config",
			config: config.MetricsConfig{
				Enabled:        true,
				Path:           "/metrics",
				Namespace:      "wren",
				Subsystem:      "shortener",
				CollectRuntime: true,
			},
			want: true,
		},
		{
			name: "minimal config",
			config: config.MetricsConfig{
				Enabled:   true,
				Path:      "/metrics",
				Namespace: "test",
				Subsystem: "test",
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := NewPrometheusRegistry(tt.config)

			if tt.want {
				require.NoError(t, err)
				assert.NotNil(t, registry)

				// Test that we can get the underlying registry
				promRegistry := registry.GetRegistry()
				assert.NotNil(t, promRegistry)

				// Test that we can get the handler
				handler := registry.GetHandler()
				assert.NotNil(t, handler)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPrometheusRegistry_HTTPMetrics(t *testing.T) {
	config := config.MetricsConfig{
		Enabled:   true,
		Path:      "/metrics",
		Namespace: "test",
		Subsystem: "test",
	}

	registry, err := NewPrometheusRegistry(config)
	require.NoError(t, err)

	// Test HTTP request recording
	registry.RecordHTTPRequest("GET", "/test", "200", 0.1)
	registry.RecordHTTPRequest("POST", "/api/urls", "201", 0.05)
	registry.RecordHTTPRequest("GET", "/api/urls/{code}", "302", 0.02)

	// Test in-flight requests
	registry.IncHTTPRequestsInFlight()
	registry.IncHTTPRequestsInFlight()
	registry.DecHTTPRequestsInFlight()

	// We can't easily test the actual metric values without exposing them,
	// but we can verify the methods don't panic
	assert.NotPanics(t, func() {
		registry.RecordHTTPRequest("GET", "/test", "404", 0.01)
	})
}

func TestPrometheusRegistry_BusinessMetrics(t *testing.T) {
	config := config.MetricsConfig{
		Enabled:   true,
		Path:      "/metrics",
		Namespace: "test",
		Subsystem: "test",
	}

	registry, err := NewPrometheusRegistry(config)
	require.NoError(t, err)

	registry.IncURLsShortened()
	registry.IncURLsShortened()
	registry.IncURLsResolved()
	registry.ObserveCacheLookup(true)
	registry.ObserveCacheLookup(false)
	registry.ObserveCacheLookup(false)
	registry.AddClicksFlushed(7)

	families, err := registry.GetRegistry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			values[name] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 2.0, values["test_test_urls_shortened_total"])
	assert.Equal(t, 1.0, values["test_test_urls_resolved_total"])
	assert.Equal(t, 1.0, values["test_test_cache_lookups_total{result=hit}"])
	assert.Equal(t, 2.0, values["test_test_cache_lookups_total{result=miss}"])
	assert.Equal(t, 7.0, values["test_test_clicks_flushed_total"])
}

func TestNoOpRegistry(t *testing.T) {
	registry := NewNoOpRegistry()

	// All methods should be safe to call and not panic
	assert.NotPanics(t, func() {
		registry.RecordHTTPRequest("GET", "/test", "200", 0.1)
		registry.IncHTTPRequestsInFlight()
		registry.DecHTTPRequestsInFlight()
		registry.IncURLsShortened()
		registry.IncURLsResolved()
		registry.ObserveCacheLookup(true)
		registry.AddClicksFlushed(3)

		// These should return nil for NoOp
		assert.Nil(t, registry.GetRegistry())
		assert.Nil(t, registry.GetHandler())
	})
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/health", "/health"},
		{"/ready", "/ready"},
		{"/metrics", "/metrics"},
		{"/api/urls", "/api/urls"},
		{"/api/urls/", "/api/urls"},
		{"/api/urls/1", "/api/urls/{code}"},
		{"/api/urls/zZ9", "/api/urls/{code}"},
		{"/api/urls/a/b", "other"},
		{"/swagger/index.html", "/swagger/*"},
		{"/redoc", "/redoc"},
		{"/random/scan/path", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}

func TestPrometheusMiddleware(t *testing.T) {
	registry, err := NewPrometheusRegistry(config.MetricsConfig{Namespace: "mw", Subsystem: "test"})
	require.NoError(t, err)

	handler := PrometheusMiddleware(registry, "/metrics")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))

	for _, path := range []string{"/api/urls/abc", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	families, err := registry.GetRegistry().Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "mw_test_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case LabelPath:
					assert.Equal(t, "/api/urls/{code}", lp.GetValue())
				case LabelStatusCode:
					assert.Equal(t, "302", lp.GetValue())
				}
			}
		}
	}
	assert.Equal(t, 1.0, total, "scrape endpoint must not be recorded")
}
