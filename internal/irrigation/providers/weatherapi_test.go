package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

func TestWeatherAPIFetchCurrent(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if got := r.URL.Query().Get("q"); got == "" {
			t.Errorf("missing q parameter")
		}
		if got := r.URL.Query().Get("aqi"); got != "no" {
			t.Errorf("aqi = %q, want %q", got, "no")
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want %q", got, "test-key")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current": {"temp_c": 28.4, "precip_mm": 0.2, "last_updated": "2026-06-15 13:45"}}`))
	}))
	defer server.Close()

	p := NewWeatherAPIProvider(server.Client(), "test-key")
	p.SetBaseURL(server.URL)

	got, err := p.FetchCurrent(context.Background(), irrigation.Location{Latitude: 30.47, Longitude: -8.87})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.TemperatureC != 28.4 || got.PrecipMm != 0.2 || got.LastUpdated != "2026-06-15 13:45" {
		t.Fatalf("unexpected conditions: %+v", got)
	}
	if n := requests.Load(); n != 1 {
		t.Fatalf("server saw %d requests, want 1", n)
	}
}

func TestWeatherAPINoRetryOnServerError(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewWeatherAPIProvider(server.Client(), "test-key")
	p.SetBaseURL(server.URL)

	_, err := p.FetchCurrent(context.Background(), irrigation.Location{})
	if err == nil {
		t.Fatal("expected error on 500")
	}
	// The current-conditions client has no retry budget; a failure here
	// aborts the cycle's Reading outright.
	if n := requests.Load(); n != 1 {
		t.Fatalf("server saw %d requests, want exactly 1", n)
	}
}

func TestWeatherAPIRequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")
	if _, err := p.FetchCurrent(context.Background(), irrigation.Location{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
