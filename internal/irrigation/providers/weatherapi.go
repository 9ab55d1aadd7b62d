package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// WeatherAPIProvider implements irrigation.CurrentProvider against
// WeatherAPI.com's current.json endpoint. A failed call aborts the cycle's
// Reading; there is no retry budget here, only the circuit breaker.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      0,
				InitialInterval: 500 * time.Millisecond,
			},
		},
		circuit: cb,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// SetBaseURL overrides the endpoint. Used by tests.
func (p *WeatherAPIProvider) SetBaseURL(u string) {
	p.baseURL = u
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, loc irrigation.Location) (irrigation.CurrentConditions, error) {
	if p.apiKey == "" {
		return irrigation.CurrentConditions{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", fmt.Sprintf("%f,%f", loc.Latitude, loc.Longitude))
		values.Set("aqi", "no")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return irrigation.CurrentConditions{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			TempC       float64 `json:"temp_c"`
			PrecipMm    float64 `json:"precip_mm"`
			LastUpdated string  `json:"last_updated"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return irrigation.CurrentConditions{}, err
	}

	return irrigation.CurrentConditions{
		TemperatureC: payload.Current.TempC,
		PrecipMm:     payload.Current.PrecipMm,
		LastUpdated:  payload.Current.LastUpdated,
	}, nil
}
