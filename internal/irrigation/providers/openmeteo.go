package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// hourlyVariables is the fixed set of hourly variables requested from
// Open-Meteo, in request order.
var hourlyVariables = []string{
	"et0_fao_evapotranspiration",
	"soil_temperature_6cm",
	"soil_moisture_27_to_81cm",
	"relative_humidity_2m",
	"soil_moisture_0_to_1cm",
}

// openMeteoHourly mirrors the hourly block of the Open-Meteo response.
type openMeteoHourly struct {
	ET0                 []float64 `json:"et0_fao_evapotranspiration"`
	SoilTemperature6cm  []float64 `json:"soil_temperature_6cm"`
	SoilMoisture27to81  []float64 `json:"soil_moisture_27_to_81cm"`
	RelativeHumidity2m  []float64 `json:"relative_humidity_2m"`
	SoilMoisture0to1    []float64 `json:"soil_moisture_0_to_1cm"`
}

// OpenMeteoProvider implements irrigation.ForecastProvider against the
// Open-Meteo forecast endpoint, with a TTL response cache and bounded
// retry with exponential backoff on transient failures.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	cache   *responseCache[openMeteoHourly]
	now     func() time.Time
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				// Up to 5 attempts total against transient failures.
				MaxRetries:      4,
				InitialInterval: 200 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		cache:   newResponseCache[openMeteoHourly](1 * time.Hour),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// SetBaseURL overrides the endpoint. Used by tests.
func (p *OpenMeteoProvider) SetBaseURL(u string) {
	p.baseURL = u
}

func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, loc irrigation.Location, hour int) (irrigation.HourlyForecast, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", loc.Longitude))
	values.Set("hourly", strings.Join(hourlyVariables, ","))
	values.Set("timezone", "auto")
	values.Set("forecast_days", "1")

	cacheKey := values.Encode()

	hourly, ok := p.cache.get(cacheKey, p.now())
	if !ok {
		fetched, err := p.fetch(ctx, cacheKey)
		if err != nil {
			return irrigation.HourlyForecast{}, err
		}
		p.cache.put(cacheKey, fetched, p.now())
		hourly = fetched
	}

	return hourly.at(hour)
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, query string) (openMeteoHourly, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", p.baseURL, query)
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return openMeteoHourly{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly openMeteoHourly `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return openMeteoHourly{}, err
	}

	return payload.Hourly, nil
}

// at indexes every variable series at the given hour, bounds-checked.
func (h openMeteoHourly) at(hour int) (irrigation.HourlyForecast, error) {
	series := []struct {
		name   string
		values []float64
	}{
		{"et0_fao_evapotranspiration", h.ET0},
		{"soil_temperature_6cm", h.SoilTemperature6cm},
		{"soil_moisture_27_to_81cm", h.SoilMoisture27to81},
		{"relative_humidity_2m", h.RelativeHumidity2m},
		{"soil_moisture_0_to_1cm", h.SoilMoisture0to1},
	}

	for _, s := range series {
		if hour < 0 || len(s.values) <= hour {
			return irrigation.HourlyForecast{}, fmt.Errorf("%w: %s has %d values, need index %d",
				irrigation.ErrHourOutOfRange, s.name, len(s.values), hour)
		}
	}

	return irrigation.HourlyForecast{
		ET0:                 h.ET0[hour],
		SoilTemperature:     h.SoilTemperature6cm[hour],
		SoilMoistureDepth:   h.SoilMoisture27to81[hour],
		SoilMoistureSurface: h.SoilMoisture0to1[hour],
		RelativeHumidity:    h.RelativeHumidity2m[hour],
	}, nil
}
