package irrigation

import (
	"context"
	"errors"
)

// ErrHourOutOfRange reports an hourly forecast series shorter than the
// requested hour index: a data-contract violation on the provider's side,
// distinct from the provider being unreachable.
var ErrHourOutOfRange = errors.New("hourly series shorter than requested hour")

// CurrentConditions is the current-weather slice of a Reading, fetched from
// the current-conditions provider.
type CurrentConditions struct {
	TemperatureC float64
	PrecipMm     float64
	LastUpdated  string
}

// HourlyForecast is the forecast slice of a Reading: the hourly variables
// for the wall-clock hour the cycle runs in.
type HourlyForecast struct {
	ET0                 float64
	SoilTemperature     float64
	SoilMoistureDepth   float64
	SoilMoistureSurface float64
	RelativeHumidity    float64
}

// CurrentProvider fetches current conditions for a location. A failed fetch
// aborts the Reading for the cycle; there is no retry at this level.
type CurrentProvider interface {
	Name() string
	FetchCurrent(ctx context.Context, loc Location) (CurrentConditions, error)
}

// ForecastProvider fetches the hourly forecast variables for a location at a
// given UTC hour of the current day. Implementations retry transient
// failures internally within a bounded attempt budget.
type ForecastProvider interface {
	Name() string
	FetchHourly(ctx context.Context, loc Location, hour int) (HourlyForecast, error)
}
