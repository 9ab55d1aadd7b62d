package irrigation

import (
	"time"
)

// DecisionClass is the classifier's categorical output driving actuator policy.
type DecisionClass int

const (
	ClassOff          DecisionClass = 0
	ClassOn           DecisionClass = 1
	ClassNoAdjustment DecisionClass = 2
	ClassAlert        DecisionClass = 3
)

// String returns the label used in logs and API responses.
func (c DecisionClass) String() string {
	switch c {
	case ClassOff:
		return "OFF"
	case ClassOn:
		return "ON"
	case ClassNoAdjustment:
		return "NO_ADJUSTMENT"
	case ClassAlert:
		return "ALERT"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether c is one of the four trained classes.
func (c DecisionClass) Valid() bool {
	return c >= ClassOff && c <= ClassAlert
}

// RelayState is the desired actuator state carried by a Command.
type RelayState string

const (
	RelayOn  RelayState = "ON"
	RelayOff RelayState = "OFF"
)

// Location identifies the monitored field by coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reading is one cycle's fused observation, assembled from both providers.
// It is constructed fresh each cycle and never mutated.
type Reading struct {
	GeneratedAt         time.Time `json:"timestamp"`
	SoilMoistureSurface float64   `json:"soil_moisture_surface"` // fraction 0-1, 0-1cm band
	SoilMoistureDepth   float64   `json:"soil_moisture_depth"`   // fraction 0-1, 27-81cm band
	SoilTemperature     float64   `json:"soil_temp"`             // °C at 6cm
	AirTemperature      float64   `json:"api_temp"`              // °C
	AirHumidity         float64   `json:"env_moisture_api"`      // % relative humidity
	Precipitation       float64   `json:"api_precip_mm"`         // mm
	ET0                 float64   `json:"et0"`                   // reference evapotranspiration, mm
	WeatherLastUpdate   string    `json:"api_last_update"`       // provider-supplied timestamp string
}

// Decision is the classifier's verdict for one cycle. Immutable once recorded.
type Decision struct {
	ID         string        `json:"id"`
	Class      DecisionClass `json:"prediction"`
	Reading    Reading       `json:"reading"`
	ProducedAt time.Time     `json:"produced_at"`
}

// Command is the desired relay state derived from an OFF/ON decision.
// NO_ADJUSTMENT and ALERT decisions never produce a Command.
type Command struct {
	State    RelayState `json:"command"`
	IssuedAt time.Time  `json:"timestamp"`
}

// CommandForClass maps a decision class to a relay command. ok is false for
// classes that leave the actuator untouched.
func CommandForClass(c DecisionClass, at time.Time) (Command, bool) {
	switch c {
	case ClassOn:
		return Command{State: RelayOn, IssuedAt: at}, true
	case ClassOff:
		return Command{State: RelayOff, IssuedAt: at}, true
	default:
		return Command{}, false
	}
}
