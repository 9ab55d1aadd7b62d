package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/fieldsense/irrigation-control/internal/calibrate"
	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

var validate = validator.New()

// AppConfig holds everything the process needs at startup. Anything invalid
// here fails fast; nothing in this struct is re-validated per cycle.
type AppConfig struct {
	WeatherAPIKey string `validate:"required"`

	// Location of the monitored field.
	Location irrigation.Location

	// CycleInterval is the fixed tick between cycles.
	CycleInterval time.Duration `validate:"gt=0"`

	// CycleTimeout bounds one cycle's total duration. Must leave
	// headroom under the interval so a slow cycle delays, not stacks.
	CycleTimeout time.Duration `validate:"gt=0,ltfield=CycleInterval"`

	// ModelPath points to the versioned classifier artifact.
	ModelPath string `validate:"required"`

	// DBPath is the SQLite database file for the decision log and the
	// relay-command slot.
	DBPath string `validate:"required"`

	// MQTTBroker is the actuator broker address; empty disables the
	// MQTT dispatch path (the durable slot is still written).
	MQTTBroker   string
	MQTTClientID string

	// SoilProbe carries the validated calibration points for the
	// local-sensor path.
	SoilProbe calibrate.Probe

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	intervalStr := getenvDefault("CYCLE_INTERVAL", "60s")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CYCLE_INTERVAL: %w", err)
	}
	cfg.CycleInterval = interval

	timeoutStr := getenvDefault("CYCLE_TIMEOUT", "45s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CYCLE_TIMEOUT: %w", err)
	}
	cfg.CycleTimeout = timeout

	cfg.ModelPath = getenvDefault("MODEL_PATH", "models/irrigation_forest.json")
	cfg.DBPath = getenvDefault("DB_PATH", "irrigation.db")
	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTClientID = getenvDefault("MQTT_CLIENT_ID", "irrigation-control")
	cfg.Port = getenvDefault("PORT", "8080")

	probe, err := calibrate.NewProbe(
		getenvFloat("SOIL_DRY_VALUE", calibrate.ADCMax),
		getenvFloat("SOIL_WET_VALUE", 0),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid soil calibration: %w", err)
	}
	cfg.SoilProbe = probe

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadLocation resolves the field's coordinates. Explicit LOCATION_LAT/LON
// win; otherwise a configured city is geocoded once at startup.
func loadLocation() (irrigation.Location, error) {
	latStr := os.Getenv("LOCATION_LAT")
	lonStr := os.Getenv("LOCATION_LON")

	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return irrigation.Location{}, fmt.Errorf("invalid LOCATION_LAT: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return irrigation.Location{}, fmt.Errorf("invalid LOCATION_LON: %w", err)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return irrigation.Location{}, fmt.Errorf("coordinates out of range: %f,%f", lat, lon)
		}
		return irrigation.Location{Latitude: lat, Longitude: lon}, nil
	}

	city := os.Getenv("LOCATION_CITY")
	country := os.Getenv("LOCATION_COUNTRY")
	if city == "" {
		return irrigation.Location{}, fmt.Errorf("either LOCATION_LAT/LOCATION_LON or LOCATION_CITY must be set")
	}

	geocoder.ApiKey = os.Getenv("GEOCODER_API_KEY")
	if geocoder.ApiKey == "" {
		return irrigation.Location{}, fmt.Errorf("GEOCODER_API_KEY is required to resolve LOCATION_CITY")
	}

	resolved, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return irrigation.Location{}, fmt.Errorf("geocode %s,%s: %w", city, country, err)
	}

	return irrigation.Location{Latitude: resolved.Latitude, Longitude: resolved.Longitude}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
