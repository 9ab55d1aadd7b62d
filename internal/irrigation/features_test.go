package irrigation

import (
	"errors"
	"math"
	"testing"
	"time"
)

func validReading() Reading {
	return Reading{
		GeneratedAt:         time.Date(2026, 6, 15, 14, 0, 0, 0, time.UTC),
		SoilMoistureSurface: 0.12,
		SoilMoistureDepth:   0.30,
		SoilTemperature:     22.0,
		AirTemperature:      28.0,
		AirHumidity:         45.0,
		Precipitation:       0.0,
		ET0:                 3.5,
		WeatherLastUpdate:   "2026-06-15 13:45",
	}
}

func TestBuildFeaturesOrder(t *testing.T) {
	features, cerr := BuildFeatures(validReading())
	if cerr != nil {
		t.Fatalf("unexpected error: %v", cerr)
	}

	want := FeatureVector{30.0, 22.0, 45.0, 28.0, 0.0, 3.5}
	if len(features) != len(want) {
		t.Fatalf("got %d features, want %d", len(features), len(want))
	}
	if len(features) != len(FeatureSchema) {
		t.Fatalf("vector length %d does not match schema length %d", len(features), len(FeatureSchema))
	}
	for i := range want {
		if features[i] != want[i] {
			t.Errorf("feature %d (%s) = %v, want %v", i, FeatureSchema[i], features[i], want[i])
		}
	}
}

func TestBuildFeaturesRejectsNonFinite(t *testing.T) {
	mutations := map[string]func(*Reading){
		"soil_moisture_surface": func(r *Reading) { r.SoilMoistureSurface = math.NaN() },
		"soil_moisture_depth":   func(r *Reading) { r.SoilMoistureDepth = math.NaN() },
		"soil_temperature":      func(r *Reading) { r.SoilTemperature = math.Inf(1) },
		"air_temperature":       func(r *Reading) { r.AirTemperature = math.Inf(-1) },
		"air_humidity":          func(r *Reading) { r.AirHumidity = math.NaN() },
		"precipitation":         func(r *Reading) { r.Precipitation = math.NaN() },
		"et0":                   func(r *Reading) { r.ET0 = math.NaN() },
	}

	for field, mutate := range mutations {
		t.Run(field, func(t *testing.T) {
			r := validReading()
			mutate(&r)

			features, cerr := BuildFeatures(r)
			if features != nil {
				t.Fatalf("expected no vector, got %v", features)
			}
			if cerr == nil {
				t.Fatal("expected a data quality error")
			}
			if cerr.Stage != StageFeatures {
				t.Errorf("stage = %s, want %s", cerr.Stage, StageFeatures)
			}
			if !errors.Is(cerr, ErrDataQuality) {
				t.Errorf("error %v is not tagged as data quality", cerr)
			}
		})
	}
}

func TestCommandForClass(t *testing.T) {
	at := time.Now()

	cmd, ok := CommandForClass(ClassOn, at)
	if !ok || cmd.State != RelayOn {
		t.Fatalf("ClassOn: got (%v, %v), want relay ON", cmd, ok)
	}

	cmd, ok = CommandForClass(ClassOff, at)
	if !ok || cmd.State != RelayOff {
		t.Fatalf("ClassOff: got (%v, %v), want relay OFF", cmd, ok)
	}

	for _, class := range []DecisionClass{ClassNoAdjustment, ClassAlert} {
		if _, ok := CommandForClass(class, at); ok {
			t.Errorf("%s should not produce a command", class)
		}
	}
}
