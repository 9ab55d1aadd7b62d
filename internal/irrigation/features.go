package irrigation

import (
	"math"
)

// FeatureSchema pins the column order the classifier was trained on. The
// loaded artifact declares its own ordered feature names; startup refuses to
// run unless the two lists match name-by-name, so training/inference drift
// fails fast instead of producing silently wrong predictions.
var FeatureSchema = []string{
	"soil_moisture_depth_pct",
	"soil_temperature",
	"air_humidity",
	"air_temperature",
	"precipitation",
	"et0",
}

// FeatureVector is the ordered numeric input handed to the classifier.
type FeatureVector []float64

// BuildFeatures derives the classifier input from a Reading. Every required
// field must be finite; a NaN or Inf anywhere invalidates the cycle before
// inference runs.
func BuildFeatures(r Reading) (FeatureVector, *CycleError) {
	fields := []struct {
		name  string
		value float64
	}{
		{"soil_moisture_surface", r.SoilMoistureSurface},
		{"soil_moisture_depth", r.SoilMoistureDepth},
		{"soil_temperature", r.SoilTemperature},
		{"air_humidity", r.AirHumidity},
		{"air_temperature", r.AirTemperature},
		{"precipitation", r.Precipitation},
		{"et0", r.ET0},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return nil, dataQualityErr(StageFeatures, "field %s is not finite", f.name)
		}
	}

	// The moisture fraction is scaled to a percentage; the remaining
	// columns enter in their native units. Order is FeatureSchema.
	return FeatureVector{
		r.SoilMoistureDepth * 100,
		r.SoilTemperature,
		r.AirHumidity,
		r.AirTemperature,
		r.Precipitation,
		r.ET0,
	}, nil
}
