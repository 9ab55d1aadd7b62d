// Package calibrate converts raw analog sensor values to physical units.
// The main cycle sources moisture from the forecast API; these transforms
// serve the local-sensor path.
package calibrate

import (
	"errors"
	"math"
)

// ADCMax is the full-scale reading of the 12-bit analog inputs.
const ADCMax = 4095

// Probe holds a capacitive soil probe's dry and wet calibration points.
type Probe struct {
	dry, wet float64
}

// NewProbe validates the calibration points. Equal points would divide by
// zero in the moisture transform, so they are rejected here at startup
// rather than at read time.
func NewProbe(dry, wet float64) (Probe, error) {
	if dry == wet {
		return Probe{}, errors.New("dry and wet calibration points must differ")
	}
	return Probe{dry: dry, wet: wet}, nil
}

// Moisture maps a raw probe value to a moisture percentage.
func (p Probe) Moisture(raw float64) float64 {
	return SoilMoisturePercent(raw, p.dry, p.wet)
}

// SoilMoisturePercent maps a raw capacitive probe value to a moisture
// percentage using the probe's dry and wet calibration points.
func SoilMoisturePercent(raw, dry, wet float64) float64 {
	return round2((dry - raw) * 100 / (dry - wet))
}

// RainPercent maps a raw rain-sensor value to a wetness percentage.
func RainPercent(raw float64) float64 {
	return round2((ADCMax - raw) * 100 / ADCMax)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
