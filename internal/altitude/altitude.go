// Package altitude derives barometric altitude from pressure, temperature
// and relative humidity. Two models run side by side: the plain
// international barometric formula, and a humidity-compensated variant that
// removes the vapor pressure contribution before applying the hypsometric
// equation. The published value is their average.
package altitude

import (
	"errors"
	"math"
)

// Physical constants. Pressures are in hPa, temperatures in °C.
const (
	SeaLevelPressure = 1013.25  // hPa, ISA reference
	zeroCelsius      = 273.15   // K
	gravity          = 9.80665  // m/s²
	molarMassAir     = 0.0289644 // kg/mol
	gasConstant      = 8.31432  // J/(mol·K)
)

// Magnus formula constants for saturation vapor pressure over water.
const (
	magnusA = 6.112
	magnusB = 17.67
	magnusC = 243.5
)

// ErrInvalidInput reports inputs with no physical interpretation (pressure
// at or below zero once vapor pressure is removed).
var ErrInvalidInput = errors.New("altitude: physically invalid input")

// Triple is one cycle's altitude estimates in meters.
type Triple struct {
	Uncompensated float64
	Compensated   float64
	Average       float64
}

// Uncompensated applies the barometric formula. 44330.7692307 is T0/L and
// -0.1902632 folds R·L/(g·M) for the ISA lapse rate.
func Uncompensated(pressureHPa float64) float64 {
	return 44330.7692307 * (math.Pow(pressureHPa/SeaLevelPressure, -0.1902632) - 1)
}

// SaturationVaporPressure returns es in hPa for a temperature in °C.
func SaturationVaporPressure(tempC float64) float64 {
	return magnusA * math.Exp(magnusB*tempC/(tempC+magnusC))
}

// Compensated computes the hypsometric altitude after removing the vapor
// pressure derived from relative humidity.
func Compensated(pressureHPa, tempC, rhPct float64) (float64, error) {
	es := SaturationVaporPressure(tempC)
	e := es * rhPct / 100
	adjusted := pressureHPa - e
	if adjusted <= 0 {
		return 0, ErrInvalidInput
	}
	tempK := tempC + zeroCelsius
	return tempK / gravity * math.Log(SeaLevelPressure/adjusted) * (gasConstant / molarMassAir), nil
}

// Estimator recomputes the triple each cycle, retaining the previous result
// when the inputs are unusable.
type Estimator struct {
	current Triple
}

// Current returns the most recent triple.
func (e *Estimator) Current() Triple {
	return e.current
}

// Update recomputes the altitude estimates from this cycle's readings. On
// invalid input the previous triple is kept and the error reported; the
// caller continues with stale altitude rather than none.
func (e *Estimator) Update(pressureHPa, tempC, rhPct float64) (Triple, error) {
	if pressureHPa <= 0 {
		return e.current, ErrInvalidInput
	}
	comp, err := Compensated(pressureHPa, tempC, rhPct)
	if err != nil {
		return e.current, err
	}
	uncomp := Uncompensated(pressureHPa)
	e.current = Triple{
		Uncompensated: uncomp,
		Compensated:   comp,
		Average:       (uncomp + comp) / 2,
	}
	return e.current, nil
}
