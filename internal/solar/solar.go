// Package solar applies atmospheric refraction correction to externally
// supplied sun angles. Refraction bends light around the horizon, so the
// apparent elevation is slightly above the geometric one; the effect grows
// sharply as the sun approaches the horizon and depends on air pressure and
// temperature at the observer.
package solar

import "math"

// Angles carries the raw ephemeris angles and their corrected counterparts,
// all in degrees. While the sun is at or below the horizon the adjusted
// fields hold their last above-horizon values.
type Angles struct {
	Elevation    float64
	Azimuth      float64
	AdjElevation float64
	AdjAzimuth   float64
	SunLevel     int
}

// AboveHorizon reports whether the raw elevation is above the horizon, the
// only condition under which the corrected angles are recomputed.
func (a Angles) AboveHorizon() bool {
	return a.Elevation > 0
}

// Refraction returns the Saemundsson-type refraction correction in
// arc-minutes for a geometric elevation in degrees, scaled for the ambient
// pressure (hPa) and temperature (°C). Zero at or below the horizon.
func Refraction(elevationDeg, pressureHPa, tempC float64) float64 {
	if elevationDeg <= 0 {
		return 0
	}
	elevationRad := elevationDeg * math.Pi / 180
	r := 0.0167 / math.Tan(elevationRad+10.3/(elevationDeg+5.11))
	return r * (pressureHPa / 1010) * (283 / (273 + tempC))
}

// PressureAtAltitude reduces a station pressure by the standard lapse rate
// for an observer altitude in meters. Altitudes at or below zero leave the
// pressure unchanged.
func PressureAtAltitude(pressureHPa, altitudeM float64) float64 {
	if altitudeM <= 0 {
		return pressureHPa
	}
	return pressureHPa * math.Pow(1-0.0065*altitudeM/288.15, 5.255)
}

// Corrector holds the sticky adjusted angles across cycles.
type Corrector struct {
	current Angles
}

// Current returns the latest angles.
func (c *Corrector) Current() Angles {
	return c.current
}

// Update ingests this cycle's raw elevation and azimuth and recomputes the
// adjusted angles when the sun is above the horizon. Below the horizon the
// adjusted fields are left exactly as they were. The azimuth is never
// refraction-corrected; refraction only acts on elevation.
//
// The lapse-rate pressure reduction is applied to a local value only; the
// caller's pressure reading is not disturbed for the rest of the cycle.
func (c *Corrector) Update(elevationDeg, azimuthDeg, pressureHPa, tempC, altitudeM float64) Angles {
	c.current.Elevation = elevationDeg
	c.current.Azimuth = azimuthDeg
	if elevationDeg > 0 {
		p := PressureAtAltitude(pressureHPa, altitudeM)
		c.current.AdjElevation = elevationDeg + Refraction(elevationDeg, p, tempC)/60
		c.current.AdjAzimuth = azimuthDeg
	}
	return c.current
}

// SetSunLevel records the scaled ambient light level, raw/4 rounded to the
// nearest integer.
func (c *Corrector) SetSunLevel(raw uint16) {
	c.current.SunLevel = int(math.Round(float64(raw) / 4))
}
