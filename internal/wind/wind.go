// Package wind maps anemometer and vane ADC counts to wind speed and one of
// eight compass sectors. The vane is resistive, so borderline counts between
// sectors are ambiguous; the estimator keeps the previous sector unless the
// new count lands inside a sector's tolerance band.
package wind

// The vane ADC is 12-bit. Eight sectors span the range; the two boundary
// sectors are claimed with a half step, interior sectors with a quarter-step
// tolerance around their centers.
const (
	adcRange     = 4095
	sectorStep   = adcRange / 7   // 585
	halfStep     = sectorStep / 2 // 292
	dirTolerance = sectorStep / 4 // 146
)

// speedScale converts a 12-bit anemometer count to m/s: full scale is 30 m/s.
const speedScale = 30.0 / 4096

// Sector short names, index 0..7.
var sectorNames = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// State is the current wind estimate.
type State struct {
	Speed     int // m/s, truncated
	Direction int // sector 0..7
}

// DirectionName returns the compass short name for the current sector.
func (s State) DirectionName() string {
	return sectorNames[s.Direction&7]
}

// Speed converts an anemometer count to integer m/s, truncating toward zero.
func Speed(raw uint16) int {
	return int(float64(raw) * speedScale)
}

// Estimator discretizes vane readings with hysteresis.
type Estimator struct {
	current State
}

// Current returns the latest estimate.
func (e *Estimator) Current() State {
	return e.current
}

// UpdateSpeed ingests an anemometer count.
func (e *Estimator) UpdateSpeed(raw uint16) State {
	e.current.Speed = Speed(raw)
	return e.current
}

// UpdateDirection ingests a vane count. Counts below a half step claim
// sector 0 and counts within a half step of full scale claim sector 7;
// interior counts update the sector only when within the tolerance band of
// a sector center. Anything else leaves the direction unchanged.
func (e *Estimator) UpdateDirection(raw uint16) State {
	switch {
	case raw < halfStep:
		e.current.Direction = 0
	case int(raw) > adcRange-halfStep:
		e.current.Direction = 7
	default:
		position := (int(raw) + halfStep) / sectorStep
		center := position * sectorStep
		if int(raw) >= center-dirTolerance && int(raw) <= center+dirTolerance {
			e.current.Direction = position
		}
	}
	return e.current
}
