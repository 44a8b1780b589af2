package station

import (
	"time"

	"github.com/baltix/meteostation/internal/altitude"
	"github.com/baltix/meteostation/internal/solar"
	"github.com/baltix/meteostation/internal/wind"
)

// Snapshot is the read-only view of the station published after every
// sampling cycle. Consumers (HTTP, MQTT, display, store) get a copy and can
// never disturb the pipeline state.
type Snapshot struct {
	Time time.Time `json:"time"`

	// Pressure/temperature sensor.
	Temperature float64 `json:"temp_c"`
	Pressure    float64 `json:"pressure_pa"`
	PressureHPa float64 `json:"pressure_hpa"`
	// PressureValid is false until the first successful compensation with a
	// programmed calibration; a zero pressure is "not ready", not a reading.
	PressureValid bool `json:"pressure_valid"`

	// Humidity sensor.
	Humidity     float64 `json:"rh_pct"`
	HumidityTemp float64 `json:"rh_temp_c"`
	// HumidityFault is true while the last transmission failed its CRC.
	HumidityFault bool `json:"rh_fault"`

	Altitude altitude.Triple `json:"altitude"`
	Sun      solar.Angles    `json:"sun"`
	Wind     wind.State      `json:"wind"`
	WindName string          `json:"wind_name"`

	// Location and clock from the ephemeris feed.
	Latitude     float64   `json:"lat"`
	Longitude    float64   `json:"lon"`
	FixTime      time.Time `json:"fix_time"`
	EphemerisOK  bool      `json:"ephemeris_ok"`
	CycleFaults  int       `json:"cycle_faults"`
}
