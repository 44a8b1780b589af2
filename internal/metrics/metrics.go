package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meteostation_cycles_total",
			Help: "Total sampling cycles run",
		},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meteostation_cycle_duration_seconds",
			Help:    "Sampling cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SensorFaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteostation_sensor_faults_total",
			Help: "Faults by sensor and kind; the previous value is retained on fault",
		},
		[]string{"sensor", "kind"},
	)

	SnapshotsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meteostation_snapshots_stored_total",
			Help: "Snapshots persisted to the local database",
		},
	)

	SnapshotsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteostation_snapshots_published_total",
			Help: "Snapshots published to MQTT",
		},
		[]string{"status"},
	)

	temperature = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meteostation_temperature_celsius",
		Help: "Current compensated temperature",
	})
	pressure = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meteostation_pressure_hpa",
		Help: "Current compensated pressure",
	})
	humidity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meteostation_relative_humidity_pct",
		Help: "Current relative humidity",
	})
	altitudeAvg = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meteostation_altitude_meters",
		Help: "Current average altitude estimate",
	})
	windSpeed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meteostation_wind_speed_mps",
		Help: "Current wind speed",
	})
)

// SetCurrent updates the instantaneous gauges after a cycle.
func SetCurrent(tempC, pressureHPa, rhPct, altitudeM, windMPS float64) {
	temperature.Set(tempC)
	pressure.Set(pressureHPa)
	humidity.Set(rhPct)
	altitudeAvg.Set(altitudeM)
	windSpeed.Set(windMPS)
}
