// Package station sequences the sampling pipeline. Each cycle runs strictly
// in dependency order: temperature compensation feeds pressure compensation
// through tFine, both feed the altitude model together with humidity, and
// altitude feeds the solar refraction correction. Every fault path retains
// the previous value; the loop never stops on a transient bus error.
package station

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/baltix/meteostation/internal/altitude"
	"github.com/baltix/meteostation/internal/bmp280"
	"github.com/baltix/meteostation/internal/ephemeris"
	"github.com/baltix/meteostation/internal/metrics"
	"github.com/baltix/meteostation/internal/sensors"
	"github.com/baltix/meteostation/internal/sht21"
	"github.com/baltix/meteostation/internal/solar"
	"github.com/baltix/meteostation/internal/wind"
)

// DefaultInterval between sampling cycles.
const DefaultInterval = 5 * time.Second

// Sampler owns the pipeline state. All mutation happens on the sampling
// goroutine; the published snapshot is guarded for concurrent readers.
type Sampler struct {
	env  sensors.EnvironmentBus
	hum  sensors.HumidityBus
	adc  sensors.ADCReader
	feed *ephemeris.Feed

	comp *bmp280.Compensator
	sht  sht21.Reader
	alt  altitude.Estimator
	sun  solar.Corrector
	wind wind.Estimator

	interval time.Duration

	// OnSnapshot, when set, is called after every cycle with the published
	// snapshot (store insert, MQTT publish).
	OnSnapshot func(Snapshot)

	mu       sync.RWMutex
	snapshot Snapshot
}

func New(env sensors.EnvironmentBus, hum sensors.HumidityBus, adc sensors.ADCReader, feed *ephemeris.Feed) *Sampler {
	return &Sampler{
		env:      env,
		hum:      hum,
		adc:      adc,
		feed:     feed,
		interval: DefaultInterval,
	}
}

// SetInterval overrides the cycle interval; must be called before Run.
func (s *Sampler) SetInterval(d time.Duration) {
	s.interval = d
}

// Init verifies the sensor is present, loads its calibration and configures
// both sensors. Called once before the first cycle.
func (s *Sampler) Init() error {
	id, err := s.env.ReadID()
	if err != nil {
		return fmt.Errorf("probe pressure sensor: %w", err)
	}
	if id != bmp280.ChipID {
		return fmt.Errorf("unexpected chip id %#02x, want %#02x", id, bmp280.ChipID)
	}

	cal, err := s.env.ReadCalibration()
	if err != nil {
		return fmt.Errorf("read calibration: %w", err)
	}
	if !cal.Programmed() {
		return fmt.Errorf("calibration block not programmed")
	}
	s.comp = bmp280.NewCompensator(cal)

	cfg := bmp280.Config{
		TempOversampling:     bmp280.Oversample16x,
		PressureOversampling: bmp280.Oversample16x,
		Mode:                 bmp280.ModeNormal,
		Standby:              bmp280.Standby0ms5,
		Filter:               bmp280.Filter16,
	}
	if err := s.env.WriteConfig(cfg); err != nil {
		return fmt.Errorf("configure pressure sensor: %w", err)
	}

	settings := sht21.Settings{
		Resolution: sht21.ResolutionRH12T14,
		OTPDisable: true,
	}
	if err := s.hum.WriteSettings(settings.Encode()); err != nil {
		return fmt.Errorf("configure humidity sensor: %w", err)
	}
	return nil
}

// Snapshot returns the latest published snapshot.
func (s *Sampler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Cycle runs one full pipeline pass and publishes the resulting snapshot.
func (s *Sampler) Cycle() Snapshot {
	start := time.Now()
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	snap.Time = start
	snap.CycleFaults = 0

	s.samplePressureTemperature(&snap)
	s.sampleHumidity(&snap)
	s.updateAltitude(&snap)
	s.updateSolar(&snap)
	s.sampleWind(&snap)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	metrics.SetCurrent(snap.Temperature, snap.PressureHPa, snap.Humidity,
		snap.Altitude.Average, float64(snap.Wind.Speed))

	if s.OnSnapshot != nil {
		s.OnSnapshot(snap)
	}
	return snap
}

func (s *Sampler) samplePressureTemperature(snap *Snapshot) {
	raw, err := s.env.ReadRawSample()
	if err != nil {
		snap.CycleFaults++
		metrics.SensorFaults.WithLabelValues("bmp280", "bus").Inc()
		log.Printf("sampler: pressure/temperature unavailable: %v", err)
		return
	}

	r := s.comp.Compensate(raw)
	snap.Temperature = r.Temperature
	if !r.Valid {
		// Degenerate calibration: pressure reads as the raw 0 sentinel.
		// Keep the previous published pressure and flag not-ready.
		snap.PressureValid = false
		snap.CycleFaults++
		metrics.SensorFaults.WithLabelValues("bmp280", "degenerate_calibration").Inc()
		return
	}
	snap.Pressure = r.Pressure
	snap.PressureHPa = r.PressureHPa
	snap.PressureValid = true
}

func (s *Sampler) sampleHumidity(snap *Snapshot) {
	for _, cmd := range [2]byte{sht21.CmdHoldMasterRH, sht21.CmdHoldMasterT} {
		word, err := s.hum.ReadWord(cmd)
		if err != nil {
			snap.CycleFaults++
			metrics.SensorFaults.WithLabelValues("sht21", "bus").Inc()
			log.Printf("sampler: humidity unavailable: %v", err)
			continue
		}
		if err := s.sht.Separate(word); err != nil {
			snap.CycleFaults++
			metrics.SensorFaults.WithLabelValues("sht21", "crc").Inc()
			log.Printf("sampler: humidity word rejected: %v", err)
		}
	}
	snap.Humidity = s.sht.RH
	snap.HumidityTemp = s.sht.T
	snap.HumidityFault = s.sht.Fault
}

func (s *Sampler) updateAltitude(snap *Snapshot) {
	if !snap.PressureValid {
		return
	}
	tr, err := s.alt.Update(snap.PressureHPa, snap.HumidityTemp, snap.Humidity)
	if err != nil {
		snap.CycleFaults++
		metrics.SensorFaults.WithLabelValues("altitude", "invalid_input").Inc()
		log.Printf("sampler: altitude input invalid: %v", err)
	}
	snap.Altitude = tr
}

func (s *Sampler) updateSolar(snap *Snapshot) {
	fix, ok := s.feed.Latest()
	if ok {
		snap.Latitude = fix.Latitude
		snap.Longitude = fix.Longitude
		snap.FixTime = fix.Timestamp()
	}
	snap.EphemerisOK = ok && !s.feed.Degraded()

	if ok && fix.HasSunAngles {
		snap.Sun = s.sun.Update(fix.SunElevation, fix.SunAzimuth,
			snap.PressureHPa, snap.HumidityTemp, snap.Altitude.Average)
	}

	if raw, err := s.adc.Read(sensors.ChannelSunLevel); err != nil {
		snap.CycleFaults++
		metrics.SensorFaults.WithLabelValues("adc", "sun_level").Inc()
	} else {
		s.sun.SetSunLevel(raw)
		snap.Sun = s.sun.Current()
	}
}

func (s *Sampler) sampleWind(snap *Snapshot) {
	if raw, err := s.adc.Read(sensors.ChannelWindSpeed); err != nil {
		snap.CycleFaults++
		metrics.SensorFaults.WithLabelValues("adc", "wind_speed").Inc()
	} else {
		s.wind.UpdateSpeed(raw)
	}

	if raw, err := s.adc.Read(sensors.ChannelWindDirection); err != nil {
		snap.CycleFaults++
		metrics.SensorFaults.WithLabelValues("adc", "wind_direction").Inc()
	} else {
		s.wind.UpdateDirection(raw)
	}

	snap.Wind = s.wind.Current()
	snap.WindName = snap.Wind.DirectionName()
}

// Run samples on a ticker until the context is cancelled. An immediate
// first cycle avoids waiting a full interval for data after boot.
func (s *Sampler) Run(ctx context.Context) {
	s.Cycle()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sampler: shutting down")
			return
		case <-ticker.C:
			s.Cycle()
		}
	}
}
