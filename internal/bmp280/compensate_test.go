package bmp280

import (
	"math"
	"testing"
)

// Trimming set and raw counts from the datasheet's worked example.
var refCal = Calibration{
	T1: 27504, T2: 26435, T3: -1000,
	P1: 36477, P2: -10685, P3: 3024,
	P4: 2855, P5: 140, P6: -7,
	P7: 15500, P8: -14600, P9: 6000,
}

const (
	refUT = 519888
	refUP = 415148
)

func TestCompensateTemperatureReferenceVector(t *testing.T) {
	centi, tFine := CompensateTemperature(refUT, refCal)
	if centi != 2508 {
		t.Errorf("centi = %d, want 2508", centi)
	}
	if tFine != 128422 {
		t.Errorf("tFine = %d, want 128422", tFine)
	}
}

func TestCompensatePressureReferenceVector(t *testing.T) {
	_, tFine := CompensateTemperature(refUT, refCal)
	p, ok := CompensatePressure(refUP, refCal, tFine)
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if p != 25763824 {
		t.Errorf("p = %d, want 25763824", p)
	}
	hPa := float64(p) / 25600
	if math.Abs(hPa-1006.399) > 0.01 {
		t.Errorf("hPa = %v, want 1006.399 ±0.01", hPa)
	}
}

func TestCompensatePressureDegenerateCalibration(t *testing.T) {
	cal := refCal
	cal.P1 = 0

	_, tFine := CompensateTemperature(refUT, cal)
	p, ok := CompensatePressure(refUP, cal, tFine)
	if ok {
		t.Error("ok = true, want false for P1 = 0")
	}
	if p != 0 {
		t.Errorf("p = %d, want sentinel 0", p)
	}
}

func TestCompensatorReading(t *testing.T) {
	c := NewCompensator(refCal)
	r := c.Compensate(RawSample{UT: refUT, UP: refUP})

	if !r.Valid {
		t.Fatal("Valid = false, want true")
	}
	if math.Abs(r.Temperature-25.08) > 0.01 {
		t.Errorf("Temperature = %v, want 25.08 ±0.01", r.Temperature)
	}
	if math.Abs(r.PressureHPa-1006.399) > 0.01 {
		t.Errorf("PressureHPa = %v, want 1006.399 ±0.01", r.PressureHPa)
	}
	if math.Abs(r.Pressure-r.PressureHPa*100) > 0.001 {
		t.Errorf("Pressure = %v Pa inconsistent with %v hPa", r.Pressure, r.PressureHPa)
	}
	if r.TFine != 128422 {
		t.Errorf("TFine = %d, want 128422", r.TFine)
	}
}

func TestCompensatorDegenerateReadingNotValid(t *testing.T) {
	cal := refCal
	cal.P1 = 0
	c := NewCompensator(cal)

	r := c.Compensate(RawSample{UT: refUT, UP: refUP})
	if r.Valid {
		t.Error("Valid = true, want false")
	}
	if r.Pressure != 0 {
		t.Errorf("Pressure = %v, want 0", r.Pressure)
	}
	// Temperature is still usable even when pressure is not.
	if math.Abs(r.Temperature-25.08) > 0.01 {
		t.Errorf("Temperature = %v, want 25.08 ±0.01", r.Temperature)
	}
}

func TestParseCalibration(t *testing.T) {
	buf := make([]byte, CalibrationSize)
	words := []uint16{
		refCal.T1, uint16(refCal.T2), uint16(refCal.T3),
		refCal.P1, uint16(refCal.P2), uint16(refCal.P3),
		uint16(refCal.P4), uint16(refCal.P5), uint16(refCal.P6),
		uint16(refCal.P7), uint16(refCal.P8), uint16(refCal.P9),
	}
	for i, w := range words {
		buf[2*i] = byte(w)
		buf[2*i+1] = byte(w >> 8)
	}

	cal, err := ParseCalibration(buf)
	if err != nil {
		t.Fatalf("ParseCalibration: %v", err)
	}
	if cal != refCal {
		t.Errorf("cal = %+v, want %+v", cal, refCal)
	}
	if !cal.Programmed() {
		t.Error("Programmed() = false, want true")
	}

	if _, err := ParseCalibration(buf[:10]); err == nil {
		t.Error("short buffer: err = nil, want error")
	}

	if (Calibration{}).Programmed() {
		t.Error("zero calibration reported as programmed")
	}
}

func TestConfigEncodeDecode(t *testing.T) {
	cfg := Config{
		TempOversampling:     Oversample16x,
		PressureOversampling: Oversample16x,
		Mode:                 ModeNormal,
		Standby:              Standby0ms5,
		Filter:               Filter16,
		SPI3Wire:             false,
	}
	ctrlMeas, config := cfg.Encode()
	if ctrlMeas != 0xB7 {
		t.Errorf("ctrl_meas = %#x, want 0xb7", ctrlMeas)
	}
	if config != 0x10 {
		t.Errorf("config = %#x, want 0x10", config)
	}
	if got := DecodeConfig(ctrlMeas, config); got != cfg {
		t.Errorf("DecodeConfig = %+v, want %+v", got, cfg)
	}
}

func TestDecodeStatus(t *testing.T) {
	s := DecodeStatus(0x09)
	if !s.Measuring || !s.IMUpdate {
		t.Errorf("DecodeStatus(0x09) = %+v, want both set", s)
	}
	s = DecodeStatus(0x00)
	if s.Measuring || s.IMUpdate {
		t.Errorf("DecodeStatus(0x00) = %+v, want both clear", s)
	}
}
