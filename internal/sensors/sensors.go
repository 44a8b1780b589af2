// Package sensors is the hardware boundary. The numeric pipeline consumes
// these narrow interfaces and never touches a bus directly; real
// implementations sit on periph.io I2C, and fakes back the tests and the
// development mode.
package sensors

import (
	"errors"

	"github.com/baltix/meteostation/internal/bmp280"
)

// Bus fault taxonomy. A fault means "reading unavailable this cycle"; the
// pipeline retains the previous value and keeps running.
var (
	ErrBusTimeout = errors.New("sensors: bus timeout")
	ErrBusNack    = errors.New("sensors: bus nack")
	ErrBusError   = errors.New("sensors: bus error")
	ErrNotReady   = errors.New("sensors: sensor not ready")
)

// EnvironmentBus exposes the raw register surface of the pressure/temperature
// sensor. ReadCalibration is called once at boot; ReadRawSample every cycle.
type EnvironmentBus interface {
	ReadID() (byte, error)
	ReadCalibration() (bmp280.Calibration, error)
	WriteConfig(cfg bmp280.Config) error
	ReadStatus() (bmp280.Status, error)
	ReadRawSample() (bmp280.RawSample, error)
}

// HumidityBus reads one 24-bit measurement transmission (16 data bits plus
// CRC) for the given measurement command.
type HumidityBus interface {
	ReadWord(cmd byte) (uint32, error)
	WriteSettings(reg byte) error
}

// ADC channels for the analog sensors.
const (
	ChannelWindSpeed = iota
	ChannelWindDirection
	ChannelSunLevel
)

// ADCReader reads one 12-bit conversion (0..4095) from a channel.
type ADCReader interface {
	Read(channel int) (uint16, error)
}
