package bmp280

import "fmt"

// Register map (datasheet section 4.2).
const (
	RegCalibStart = 0x88
	RegChipID     = 0xD0
	RegReset      = 0xE0
	RegStatus     = 0xF3
	RegCtrlMeas   = 0xF4
	RegConfig     = 0xF5
	RegPressMSB   = 0xF7
	RegTempMSB    = 0xFA
)

const (
	// ChipID is the expected value of RegChipID for a BMP280.
	ChipID = 0x58
	// ResetValue written to RegReset triggers a power-on reset.
	ResetValue = 0xB6
)

// CalibrationSize is the length of the factory trimming block at RegCalibStart.
const CalibrationSize = 24

// Calibration holds the per-device trimming coefficients burned into the
// sensor EEPROM. Read once at boot; immutable afterwards.
type Calibration struct {
	T1 uint16
	T2 int16
	T3 int16
	P1 uint16
	P2 int16
	P3 int16
	P4 int16
	P5 int16
	P6 int16
	P7 int16
	P8 int16
	P9 int16
}

// ParseCalibration decodes the 24-byte trimming block. Each coefficient is a
// 16-bit word stored little-endian on the wire (LSB at the lower register
// address), per the datasheet.
func ParseCalibration(buf []byte) (Calibration, error) {
	if len(buf) != CalibrationSize {
		return Calibration{}, fmt.Errorf("calibration block is %d bytes, want %d", len(buf), CalibrationSize)
	}
	u16 := func(i int) uint16 { return uint16(buf[i]) | uint16(buf[i+1])<<8 }
	s16 := func(i int) int16 { return int16(u16(i)) }

	return Calibration{
		T1: u16(0),
		T2: s16(2),
		T3: s16(4),
		P1: u16(6),
		P2: s16(8),
		P3: s16(10),
		P4: s16(12),
		P5: s16(14),
		P6: s16(16),
		P7: s16(18),
		P8: s16(20),
		P9: s16(22),
	}, nil
}

// Programmed reports whether the block looks like it came from a trimmed
// device. An erased EEPROM reads all zeroes, which would make the pressure
// polynomial degenerate.
func (c Calibration) Programmed() bool {
	return c.T1 != 0 && c.P1 != 0
}
