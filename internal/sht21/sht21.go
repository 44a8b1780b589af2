// Package sht21 decodes measurement transmissions from an SHT21-class
// humidity/temperature sensor. A transmission is 24 bits on the wire: a
// 16-bit measurement whose low two bits are status flags, followed by a
// CRC-8 over the two data bytes. Status bit 1 distinguishes humidity from
// temperature; one sensor command yields one or the other, so the reader
// keeps both channels and updates whichever the word carries.
package sht21

import "errors"

// Measurement commands.
const (
	CmdHoldMasterT    = 0xE3
	CmdHoldMasterRH   = 0xE5
	CmdNoHoldMasterT  = 0xF3
	CmdNoHoldMasterRH = 0xF5
	CmdWriteUserReg   = 0xE6
	CmdReadUserReg    = 0xE7
	CmdSoftReset      = 0xFE
)

const (
	statusMask     = 0x0003
	statusHumidity = 0x0002
)

// ErrChecksum reports a CRC mismatch on a measurement transmission.
var ErrChecksum = errors.New("sht21: checksum mismatch")

// ConvertHumidity converts a measurement word (status bits already cleared)
// to relative humidity in percent. The sensor can report slightly outside
// 0..100; callers clamp for display, not here.
func ConvertHumidity(raw uint16) float64 {
	return float64(raw)/65536*125 - 6
}

// ConvertTemperature converts a measurement word to degrees Celsius.
func ConvertTemperature(raw uint16) float64 {
	return float64(raw)/65536*175.72 - 46.85
}

// Reader accumulates the latest humidity and temperature values. Fault is
// set while the most recent transmission failed its CRC; a faulted word
// never updates RH or T.
type Reader struct {
	RH    float64
	T     float64
	Fault bool
}

// Separate validates and commits one 24-bit transmission. On CRC mismatch
// it sets Fault, leaves RH and T untouched and returns ErrChecksum.
func (r *Reader) Separate(word uint32) error {
	msb := byte(word >> 16)
	lsb := byte(word >> 8)
	if Checksum(msb, lsb) != byte(word) {
		r.Fault = true
		return ErrChecksum
	}
	r.Fault = false

	raw := uint16(msb)<<8 | uint16(lsb)
	value := raw &^ statusMask
	if raw&statusHumidity != 0 {
		r.RH = ConvertHumidity(value)
	} else {
		r.T = ConvertTemperature(value)
	}
	return nil
}
