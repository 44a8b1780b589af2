package sht21

// Measurement resolution pairs (RH bits / T bits). The selection is split
// across user register bits 7 and 0.
const (
	ResolutionRH12T14 = 0x00
	ResolutionRH8T12  = 0x01
	ResolutionRH10T13 = 0x80
	ResolutionRH11T11 = 0x81
)

const (
	userResolutionMask = 0x81
	userBatteryBit     = 1 << 6
	userHeaterBit      = 1 << 2
	userOTPDisableBit  = 1 << 1
)

// Settings mirrors the sensor user register as named fields.
type Settings struct {
	Resolution   byte // one of the Resolution* constants
	EndOfBattery bool // read-only on the device: VDD below 2.25 V
	Heater       bool
	OTPDisable   bool
}

// DecodeSettings unpacks a user register byte.
func DecodeSettings(b byte) Settings {
	return Settings{
		Resolution:   b & userResolutionMask,
		EndOfBattery: b&userBatteryBit != 0,
		Heater:       b&userHeaterBit != 0,
		OTPDisable:   b&userOTPDisableBit != 0,
	}
}

// Encode packs the settings back into a user register byte.
func (s Settings) Encode() byte {
	b := s.Resolution & userResolutionMask
	if s.EndOfBattery {
		b |= userBatteryBit
	}
	if s.Heater {
		b |= userHeaterBit
	}
	if s.OTPDisable {
		b |= userOTPDisableBit
	}
	return b
}
