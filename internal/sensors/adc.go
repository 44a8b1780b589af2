package sensors

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// ADS1115 registers.
const (
	adsRegConversion = 0x00
	adsRegConfig     = 0x01
)

// adsMux maps our logical channels to single-ended input selections
// (config bits 14:12): AIN0 = wind speed, AIN1 = wind direction,
// AIN2 = sun level.
var adsMux = [3]uint16{0x4000, 0x5000, 0x6000}

// ADS1115 implements ADCReader with single-shot conversions. The converter
// is 16-bit; the station's analog sensors were characterised against a
// 12-bit scale, so results are right-shifted to 0..4095 full scale.
type ADS1115 struct {
	dev i2c.Dev
}

func NewADS1115(bus i2c.Bus, addr uint16) *ADS1115 {
	return &ADS1115{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

func (a *ADS1115) Read(channel int) (uint16, error) {
	if channel < 0 || channel >= len(adsMux) {
		return 0, fmt.Errorf("%w: adc channel %d", ErrBusError, channel)
	}

	// OS=1 start, single-ended mux, PGA ±4.096 V, single-shot, 128 SPS.
	cfg := uint16(0x8000) | adsMux[channel] | 0x0200 | 0x0100 | 0x0080 | 0x0003
	if err := a.dev.Tx([]byte{adsRegConfig, byte(cfg >> 8), byte(cfg)}, nil); err != nil {
		return 0, fmt.Errorf("%w: adc start channel %d: %v", ErrBusError, channel, err)
	}

	// Poll OS until the conversion is ready, bounded.
	deadline := time.Now().Add(50 * time.Millisecond)
	for {
		var buf [2]byte
		if err := a.dev.Tx([]byte{adsRegConfig}, buf[:]); err != nil {
			return 0, fmt.Errorf("%w: adc poll channel %d: %v", ErrBusError, channel, err)
		}
		if buf[0]&0x80 != 0 {
			break
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("%w: adc conversion channel %d", ErrBusTimeout, channel)
		}
		time.Sleep(time.Millisecond)
	}

	var buf [2]byte
	if err := a.dev.Tx([]byte{adsRegConversion}, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: adc read channel %d: %v", ErrBusError, channel, err)
	}
	raw := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	if raw < 0 {
		raw = 0
	}
	return uint16(raw) >> 3, nil
}
