package sensors

import (
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/baltix/meteostation/internal/bmp280"
	"github.com/baltix/meteostation/internal/sht21"
)

// Default I2C addresses.
const (
	BMP280Addr = 0x76
	SHT21Addr  = 0x40
	ADCAddr    = 0x48
)

// OpenBus initializes the periph host and opens the named I2C bus, retrying
// with exponential backoff. Boot-time bus glitches on the Pi are common
// enough that a one-shot open would flap the service.
func OpenBus(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	var bus i2c.BusCloser
	operation := func() error {
		var err error
		bus, err = i2creg.Open(name)
		if err != nil {
			log.Printf("sensors: open i2c bus %q: %v (retrying)", name, err)
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return bus, nil
}

// BMP280Bus implements EnvironmentBus over I2C.
type BMP280Bus struct {
	dev i2c.Dev
}

func NewBMP280Bus(bus i2c.Bus, addr uint16) *BMP280Bus {
	return &BMP280Bus{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

func (b *BMP280Bus) ReadID() (byte, error) {
	var buf [1]byte
	if err := b.dev.Tx([]byte{bmp280.RegChipID}, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: read chip id: %v", ErrBusError, err)
	}
	return buf[0], nil
}

func (b *BMP280Bus) ReadCalibration() (bmp280.Calibration, error) {
	buf := make([]byte, bmp280.CalibrationSize)
	if err := b.dev.Tx([]byte{bmp280.RegCalibStart}, buf); err != nil {
		return bmp280.Calibration{}, fmt.Errorf("%w: read calibration: %v", ErrBusError, err)
	}
	return bmp280.ParseCalibration(buf)
}

func (b *BMP280Bus) WriteConfig(cfg bmp280.Config) error {
	ctrlMeas, config := cfg.Encode()
	if err := b.dev.Tx([]byte{bmp280.RegCtrlMeas, ctrlMeas, bmp280.RegConfig, config}, nil); err != nil {
		return fmt.Errorf("%w: write config: %v", ErrBusError, err)
	}
	return nil
}

func (b *BMP280Bus) ReadStatus() (bmp280.Status, error) {
	var buf [1]byte
	if err := b.dev.Tx([]byte{bmp280.RegStatus}, buf[:]); err != nil {
		return bmp280.Status{}, fmt.Errorf("%w: read status: %v", ErrBusError, err)
	}
	return bmp280.DecodeStatus(buf[0]), nil
}

// ReadRawSample burst-reads the six data registers. Pressure and temperature
// are 20-bit counts: MSB, LSB and the top nibble of XLSB.
func (b *BMP280Bus) ReadRawSample() (bmp280.RawSample, error) {
	var buf [6]byte
	if err := b.dev.Tx([]byte{bmp280.RegPressMSB}, buf[:]); err != nil {
		return bmp280.RawSample{}, fmt.Errorf("%w: read data registers: %v", ErrBusError, err)
	}
	return bmp280.RawSample{
		UP: int32(buf[0])<<12 | int32(buf[1])<<4 | int32(buf[2])>>4,
		UT: int32(buf[3])<<12 | int32(buf[4])<<4 | int32(buf[5])>>4,
	}, nil
}

// Reset issues a soft reset and waits for the EEPROM copy to finish.
func (b *BMP280Bus) Reset() error {
	if err := b.dev.Tx([]byte{bmp280.RegReset, bmp280.ResetValue}, nil); err != nil {
		return fmt.Errorf("%w: reset: %v", ErrBusError, err)
	}
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		st, err := b.ReadStatus()
		if err == nil && !st.IMUpdate {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("%w: reset did not complete", ErrBusTimeout)
}

// SHT21Bus implements HumidityBus over I2C using hold-master transfers: the
// sensor clock-stretches until the conversion completes, so the transaction
// itself is the bounded wait.
type SHT21Bus struct {
	dev i2c.Dev
}

func NewSHT21Bus(bus i2c.Bus, addr uint16) *SHT21Bus {
	return &SHT21Bus{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

func (b *SHT21Bus) ReadWord(cmd byte) (uint32, error) {
	var buf [3]byte
	if err := b.dev.Tx([]byte{cmd}, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: measurement %#02x: %v", ErrBusError, cmd, err)
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

func (b *SHT21Bus) WriteSettings(reg byte) error {
	if err := b.dev.Tx([]byte{sht21.CmdWriteUserReg, reg}, nil); err != nil {
		return fmt.Errorf("%w: write user register: %v", ErrBusError, err)
	}
	return nil
}

// SoftReset reboots the sensor; it needs up to 15 ms before the next command.
func (b *SHT21Bus) SoftReset() error {
	if err := b.dev.Tx([]byte{sht21.CmdSoftReset}, nil); err != nil {
		return fmt.Errorf("%w: soft reset: %v", ErrBusError, err)
	}
	time.Sleep(15 * time.Millisecond)
	return nil
}
