package sensors

import (
	"github.com/baltix/meteostation/internal/bmp280"
	"github.com/baltix/meteostation/internal/sht21"
)

// FakeEnvironment is an in-memory EnvironmentBus for tests and the
// fake-sensors development mode.
type FakeEnvironment struct {
	ID     byte
	Cal    bmp280.Calibration
	Sample bmp280.RawSample
	Err    error
}

func (f *FakeEnvironment) ReadID() (byte, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if f.ID == 0 {
		return bmp280.ChipID, nil
	}
	return f.ID, nil
}

func (f *FakeEnvironment) ReadCalibration() (bmp280.Calibration, error) {
	if f.Err != nil {
		return bmp280.Calibration{}, f.Err
	}
	return f.Cal, nil
}

func (f *FakeEnvironment) WriteConfig(bmp280.Config) error { return f.Err }

func (f *FakeEnvironment) ReadStatus() (bmp280.Status, error) {
	if f.Err != nil {
		return bmp280.Status{}, f.Err
	}
	return bmp280.Status{}, nil
}

func (f *FakeEnvironment) ReadRawSample() (bmp280.RawSample, error) {
	if f.Err != nil {
		return bmp280.RawSample{}, f.Err
	}
	return f.Sample, nil
}

// FakeHumidity serves canned transmission words keyed by command.
type FakeHumidity struct {
	Words map[byte]uint32
	Err   error
}

func (f *FakeHumidity) ReadWord(cmd byte) (uint32, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Words[cmd], nil
}

func (f *FakeHumidity) WriteSettings(byte) error { return f.Err }

// EncodeWord builds a valid 24-bit transmission for a 16-bit measurement,
// appending the correct CRC. Test helper for fault-free words.
func EncodeWord(raw uint16) uint32 {
	msb := byte(raw >> 8)
	lsb := byte(raw)
	return uint32(msb)<<16 | uint32(lsb)<<8 | uint32(sht21.Checksum(msb, lsb))
}

// FakeADC serves canned counts per channel.
type FakeADC struct {
	Counts [3]uint16
	Err    error
}

func (f *FakeADC) Read(channel int) (uint16, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Counts[channel], nil
}
