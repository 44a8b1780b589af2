package bmp280

// Oversampling settings for osrs_t / osrs_p.
const (
	OversampleSkip = 0
	Oversample1x   = 1
	Oversample2x   = 2
	Oversample4x   = 3
	Oversample8x   = 4
	Oversample16x  = 5
)

// Power modes.
const (
	ModeSleep  = 0
	ModeForced = 1
	ModeNormal = 3
)

// Standby durations for t_sb.
const (
	Standby0ms5  = 0
	Standby62ms5 = 1
	Standby125ms = 2
	Standby250ms = 3
	Standby500ms = 4
	Standby1s    = 5
	Standby2s    = 6
	Standby4s    = 7
)

// IIR filter coefficients.
const (
	FilterOff = 0
	Filter2   = 1
	Filter4   = 2
	Filter8   = 3
	Filter16  = 4
)

// Config mirrors the ctrl_meas and config registers as named fields so the
// shift/mask layout lives in exactly one place.
type Config struct {
	TempOversampling     byte // osrs_t, ctrl_meas[7:5]
	PressureOversampling byte // osrs_p, ctrl_meas[4:2]
	Mode                 byte // ctrl_meas[1:0]
	Standby              byte // t_sb, config[7:5]
	Filter               byte // config[4:2]
	SPI3Wire             bool // spi3w_en, config[0]
}

// Encode packs the struct into the two register bytes (ctrl_meas, config).
func (c Config) Encode() (ctrlMeas, config byte) {
	ctrlMeas = c.TempOversampling<<5 | c.PressureOversampling<<2 | c.Mode&0x03
	config = c.Standby<<5 | c.Filter<<2
	if c.SPI3Wire {
		config |= 0x01
	}
	return ctrlMeas, config
}

// DecodeConfig unpacks the two register bytes.
func DecodeConfig(ctrlMeas, config byte) Config {
	return Config{
		TempOversampling:     ctrlMeas >> 5 & 0x07,
		PressureOversampling: ctrlMeas >> 2 & 0x07,
		Mode:                 ctrlMeas & 0x03,
		Standby:              config >> 5 & 0x07,
		Filter:               config >> 2 & 0x07,
		SPI3Wire:             config&0x01 != 0,
	}
}

// Status mirrors the status register.
type Status struct {
	Measuring bool // conversion in progress, status[3]
	IMUpdate  bool // EEPROM copy in progress, status[0]
}

func DecodeStatus(b byte) Status {
	return Status{
		Measuring: b&(1<<3) != 0,
		IMUpdate:  b&1 != 0,
	}
}
