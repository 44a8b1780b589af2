package ephemeris

import (
	"fmt"

	nmea "github.com/adrianmo/go-nmea"
)

// ParseNMEA decodes an RMC sentence from a bare GPS into a Fix. The GPS
// supplies time and position only; the sun angles stay at their previous
// values, which the sticky-hold correction handles naturally.
func ParseNMEA(line string) (Fix, error) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, fmt.Errorf("nmea parse: %w", err)
	}

	rmc, ok := sentence.(nmea.RMC)
	if !ok {
		return Fix{}, fmt.Errorf("unsupported sentence type %s", sentence.DataType())
	}
	if rmc.Validity != nmea.ValidRMC {
		return Fix{}, fmt.Errorf("rmc fix not valid (%s)", rmc.Validity)
	}

	year := rmc.Date.YY
	if year < 80 {
		year += 2000
	} else {
		year += 1900
	}

	f := Fix{
		Year:      year,
		Month:     rmc.Date.MM,
		Day:       rmc.Date.DD,
		Hour:      rmc.Time.Hour,
		Minute:    rmc.Time.Minute,
		Second:    rmc.Time.Second,
		Latitude:  rmc.Latitude,
		Longitude: rmc.Longitude,
	}
	if err := ValidateDateTime(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second); err != nil {
		return Fix{}, fmt.Errorf("invalid rmc date/time: %w", err)
	}
	return f, nil
}
