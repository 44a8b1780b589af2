// Package ephemeris reads the attached clock/ephemeris device. The device
// computes sun position from time and location and streams frames over a
// serial link:
//
//	<YYYYMMDDHHMMSSd|azimuth|elevation|latitude|longitude|tz>
//
// where d is a tenths-of-second digit and the angles are decimal degrees.
// Some installations attach a bare GPS instead; those speak NMEA and supply
// time and position only (see nmea.go).
package ephemeris

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fix is one decoded ephemeris frame.
type Fix struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Tenth  int

	SunAzimuth   float64
	SunElevation float64
	Latitude     float64
	Longitude    float64
	Timezone     int // whole hours east of UTC

	// HasSunAngles is false for fixes recovered from a bare GPS feed.
	HasSunAngles bool
}

// Timestamp assembles the fix time in the fix's own timezone.
func (f Fix) Timestamp() time.Time {
	loc := time.FixedZone("station", f.Timezone*3600)
	return time.Date(f.Year, time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, f.Tenth*1e8, loc)
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidateDateTime rejects impossible calendar dates and clock values.
func ValidateDateTime(year, month, day, hour, minute, second int) error {
	if year < 2000 || year > 2199 {
		return fmt.Errorf("year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range", month)
	}
	days := daysInMonth[month]
	if month == 2 && isLeapYear(year) {
		days = 29
	}
	if day < 1 || day > days {
		return fmt.Errorf("day %d out of range for %d-%02d", day, year, month)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute %d out of range", minute)
	}
	if second < 0 || second > 59 {
		return fmt.Errorf("second %d out of range", second)
	}
	return nil
}

// ParseFrame decodes the payload between the frame delimiters.
func ParseFrame(payload string) (Fix, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 6 {
		return Fix{}, fmt.Errorf("frame has %d fields, want 6", len(parts))
	}

	stamp := parts[0]
	if len(stamp) != 15 {
		return Fix{}, fmt.Errorf("timestamp %q is %d digits, want 15", stamp, len(stamp))
	}
	digits := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", stamp, err)
		}
		return n, nil
	}

	var f Fix
	var err error
	if f.Year, err = digits(stamp[0:4]); err != nil {
		return Fix{}, err
	}
	if f.Month, err = digits(stamp[4:6]); err != nil {
		return Fix{}, err
	}
	if f.Day, err = digits(stamp[6:8]); err != nil {
		return Fix{}, err
	}
	if f.Hour, err = digits(stamp[8:10]); err != nil {
		return Fix{}, err
	}
	if f.Minute, err = digits(stamp[10:12]); err != nil {
		return Fix{}, err
	}
	if f.Second, err = digits(stamp[12:14]); err != nil {
		return Fix{}, err
	}
	if f.Tenth, err = digits(stamp[14:15]); err != nil {
		return Fix{}, err
	}

	if err := ValidateDateTime(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second); err != nil {
		return Fix{}, fmt.Errorf("invalid date/time: %w", err)
	}

	if f.SunAzimuth, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return Fix{}, fmt.Errorf("azimuth %q: %w", parts[1], err)
	}
	if f.SunElevation, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return Fix{}, fmt.Errorf("elevation %q: %w", parts[2], err)
	}
	if f.Latitude, err = strconv.ParseFloat(parts[3], 64); err != nil {
		return Fix{}, fmt.Errorf("latitude %q: %w", parts[3], err)
	}
	if f.Longitude, err = strconv.ParseFloat(parts[4], 64); err != nil {
		return Fix{}, fmt.Errorf("longitude %q: %w", parts[4], err)
	}
	if f.Timezone, err = strconv.Atoi(parts[5]); err != nil {
		return Fix{}, fmt.Errorf("timezone %q: %w", parts[5], err)
	}

	f.HasSunAngles = true
	return f, nil
}
