// Package display renders a station snapshot into the fixed-width text
// screens of the front panel LCD: a main screen with the headline readings
// and a detail screen with the full parameter list. The rendered lines are
// served over HTTP as plain text and make the periodic log output readable.
package display

import (
	"fmt"
	"strings"

	"github.com/baltix/meteostation/internal/station"
)

// Width is the character width of one LCD line.
const Width = 21

const rule = "---------------------"

// line lays out a left-aligned label and a right-aligned value, padded to
// Width. Overlong content is left intact rather than truncated.
func line(label, value string) string {
	pad := Width - len(label) - len(value)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + value
}

// Main renders the headline screen: temperature, pressure, humidity, wind,
// light level and the clock with the corrected sun angles.
func Main(snap station.Snapshot) []string {
	lines := []string{
		line("Temperature:", fmt.Sprintf("%.2fC", snap.HumidityTemp)),
		line("Pressure:", fmt.Sprintf("%.2fhPa", snap.PressureHPa)),
		line("Humidity:", fmt.Sprintf("%.2f%%", snap.Humidity)),
		line("Wind: "+snap.WindName, fmt.Sprintf("%2dm/s", snap.Wind.Speed)),
		line("Light level:", fmt.Sprintf("%4dmV", snap.Sun.SunLevel)),
		rule,
	}
	if !snap.EphemerisOK {
		lines = append(lines, center("Clock error!!!"))
		return lines
	}
	lines = append(lines,
		line(snap.FixTime.Format("2006-01-02")+" A:", fmt.Sprintf("%.2f", snap.Sun.AdjAzimuth)),
		line("  "+snap.FixTime.Format("15:04:05")+" E:", fmt.Sprintf("%.2f", snap.Sun.AdjElevation)),
	)
	return lines
}

// Detail renders the full parameter screen: raw sun angles, position and
// the altitude estimates.
func Detail(snap station.Snapshot) []string {
	return []string{
		line("t:", snap.FixTime.Format("20060102150405")),
		line("az:", fmt.Sprintf("%.4f", snap.Sun.Azimuth)),
		line("el:", fmt.Sprintf("%.4f", snap.Sun.Elevation)),
		line("adj. el:", fmt.Sprintf("%.4f", snap.Sun.AdjElevation)),
		line("lat:", fmt.Sprintf("%.4f", snap.Latitude)),
		line("long:", fmt.Sprintf("%.4f", snap.Longitude)),
		line("alt:", fmt.Sprintf("%.1fm", snap.Altitude.Uncompensated)),
		line("adj. alt:", fmt.Sprintf("%.1fm", snap.Altitude.Compensated)),
		line("avg. alt:", fmt.Sprintf("%.1fm", snap.Altitude.Average)),
	}
}

// Render joins both screens into one plain-text page.
func Render(snap station.Snapshot) string {
	var b strings.Builder
	for _, l := range Main(snap) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(rule)
	b.WriteByte('\n')
	for _, l := range Detail(snap) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func center(s string) string {
	pad := (Width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
