package display

import (
	"strings"
	"testing"
	"time"

	"github.com/baltix/meteostation/internal/solar"
	"github.com/baltix/meteostation/internal/station"
	"github.com/baltix/meteostation/internal/wind"
)

func testSnapshot() station.Snapshot {
	return station.Snapshot{
		Time:          time.Date(2024, 6, 15, 12, 30, 45, 0, time.UTC),
		Temperature:   25.08,
		PressureHPa:   1006.399,
		PressureValid: true,
		Humidity:      42.49,
		HumidityTemp:  21.44,
		Sun: solar.Angles{
			Elevation:    48.73,
			Azimuth:      156.42,
			AdjElevation: 48.7303,
			AdjAzimuth:   156.42,
			SunLevel:     512,
		},
		Wind:        wind.State{Speed: 10, Direction: 1},
		WindName:    "NE",
		Latitude:    54.6687,
		Longitude:   25.2798,
		FixTime:     time.Date(2024, 6, 15, 12, 30, 45, 0, time.UTC),
		EphemerisOK: true,
	}
}

func TestMainScreen(t *testing.T) {
	lines := Main(testSnapshot())

	want := []string{
		"Temperature:   21.44C",
		"Pressure:  1006.40hPa",
		"Humidity:      42.49%",
		"Wind: NE        10m/s",
		"Light level:    512mV",
		"---------------------",
		"2024-06-15 A:  156.42",
		"  12:30:45 E:   48.73",
	}
	if len(lines) != len(want) {
		t.Fatalf("len(lines) = %d, want %d\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i, l := range lines {
		if l != want[i] {
			t.Errorf("line %d = %q, want %q", i, l, want[i])
		}
	}
}

func TestMainScreen_ClockError(t *testing.T) {
	snap := testSnapshot()
	snap.EphemerisOK = false

	lines := Main(snap)
	last := lines[len(lines)-1]
	if !strings.Contains(last, "Clock error!!!") {
		t.Errorf("last line = %q, want clock error message", last)
	}
	for _, l := range lines {
		if strings.Contains(l, "A:") || strings.Contains(l, "E:") {
			t.Errorf("sun angle line %q rendered despite clock error", l)
		}
	}
}

func TestDetailScreen(t *testing.T) {
	lines := Detail(testSnapshot())

	checks := map[int]string{
		0: "20240615123045",
		1: "156.4200",
		4: "54.6687",
		5: "25.2798",
	}
	for i, sub := range checks {
		if !strings.Contains(lines[i], sub) {
			t.Errorf("line %d = %q, want substring %q", i, lines[i], sub)
		}
	}
}

func TestRenderIncludesBothScreens(t *testing.T) {
	out := Render(testSnapshot())
	for _, sub := range []string{"Temperature:", "adj. el:", "avg. alt:"} {
		if !strings.Contains(out, sub) {
			t.Errorf("Render output missing %q", sub)
		}
	}
}
