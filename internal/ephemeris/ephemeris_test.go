package ephemeris

import (
	"bufio"
	"context"
	"math"
	"strings"
	"testing"
)

const goodPayload = "202406151230455|156.42|48.73|54.6687|25.2798|3"

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame(goodPayload)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}

	if f.Year != 2024 || f.Month != 6 || f.Day != 15 {
		t.Errorf("date = %d-%02d-%02d, want 2024-06-15", f.Year, f.Month, f.Day)
	}
	if f.Hour != 12 || f.Minute != 30 || f.Second != 45 || f.Tenth != 5 {
		t.Errorf("time = %02d:%02d:%02d.%d, want 12:30:45.5", f.Hour, f.Minute, f.Second, f.Tenth)
	}
	if f.SunAzimuth != 156.42 || f.SunElevation != 48.73 {
		t.Errorf("sun = %v/%v, want 156.42/48.73", f.SunAzimuth, f.SunElevation)
	}
	if f.Latitude != 54.6687 || f.Longitude != 25.2798 {
		t.Errorf("position = %v/%v", f.Latitude, f.Longitude)
	}
	if f.Timezone != 3 {
		t.Errorf("timezone = %d, want 3", f.Timezone)
	}
	if !f.HasSunAngles {
		t.Error("HasSunAngles = false, want true")
	}

	ts := f.Timestamp()
	if ts.Hour() != 12 || ts.Minute() != 30 {
		t.Errorf("Timestamp() = %v", ts)
	}
	_, offset := ts.Zone()
	if offset != 3*3600 {
		t.Errorf("zone offset = %d, want %d", offset, 3*3600)
	}
}

func TestParseFrameRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"too few fields", "202406151230455|156.42|48.73|54.6687|25.2798"},
		{"short timestamp", "2024061512304|156.42|48.73|54.6687|25.2798|3"},
		{"non-numeric timestamp", "20240615123045x|156.42|48.73|54.6687|25.2798|3"},
		{"month 13", "202413151230455|156.42|48.73|54.6687|25.2798|3"},
		{"day 31 in june", "202406311230455|156.42|48.73|54.6687|25.2798|3"},
		{"feb 29 in non-leap year", "202302291230455|156.42|48.73|54.6687|25.2798|3"},
		{"hour 24", "202406152430455|156.42|48.73|54.6687|25.2798|3"},
		{"bad azimuth", "202406151230455|abc|48.73|54.6687|25.2798|3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFrame(tt.payload); err == nil {
				t.Errorf("ParseFrame(%q) = nil error", tt.payload)
			}
		})
	}
}

func TestValidateDateTimeLeapYears(t *testing.T) {
	if err := ValidateDateTime(2024, 2, 29, 0, 0, 0); err != nil {
		t.Errorf("2024-02-29 rejected: %v", err)
	}
	if err := ValidateDateTime(2100, 2, 29, 0, 0, 0); err == nil {
		t.Error("2100-02-29 accepted; centuries are not leap years")
	}
}

func TestSplitFrames(t *testing.T) {
	stream := "garbage<" + goodPayload + ">noise\r\n<short|frame>tail"
	scanner := bufio.NewScanner(strings.NewReader(stream))
	scanner.Split(splitFrames)

	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanner: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != goodPayload || tokens[1] != "short|frame" {
		t.Errorf("tokens = %q", tokens)
	}
}

func TestFeedRunFrames(t *testing.T) {
	stream := "<" + goodPayload + "><bad frame>"
	var feed Feed
	err := feed.Run(context.Background(), strings.NewReader(stream), ModeFrames)
	if err == nil {
		t.Fatal("Run returned nil, want io.EOF at stream end")
	}

	fix, ok := feed.Latest()
	if !ok {
		t.Fatal("Latest() ok = false")
	}
	if fix.SunElevation != 48.73 {
		t.Errorf("SunElevation = %v, want 48.73", fix.SunElevation)
	}
	if feed.Degraded() {
		t.Error("Degraded() = true after a single bad frame")
	}
}

func TestFeedDegradedAfterConsecutiveFailures(t *testing.T) {
	var feed Feed
	stream := strings.Repeat("<bad>", maxConsecutiveFailures)
	feed.Run(context.Background(), strings.NewReader(stream), ModeFrames)
	if !feed.Degraded() {
		t.Error("Degraded() = false, want true")
	}

	// A good frame recovers the feed.
	feed.Run(context.Background(), strings.NewReader("<"+goodPayload+">"), ModeFrames)
	if feed.Degraded() {
		t.Error("Degraded() = true after recovery")
	}
}

func TestParseNMEA(t *testing.T) {
	const sentence = "$GPRMC,093045,A,5440.120,N,02518.300,E,000.0,084.4,150624,006.6,E*7A"

	f, err := ParseNMEA(sentence)
	if err != nil {
		t.Fatalf("ParseNMEA: %v", err)
	}
	if f.Year != 2024 || f.Month != 6 || f.Day != 15 {
		t.Errorf("date = %d-%02d-%02d, want 2024-06-15", f.Year, f.Month, f.Day)
	}
	if f.Hour != 9 || f.Minute != 30 || f.Second != 45 {
		t.Errorf("time = %02d:%02d:%02d, want 09:30:45", f.Hour, f.Minute, f.Second)
	}
	if math.Abs(f.Latitude-54.6687) > 0.001 || math.Abs(f.Longitude-25.305) > 0.001 {
		t.Errorf("position = %v/%v", f.Latitude, f.Longitude)
	}
	if f.HasSunAngles {
		t.Error("HasSunAngles = true for a GPS fix")
	}
}

func TestFeedKeepsSunAnglesAcrossGPSFix(t *testing.T) {
	var feed Feed
	frames, _ := ParseFrame(goodPayload)
	feed.publish(frames)

	gps, err := ParseNMEA("$GPRMC,093045,A,5440.120,N,02518.300,E,000.0,084.4,150624,006.6,E*7A")
	if err != nil {
		t.Fatalf("ParseNMEA: %v", err)
	}
	feed.publish(gps)

	fix, ok := feed.Latest()
	if !ok {
		t.Fatal("Latest() ok = false")
	}
	if fix.SunAzimuth != 156.42 || fix.SunElevation != 48.73 {
		t.Errorf("sun angles = %v/%v, want retained 156.42/48.73", fix.SunAzimuth, fix.SunElevation)
	}
	if math.Abs(fix.Latitude-54.6687) > 0.001 {
		t.Errorf("latitude = %v, want GPS value", fix.Latitude)
	}
}
