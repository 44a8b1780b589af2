package ephemeris

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

// Modes for the attached device.
const (
	ModeFrames = "frames" // station clock/ephemeris frame protocol
	ModeNMEA   = "nmea"   // bare GPS fallback
)

// maxConsecutiveFailures marks the feed degraded; the station keeps running
// on the last good fix.
const maxConsecutiveFailures = 5

// Feed holds the most recent fix from the device. One reader goroutine
// writes; the sampler reads.
type Feed struct {
	mu       sync.RWMutex
	latest   Fix
	valid    bool
	failures int
}

// Latest returns the most recent fix, if any has arrived.
func (f *Feed) Latest() (Fix, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, f.valid
}

// Degraded reports whether the feed has failed to parse several frames in a
// row.
func (f *Feed) Degraded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.failures >= maxConsecutiveFailures
}

func (f *Feed) publish(fix Fix) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !fix.HasSunAngles && f.valid {
		// A GPS fix carries no sun angles; keep the previous ones.
		fix.SunAzimuth = f.latest.SunAzimuth
		fix.SunElevation = f.latest.SunElevation
		fix.HasSunAngles = f.latest.HasSunAngles
	}
	f.latest = fix
	f.valid = true
	f.failures = 0
}

func (f *Feed) fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
}

// OpenPort opens the serial link to the device.
func OpenPort(device string, baud uint) (io.ReadWriteCloser, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        device,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return port, nil
}

// Run consumes the device stream until ctx is cancelled or the stream ends.
// Parse failures are counted but never fatal.
func (f *Feed) Run(ctx context.Context, r io.Reader, mode string) error {
	switch mode {
	case ModeFrames:
		return f.runFrames(ctx, r)
	case ModeNMEA:
		return f.runNMEA(ctx, r)
	default:
		return fmt.Errorf("unknown ephemeris mode %q", mode)
	}
}

func (f *Feed) runFrames(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(splitFrames)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fix, err := ParseFrame(scanner.Text())
		if err != nil {
			f.fail()
			log.Printf("ephemeris: bad frame: %v", err)
			continue
		}
		f.publish(fix)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ephemeris stream: %w", err)
	}
	return io.EOF
}

func (f *Feed) runNMEA(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		fix, err := ParseNMEA(line)
		if err != nil {
			// GPS streams interleave sentence types; only count real
			// RMC failures against the feed.
			if strings.Contains(err.Error(), "unsupported sentence") {
				continue
			}
			f.fail()
			continue
		}
		f.publish(fix)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ephemeris stream: %w", err)
	}
	return io.EOF
}

// splitFrames extracts payloads between '<' and '>' delimiters, dropping
// anything outside a frame.
func splitFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := -1
	for i, b := range data {
		switch b {
		case '<':
			start = i
		case '>':
			if start >= 0 {
				return i + 1, data[start+1 : i], nil
			}
		}
	}
	if atEOF {
		return len(data), nil, nil
	}
	// Discard unframed prefix so the buffer cannot fill with noise.
	if start > 0 {
		return start, nil, nil
	}
	if start < 0 {
		return len(data), nil, nil
	}
	return 0, nil, nil
}
