// Package touch defines the decoded multi-touch frame shared by the
// trackpad driver and the gesture engine.
package touch

import (
	"errors"
	"fmt"
	"math"
)

// MaxFingers is the number of finger records in a frame.
const MaxFingers = 5

// ErrDataQuality is returned by Validate for frames that decode fine
// but cannot be trusted.
var ErrDataQuality = errors.New("data quality")

// Gesture flags reported by the sensor in byte A.
const (
	SingleTap    = 0b1 << 0
	PressAndHold = 0b1 << 1
	SwipeXNeg    = 0b1 << 2
	SwipeXPos    = 0b1 << 3
	SwipeYPos    = 0b1 << 4
	SwipeYNeg    = 0b1 << 5
)

// Gesture flags reported by the sensor in byte B.
const (
	TwoFingerTap = 0b1 << 0
	Scroll       = 0b1 << 1
	Zoom         = 0b1 << 2
)

// Status bits in the first status byte.
const (
	StatusShowReset   = 0b1 << 7
	StatusALPReATI    = 0b1 << 6
	StatusALPATIError = 0b1 << 5
	StatusReATI       = 0b1 << 4
	StatusATIError    = 0b1 << 3
)

// Status bits in the second status byte.
const (
	StatusSwitch         = 0b1 << 5
	StatusSnap           = 0b1 << 4
	StatusRRMissed       = 0b1 << 3
	StatusTooManyFingers = 0b1 << 2
	StatusPalm           = 0b1 << 1
	StatusMovement       = 0b1 << 0
)

type Finger struct {
	X, Y     int
	Strength int
	Area     int
}

// Active reports whether the finger is in contact. Records with zero
// strength are ignored by gesture processing.
func (f Finger) Active() bool {
	return f.Strength != 0
}

// Frame is one decoded sensor sample.
type Frame struct {
	GestureA byte
	GestureB byte
	Status   [2]byte
	// Count is the number of fingers reported by the sensor.
	Count   int
	DX, DY  int
	Fingers [MaxFingers]Finger
}

func (f Frame) Tap() bool          { return f.GestureA&SingleTap != 0 }
func (f Frame) Hold() bool         { return f.GestureA&PressAndHold != 0 }
func (f Frame) TwoFingerTap() bool { return f.GestureB&TwoFingerTap != 0 }
func (f Frame) Scroll() bool       { return f.GestureB&Scroll != 0 }

// DeviceReset reports whether the sensor signals that it has been
// reset since the last acknowledgement.
func (f Frame) DeviceReset() bool {
	return f.Status[0]&StatusShowReset != 0
}

// Active returns the number of fingers with nonzero strength.
func (f Frame) Active() int {
	n := 0
	for _, fg := range f.Fingers {
		if fg.Active() {
			n++
		}
	}
	return n
}

// Distance returns the Euclidean distance between fingers i and j.
func (f Frame) Distance(i, j int) float64 {
	a, b := f.Fingers[i], f.Fingers[j]
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Bounds is the coordinate range of the sensor.
type Bounds struct {
	MaxX, MaxY int
}

// Validate checks the frame for sensor-side errors, finger count
// mismatches and out of range coordinates. Coordinates are compared by
// magnitude against the larger axis since rotation may swap or negate
// them.
func (f Frame) Validate(b Bounds) error {
	if f.Status[0]&(StatusATIError|StatusALPATIError) != 0 {
		return fmt.Errorf("touch: status %#02x: %w", f.Status[0], ErrDataQuality)
	}
	if f.Count < 0 || f.Count > MaxFingers {
		return fmt.Errorf("touch: %d fingers: %w", f.Count, ErrDataQuality)
	}
	if n := f.Active(); n != f.Count {
		return fmt.Errorf("touch: %d fingers reported, %d active: %w", f.Count, n, ErrDataQuality)
	}
	lim := max(b.MaxX, b.MaxY)
	if lim <= 0 {
		return nil
	}
	for i, fg := range f.Fingers {
		if !fg.Active() {
			continue
		}
		if abs(fg.X) > lim || abs(fg.Y) > lim {
			return fmt.Errorf("touch: finger %d at (%d,%d) out of range: %w", i, fg.X, fg.Y, ErrDataQuality)
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
