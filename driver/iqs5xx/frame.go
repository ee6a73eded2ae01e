package iqs5xx

import (
	"fmt"

	"trackpad.dev/touch"
)

const (
	// FrameSize is the size of the block read from the gesture event
	// register onwards.
	FrameSize = fingerOffset + touch.MaxFingers*fingerSize

	fingerOffset = 9
	fingerSize   = 7
)

// Parse decodes a frame. The transform is applied to the relative
// movement and to every finger with nonzero strength. Only short
// buffers are rejected; semantic checks are left to
// touch.Frame.Validate.
func Parse(b []byte, xf touch.Transform) (touch.Frame, error) {
	if len(b) < FrameSize {
		return touch.Frame{}, fmt.Errorf("iqs5xx: %d byte frame: %w", len(b), ErrMalformedFrame)
	}
	f := touch.Frame{
		GestureA: b[0],
		GestureB: b[1],
		Status:   [2]byte{b[2], b[3]},
		Count:    int(b[4]),
	}
	dx := int(int16(bo.Uint16(b[5:])))
	dy := int(int16(bo.Uint16(b[7:])))
	f.DX, f.DY = xf.Apply(dx, dy)
	for i := range f.Fingers {
		rec := b[fingerOffset+i*fingerSize:]
		fg := touch.Finger{
			X:        int(bo.Uint16(rec[0:])),
			Y:        int(bo.Uint16(rec[2:])),
			Strength: int(bo.Uint16(rec[4:])),
			Area:     int(rec[6]),
		}
		if fg.Active() {
			fg.X, fg.Y = xf.Apply(fg.X, fg.Y)
		}
		f.Fingers[i] = fg
	}
	return f, nil
}
