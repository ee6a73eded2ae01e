package touch

import "fmt"

// Rotation is a clockwise sensor mounting rotation in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

// Transform maps sensor coordinates to output coordinates.
type Transform struct {
	Rotation Rotation
	InvertX  bool
	InvertY  bool
}

func (t Transform) String() string {
	return fmt.Sprintf("rot%d invx=%v invy=%v", t.Rotation, t.InvertX, t.InvertY)
}

// Apply rotates (x, y) and then inverts the selected axes. The order
// matters: inverting before rotating mirrors rotated output.
func (t Transform) Apply(x, y int) (int, int) {
	switch t.Rotation {
	case Rotate90:
		x, y = y, -x
	case Rotate180:
		x, y = -x, -y
	case Rotate270:
		x, y = -y, x
	}
	if t.InvertX {
		x = -x
	}
	if t.InvertY {
		y = -y
	}
	return x, y
}
