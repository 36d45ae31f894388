package layout

import "fmt"

// NoIntrinsicMetric marks an axis of an intrinsic size as absent.
const NoIntrinsicMetric = -1.0

// Size is a width and height pair.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Rect is a frame: an origin in the parent's coordinate space plus a size.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// R is shorthand for constructing a Rect.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// Size returns the size component of r.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.X, r.Y, r.Width, r.Height)
}

// Axis is a layout axis.
type Axis uint8

const (
	// Horizontal is the x axis.
	Horizontal Axis = iota
	// Vertical is the y axis.
	Vertical
)

// String implements fmt.Stringer.
func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// OptOut is a mask of frame components that are exempt from constraint
// driven layout. The current value of an opted-out component is suggested to
// the solver at strong strength, so required constraints still win.
type OptOut uint8

const (
	OptOutLeft OptOut = 1 << iota
	OptOutTop
	OptOutWidth
	OptOutHeight

	// OptOutOrigin keeps the current position.
	OptOutOrigin = OptOutLeft | OptOutTop
	// OptOutSize keeps the current size.
	OptOutSize = OptOutWidth | OptOutHeight
	// OptOutAll keeps the whole frame, the way a solve root is treated.
	OptOutAll = OptOutOrigin | OptOutSize
)

// Has reports whether every bit of o2 is set in o.
func (o OptOut) Has(o2 OptOut) bool { return o&o2 == o2 }

// String renders the mask as "left|width".
func (o OptOut) String() string {
	if o == 0 {
		return "none"
	}
	names := []string{"left", "top", "width", "height"}
	s := ""
	for i, n := range names {
		if o&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += n
		}
	}
	return s
}
