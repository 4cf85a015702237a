package signature

// PointerSample is a point in surface-local, device-pixel coordinates. The
// drawing state machine only ever sees these; where they came from (mouse or
// touch) is the adapters' business.
type PointerSample struct {
	X float64
	Y float64
}

// ClientPoint is a raw pointer position in client (viewport) coordinates,
// before the surface mapping is applied.
type ClientPoint struct {
	X float64
	Y float64
}

// Geometry describes how the capture surface is rendered on screen: where
// its bounding box sits in client coordinates and how large it is displayed.
// The backing bitmap has a fixed pixel size independent of the display size,
// so mapping client coordinates onto it must multiply by bitmap/display.
type Geometry struct {
	OriginX       float64
	OriginY       float64
	DisplayWidth  float64
	DisplayHeight float64
}

type MouseEvent struct {
	ClientX float64
	ClientY float64
}

type Touch struct {
	ClientX float64
	ClientY float64
}

type TouchEvent struct {
	Touches []Touch
}

// MouseAdapter normalizes mouse events into client points.
type MouseAdapter struct{}

func (MouseAdapter) Point(e MouseEvent) (ClientPoint, bool) {
	return ClientPoint{X: e.ClientX, Y: e.ClientY}, true
}

// SuppressDefault reports whether the platform's default gesture must be
// cancelled while drawing. Mouse input has no competing gesture.
func (MouseAdapter) SuppressDefault() bool { return false }

// TouchAdapter normalizes touch events into client points, using the first
// active touch.
type TouchAdapter struct{}

func (TouchAdapter) Point(e TouchEvent) (ClientPoint, bool) {
	if len(e.Touches) == 0 {
		return ClientPoint{}, false
	}
	return ClientPoint{X: e.Touches[0].ClientX, Y: e.Touches[0].ClientY}, true
}

// SuppressDefault is true for touch: a move during capture must draw a
// stroke, not scroll the page.
func (TouchAdapter) SuppressDefault() bool { return true }
