package signature

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

type State int

const (
	StateIdle State = iota
	StateDrawing
)

// Pad bitmap sizes for the two capture variants. Both run the same state
// machine; only the backing resolution and stroke width differ.
const (
	inlineWidth  = 320
	inlineHeight = 160
	inlineStroke = 2.0

	modalWidth  = 760
	modalHeight = 380
	modalStroke = 3.0
)

var ink = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}

// Pad records freehand pen strokes into a fixed-size bitmap. Pointer input
// arrives in client coordinates and is mapped to surface-local device pixels
// before anything is drawn, so the captured stroke is identical no matter
// how large the surface is rendered.
type Pad struct {
	width  int
	height int
	stroke float64

	geom    Geometry
	state   State
	img     *image.RGBA
	last    PointerSample
	encoded []byte
	inked   bool
}

// NewInlinePad builds the small pad embedded in the form.
func NewInlinePad(geom Geometry) *Pad {
	return newPad(inlineWidth, inlineHeight, inlineStroke, geom)
}

// NewModalPad builds the floating full-size pad.
func NewModalPad(geom Geometry) *Pad {
	return newPad(modalWidth, modalHeight, modalStroke, geom)
}

func newPad(width, height int, stroke float64, geom Geometry) *Pad {
	return &Pad{
		width:  width,
		height: height,
		stroke: stroke,
		geom:   geom,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Reframe updates the surface geometry, e.g. after the element was resized
// or the modal reopened. Only legal between strokes.
func (p *Pad) Reframe(geom Geometry) {
	if p.state == StateIdle {
		p.geom = geom
	}
}

// Begin starts a stroke at the given client point (pointer-down).
func (p *Pad) Begin(pt ClientPoint) {
	sample := p.sample(pt)
	p.state = StateDrawing
	p.last = sample
	// A tap with no movement still leaves a dot
	p.stampDisc(sample)
	p.inked = true
}

// Extend appends a segment from the last recorded point to the new point
// (pointer-move). The last point advances after every segment; drawing from
// the original start each time would produce a fan instead of a stroke.
func (p *Pad) Extend(pt ClientPoint) {
	if p.state != StateDrawing {
		return
	}
	sample := p.sample(pt)
	p.drawSegment(p.last, sample)
	p.last = sample
}

// Commit ends the stroke (pointer-up or pointer-leave) and serializes the
// bitmap to PNG. The point history is discarded; downstream only ever needs
// the raster. Returns nil when nothing has been drawn since the last clear.
func (p *Pad) Commit() ([]byte, error) {
	p.state = StateIdle
	if !p.inked {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, p.img); err != nil {
		return nil, err
	}
	p.encoded = buf.Bytes()
	return p.encoded, nil
}

// Clear wipes the bitmap and the stored serialization, from either state.
func (p *Pad) Clear() {
	p.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	p.encoded = nil
	p.inked = false
	p.state = StateIdle
}

// Encoded returns the committed PNG, or nil when no stroke was captured.
func (p *Pad) Encoded() []byte {
	return p.encoded
}

func (p *Pad) State() State {
	return p.state
}

// Image exposes the backing bitmap for inspection.
func (p *Pad) Image() *image.RGBA {
	return p.img
}

// sample maps a client point onto the bitmap:
// (client - surface origin) * (bitmap size / display size).
// The scale factor is mandatory; without it strokes drift from the pointer
// whenever the surface is not rendered at its native pixel size.
func (p *Pad) sample(pt ClientPoint) PointerSample {
	scaleX, scaleY := 1.0, 1.0
	if p.geom.DisplayWidth > 0 {
		scaleX = float64(p.width) / p.geom.DisplayWidth
	}
	if p.geom.DisplayHeight > 0 {
		scaleY = float64(p.height) / p.geom.DisplayHeight
	}
	return PointerSample{
		X: (pt.X - p.geom.OriginX) * scaleX,
		Y: (pt.Y - p.geom.OriginY) * scaleY,
	}
}

// drawSegment lays ink between two samples by stamping overlapping discs,
// which gives the fixed stroke width and the rounded caps and joins in one
// mechanism.
func (p *Pad) drawSegment(from, to PointerSample) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)

	steps := int(dist*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.stampDisc(PointerSample{X: from.X + dx*t, Y: from.Y + dy*t})
	}
}

func (p *Pad) stampDisc(center PointerSample) {
	radius := p.stroke / 2
	minX := int(math.Floor(center.X - radius))
	maxX := int(math.Ceil(center.X + radius))
	minY := int(math.Floor(center.Y - radius))
	maxY := int(math.Ceil(center.Y + radius))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < 0 || y < 0 || x >= p.width || y >= p.height {
				continue
			}
			cx := float64(x) + 0.5 - center.X
			cy := float64(y) + 0.5 - center.Y
			if math.Hypot(cx, cy) <= radius {
				p.img.SetRGBA(x, y, ink)
			}
		}
	}
}
