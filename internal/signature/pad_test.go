package signature

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawGesture(pad *Pad, geom Geometry, normalized []PointerSample) ([]byte, error) {
	for i, pt := range normalized {
		client := ClientPoint{
			X: geom.OriginX + pt.X*geom.DisplayWidth,
			Y: geom.OriginY + pt.Y*geom.DisplayHeight,
		}
		if i == 0 {
			pad.Begin(client)
		} else {
			pad.Extend(client)
		}
	}
	return pad.Commit()
}

// The same gesture drawn on a surface rendered at native size and at double
// size must produce the identical bitmap; that is the whole point of the
// client-to-bitmap mapping.
func TestScaleFidelity(t *testing.T) {
	gesture := []PointerSample{
		{X: 0.1, Y: 0.2},
		{X: 0.4, Y: 0.5},
		{X: 0.8, Y: 0.3},
	}

	native := Geometry{OriginX: 10, OriginY: 20, DisplayWidth: 320, DisplayHeight: 160}
	doubled := Geometry{OriginX: 500, OriginY: 80, DisplayWidth: 640, DisplayHeight: 320}

	first, err := drawGesture(NewInlinePad(native), native, gesture)
	require.NoError(t, err)
	second, err := drawGesture(NewInlinePad(doubled), doubled, gesture)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// Extending must advance the segment start point: an L-shaped gesture leaves
// ink along the path, not along chords back to the original pointer-down.
func TestExtendDrawsPathNotFan(t *testing.T) {
	geom := Geometry{DisplayWidth: 320, DisplayHeight: 160}
	pad := NewInlinePad(geom)

	// Down at (40,20), right to (120,20), then down to (120,100)
	pad.Begin(ClientPoint{X: 40, Y: 20})
	pad.Extend(ClientPoint{X: 120, Y: 20})
	pad.Extend(ClientPoint{X: 120, Y: 100})
	_, err := pad.Commit()
	require.NoError(t, err)

	img := pad.Image()
	inkedAt := func(x, y int) bool {
		return img.RGBAAt(x, y).A != 0
	}

	// Midpoints of the two legs carry ink
	assert.True(t, inkedAt(80, 20))
	assert.True(t, inkedAt(120, 60))
	// The chord midpoint between the corner-start and the endpoint does not
	assert.False(t, inkedAt(80, 60))
}

func TestCommitEncodesPadSizedPNG(t *testing.T) {
	tests := []struct {
		name   string
		pad    *Pad
		width  int
		height int
	}{
		{"inline", NewInlinePad(Geometry{DisplayWidth: 320, DisplayHeight: 160}), 320, 160},
		{"modal", NewModalPad(Geometry{DisplayWidth: 760, DisplayHeight: 380}), 760, 380},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.pad.Begin(ClientPoint{X: 50, Y: 50})
			tt.pad.Extend(ClientPoint{X: 90, Y: 70})
			data, err := tt.pad.Commit()
			require.NoError(t, err)
			require.NotEmpty(t, data)

			decoded, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			bounds := decoded.Bounds()
			assert.Equal(t, tt.width, bounds.Dx())
			assert.Equal(t, tt.height, bounds.Dy())
		})
	}
}

func TestCommitWithoutInkReturnsNil(t *testing.T) {
	pad := NewInlinePad(Geometry{DisplayWidth: 320, DisplayHeight: 160})

	data, err := pad.Commit()
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Nil(t, pad.Encoded())
}

func TestTapLeavesDot(t *testing.T) {
	pad := NewInlinePad(Geometry{DisplayWidth: 320, DisplayHeight: 160})

	pad.Begin(ClientPoint{X: 100, Y: 80})
	data, err := pad.Commit()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.NotZero(t, pad.Image().RGBAAt(100, 80).A)
}

func TestClearWipesEverything(t *testing.T) {
	pad := NewInlinePad(Geometry{DisplayWidth: 320, DisplayHeight: 160})

	pad.Begin(ClientPoint{X: 100, Y: 80})
	_, err := pad.Commit()
	require.NoError(t, err)
	require.NotNil(t, pad.Encoded())

	pad.Clear()
	assert.Nil(t, pad.Encoded())
	assert.Equal(t, StateIdle, pad.State())
	assert.Zero(t, pad.Image().RGBAAt(100, 80).A)

	// Clear is also legal mid-stroke
	pad.Begin(ClientPoint{X: 10, Y: 10})
	pad.Clear()
	assert.Equal(t, StateIdle, pad.State())
}

func TestReframeOnlyBetweenStrokes(t *testing.T) {
	initial := Geometry{DisplayWidth: 320, DisplayHeight: 160}
	resized := Geometry{OriginX: 5, OriginY: 5, DisplayWidth: 640, DisplayHeight: 320}
	pad := NewInlinePad(initial)

	pad.Begin(ClientPoint{X: 10, Y: 10})
	pad.Reframe(resized)
	assert.Equal(t, initial, pad.geom)

	_, err := pad.Commit()
	require.NoError(t, err)
	pad.Reframe(resized)
	assert.Equal(t, resized, pad.geom)
}

func TestExtendIgnoredWhenIdle(t *testing.T) {
	pad := NewInlinePad(Geometry{DisplayWidth: 320, DisplayHeight: 160})

	pad.Extend(ClientPoint{X: 100, Y: 80})
	data, err := pad.Commit()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMouseAdapter(t *testing.T) {
	adapter := MouseAdapter{}

	pt, ok := adapter.Point(MouseEvent{ClientX: 12, ClientY: 34})
	assert.True(t, ok)
	assert.Equal(t, ClientPoint{X: 12, Y: 34}, pt)
	assert.False(t, adapter.SuppressDefault())
}

func TestTouchAdapter(t *testing.T) {
	adapter := TouchAdapter{}

	_, ok := adapter.Point(TouchEvent{})
	assert.False(t, ok)

	pt, ok := adapter.Point(TouchEvent{Touches: []Touch{
		{ClientX: 12, ClientY: 34},
		{ClientX: 99, ClientY: 99},
	}})
	assert.True(t, ok)
	assert.Equal(t, ClientPoint{X: 12, Y: 34}, pt)
	assert.True(t, adapter.SuppressDefault())
}
