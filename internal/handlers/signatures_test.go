package handlers

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisMario698/dck-backend/internal/models"
)

func strokeSession(displayWidth, displayHeight float64, events ...models.PointerEvent) models.StrokeSession {
	return models.StrokeSession{
		Surface: models.SurfaceGeometry{DisplayWidth: displayWidth, DisplayHeight: displayHeight},
		Events:  events,
	}
}

func TestCollectSignaturesEmpty(t *testing.T) {
	signatures, err := collectSignatures(nil)
	require.NoError(t, err)
	assert.Nil(t, signatures)
}

func TestCollectSignaturesRejectsUnknownRole(t *testing.T) {
	_, err := collectSignatures([]models.SignatureRequest{{Role: "witness"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signing role")
}

func TestCollectSignaturesDecodesImage(t *testing.T) {
	raw := []byte("png-bytes")
	encoded := base64.StdEncoding.EncodeToString(raw)

	for _, image := range []string{encoded, "data:image/png;base64," + encoded} {
		signatures, err := collectSignatures([]models.SignatureRequest{{
			Role:  models.RolePrincipalOperator,
			Image: image,
		}})
		require.NoError(t, err)
		assert.Equal(t, raw, signatures[models.RolePrincipalOperator])
	}
}

func TestCollectSignaturesInvalidBase64(t *testing.T) {
	_, err := collectSignatures([]models.SignatureRequest{{
		Role:  models.RolePrincipalOperator,
		Image: "not base64!!",
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.RolePrincipalOperator)
}

func TestRasterizeStrokesInlinePad(t *testing.T) {
	data, err := rasterizeStrokes(models.SignatureRequest{
		Role: models.RolePrincipalOperator,
		Strokes: []models.StrokeSession{strokeSession(320, 160,
			models.PointerEvent{Type: "down", Source: "mouse", ClientX: 40, ClientY: 40},
			models.PointerEvent{Type: "move", Source: "mouse", ClientX: 120, ClientY: 60},
			models.PointerEvent{Type: "up", Source: "mouse", ClientX: 120, ClientY: 60},
		)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
}

func TestRasterizeStrokesModalPad(t *testing.T) {
	data, err := rasterizeStrokes(models.SignatureRequest{
		Role:  models.RoleReceivingOfficial,
		Modal: true,
		Strokes: []models.StrokeSession{strokeSession(760, 380,
			models.PointerEvent{Type: "down", Source: "touch", ClientX: 100, ClientY: 100},
			models.PointerEvent{Type: "move", Source: "touch", ClientX: 300, ClientY: 200},
			models.PointerEvent{Type: "up", Source: "touch", ClientX: 300, ClientY: 200},
		)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 760, img.Bounds().Dx())
	assert.Equal(t, 380, img.Bounds().Dy())
}

// A session cut short by pointer-leave has no up event; the stroke still
// commits when the session ends.
func TestRasterizeStrokesImplicitCommit(t *testing.T) {
	data, err := rasterizeStrokes(models.SignatureRequest{
		Role: models.RolePrincipalOperator,
		Strokes: []models.StrokeSession{strokeSession(320, 160,
			models.PointerEvent{Type: "down", Source: "mouse", ClientX: 40, ClientY: 40},
			models.PointerEvent{Type: "move", Source: "mouse", ClientX: 80, ClientY: 50},
		)},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRasterizeStrokesUnknownEventType(t *testing.T) {
	_, err := rasterizeStrokes(models.SignatureRequest{
		Role: models.RolePrincipalOperator,
		Strokes: []models.StrokeSession{strokeSession(320, 160,
			models.PointerEvent{Type: "hover", Source: "mouse", ClientX: 40, ClientY: 40},
		)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pointer event type")
}

func TestRasterizeStrokesNoSessions(t *testing.T) {
	data, err := rasterizeStrokes(models.SignatureRequest{Role: models.RolePrincipalOperator})
	require.NoError(t, err)
	assert.Nil(t, data)
}
