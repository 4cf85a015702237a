package handlers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/LuisMario698/dck-backend/internal/models"
	"github.com/LuisMario698/dck-backend/internal/signature"
)

// collectSignatures turns the per-role signature requests into raster blobs.
// A request carries either an already encoded PNG or the raw pointer history
// of the capture session; stroke histories are replayed through the capture
// pad so the stored raster is identical to what the signer saw.
func collectSignatures(requests []models.SignatureRequest) (map[string][]byte, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	signatures := make(map[string][]byte)
	for _, req := range requests {
		switch req.Role {
		case models.RolePrincipalOperator, models.RoleSecondaryOperator, models.RoleReceivingOfficial:
		default:
			return nil, fmt.Errorf("unknown signing role %q", req.Role)
		}

		var data []byte
		var err error
		if req.Image != "" {
			data, err = decodeSignatureImage(req.Image)
		} else {
			data, err = rasterizeStrokes(req)
		}
		if err != nil {
			return nil, fmt.Errorf("signature for %s: %w", req.Role, err)
		}
		if len(data) > 0 {
			signatures[req.Role] = data
		}
	}

	if len(signatures) == 0 {
		return nil, nil
	}
	return signatures, nil
}

func decodeSignatureImage(encoded string) ([]byte, error) {
	// Accept both a bare base64 string and a data URL
	if idx := strings.Index(encoded, "base64,"); idx >= 0 {
		encoded = encoded[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, nil
}

// rasterizeStrokes replays the recorded pointer sessions on a capture pad.
// Each session is one pointer-down → pointer-up gesture; its surface
// geometry rides along so the scale correction matches the capture moment.
func rasterizeStrokes(req models.SignatureRequest) ([]byte, error) {
	if len(req.Strokes) == 0 {
		return nil, nil
	}

	var pad *signature.Pad
	mouse := signature.MouseAdapter{}
	touch := signature.TouchAdapter{}

	for _, session := range req.Strokes {
		geom := signature.Geometry{
			OriginX:       session.Surface.OriginX,
			OriginY:       session.Surface.OriginY,
			DisplayWidth:  session.Surface.DisplayWidth,
			DisplayHeight: session.Surface.DisplayHeight,
		}
		if pad == nil {
			if req.Modal {
				pad = signature.NewModalPad(geom)
			} else {
				pad = signature.NewInlinePad(geom)
			}
		} else {
			pad.Reframe(geom)
		}

		for _, event := range session.Events {
			var pt signature.ClientPoint
			var ok bool
			switch event.Source {
			case "touch":
				pt, ok = touch.Point(signature.TouchEvent{
					Touches: []signature.Touch{{ClientX: event.ClientX, ClientY: event.ClientY}},
				})
			default:
				pt, ok = mouse.Point(signature.MouseEvent{ClientX: event.ClientX, ClientY: event.ClientY})
			}
			if !ok {
				continue
			}

			switch event.Type {
			case "down":
				pad.Begin(pt)
			case "move":
				pad.Extend(pt)
			case "up":
				if _, err := pad.Commit(); err != nil {
					return nil, fmt.Errorf("failed to encode signature: %w", err)
				}
			default:
				return nil, fmt.Errorf("unknown pointer event type %q", event.Type)
			}
		}

		// A session that ended without an explicit up (pointer-leave) still commits
		if pad.State() == signature.StateDrawing {
			if _, err := pad.Commit(); err != nil {
				return nil, fmt.Errorf("failed to encode signature: %w", err)
			}
		}
	}

	return pad.Encoded(), nil
}
