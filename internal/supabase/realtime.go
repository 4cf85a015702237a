package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Supabase Go client has no direct Realtime publish; row changes on
	// the manifests table trigger Realtime automatically. This stays as the
	// seam for explicit event publishing via the Realtime REST API.
	return nil
}

func (r *RealtimeClient) PublishManifestEvent(manifestID int64, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("manifest:%d", manifestID)
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func ManifestSubmittedPayload(manifestID int64, number string) map[string]interface{} {
	return map[string]interface{}{
		"manifest_id": manifestID,
		"number":      number,
		"status":      "submitted",
	}
}

func DocumentsUploadedPayload(manifestID int64, scanURL, documentURL string) map[string]interface{} {
	payload := map[string]interface{}{
		"manifest_id": manifestID,
		"status":      "documents_uploaded",
	}
	if scanURL != "" {
		payload["scan_url"] = scanURL
	}
	if documentURL != "" {
		payload["document_url"] = documentURL
	}
	return payload
}

func ManifestDeletedPayload(manifestID int64, number string) map[string]interface{} {
	return map[string]interface{}{
		"manifest_id": manifestID,
		"number":      number,
		"status":      "deleted",
	}
}
