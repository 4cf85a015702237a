package renderer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the external document renderer: manifest data plus
// signature images in, a binary document blob out. The renderer has no side
// effects of its own and is allowed to fail without sinking a submission.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type RenderRequest struct {
	Number        string            `json:"number"`
	IssueDate     string            `json:"issue_date"`
	VesselName    string            `json:"vessel_name"`
	PrincipalName string            `json:"principal_name"`
	SecondaryName string            `json:"secondary_name,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Residues      RenderResidues    `json:"residues"`
	Signatures    map[string]string `json:"signatures,omitempty"` // role -> base64 PNG
}

type RenderResidues struct {
	UsedOilLiters     float64 `json:"used_oil_liters"`
	OilFilterCount    int64   `json:"oil_filter_count"`
	DieselFilterCount int64   `json:"diesel_filter_count"`
	AirFilterCount    int64   `json:"air_filter_count"`
	GeneralWasteKg    float64 `json:"general_waste_kg"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EncodeSignature prepares a raw PNG for the render payload.
func EncodeSignature(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// RenderManifest produces the official manifest document as a PDF blob.
func (c *Client) RenderManifest(req RenderRequest) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("renderer is not configured")
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/render/manifest"

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to render manifest: status %d, body: %s", resp.StatusCode, string(body))
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("renderer returned an empty document")
	}

	return body, nil
}
