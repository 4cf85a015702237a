package models

import "time"

// CreateManifestRequest is the JSON part of the multipart submission. The
// scanned file, when present, travels as a separate file part.
type CreateManifestRequest struct {
	IssueDate string `json:"issue_date" binding:"required"` // YYYY-MM-DD
	Number    string `json:"number,omitempty"`              // pre-assigned draft number, never recomputed

	VesselID   int64  `json:"vessel_id,omitempty"`
	VesselName string `json:"vessel_name,omitempty"`

	PrincipalID       int64  `json:"principal_id,omitempty"`
	PrincipalName     string `json:"principal_name,omitempty"`
	PrincipalCategory string `json:"principal_category,omitempty"`

	SecondaryID       int64  `json:"secondary_id,omitempty"`
	SecondaryName     string `json:"secondary_name,omitempty"`
	SecondaryCategory string `json:"secondary_category,omitempty"`

	Notes string `json:"notes,omitempty"`

	Residues   ResidueInput       `json:"residues"`
	Signatures []SignatureRequest `json:"signatures,omitempty"`
}

type UpdateManifestRequest struct {
	IssueDate   string       `json:"issue_date,omitempty"`
	VesselID    int64        `json:"vessel_id,omitempty"`
	PrincipalID int64        `json:"principal_id,omitempty"`
	SecondaryID int64        `json:"secondary_id,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	Residues    *ResidueInput `json:"residues,omitempty"`
}

// ResidueInput uses pointers so an omitted field is distinguishable from an
// explicit zero; both persist as zero.
type ResidueInput struct {
	UsedOilLiters     *float64 `json:"used_oil_liters,omitempty"`
	OilFilterCount    *int64   `json:"oil_filter_count,omitempty"`
	DieselFilterCount *int64   `json:"diesel_filter_count,omitempty"`
	AirFilterCount    *int64   `json:"air_filter_count,omitempty"`
	GeneralWasteKg    *float64 `json:"general_waste_kg,omitempty"`
}

// SignatureRequest carries one signing role's capture. Either an already
// encoded PNG (base64) or the raw pointer history of a capture session; when
// both are present the encoded image wins.
type SignatureRequest struct {
	Role    string          `json:"role" binding:"required"`
	Image   string          `json:"image,omitempty"`
	Strokes []StrokeSession `json:"strokes,omitempty"`
	Modal   bool            `json:"modal,omitempty"` // captured on the full-size modal pad
}

// StrokeSession is one uninterrupted pointer-down → pointer-up gesture,
// together with the on-screen geometry of the surface it was drawn on.
type StrokeSession struct {
	Surface SurfaceGeometry `json:"surface"`
	Events  []PointerEvent  `json:"events"`
}

type SurfaceGeometry struct {
	OriginX       float64 `json:"origin_x"`
	OriginY       float64 `json:"origin_y"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

type PointerEvent struct {
	Type    string  `json:"type"`   // down | move | up
	Source  string  `json:"source"` // mouse | touch
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
}

type CreateVesselRequest struct {
	Name             string `json:"name" binding:"required"`
	RegistrationCode string `json:"registration_code,omitempty"`
}

type CreatePersonRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// ManifestSubmission is the explicit, serializable payload handed by value
// into the intake pipeline. The pipeline holds no state between calls;
// everything it needs rides in here.
type ManifestSubmission struct {
	IssueDate time.Time
	Number    string

	VesselID   int64
	VesselName string

	PrincipalID       int64
	PrincipalName     string
	PrincipalCategory string

	SecondaryID       int64
	SecondaryName     string
	SecondaryCategory string

	Notes    string
	Residues ResidueInput

	Scan       *Attachment
	Signatures map[string][]byte // role -> encoded PNG
}

// Attachment is the scanned file the user explicitly attached.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}
