package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ManifestResponse struct {
	ID                 int64            `json:"id"`
	Number             string           `json:"number"`
	IssueDate          string           `json:"issue_date"`
	VesselID           int64            `json:"vessel_id"`
	VesselName         string           `json:"vessel_name,omitempty"`
	PrincipalID        int64            `json:"principal_id"`
	PrincipalName      string           `json:"principal_name,omitempty"`
	SecondaryID        int64            `json:"secondary_id,omitempty"`
	SecondaryName      string           `json:"secondary_name,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	DigitizationStatus string           `json:"digitization_status"`
	ScanURL            string           `json:"scan_url,omitempty"`
	DocumentURL        string           `json:"document_url,omitempty"`
	Residues           *ResidueResponse `json:"residues,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type ResidueResponse struct {
	UsedOilLiters     float64 `json:"used_oil_liters"`
	OilFilterCount    int64   `json:"oil_filter_count"`
	DieselFilterCount int64   `json:"diesel_filter_count"`
	AirFilterCount    int64   `json:"air_filter_count"`
	GeneralWasteKg    float64 `json:"general_waste_kg"`
}

type ManifestListResponse struct {
	Manifests []ManifestResponse `json:"manifests"`
}

type VesselResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	RegistrationCode string    `json:"registration_code,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type VesselListResponse struct {
	Vessels []VesselResponse `json:"vessels"`
}

type PersonResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID int64     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type PersonListResponse struct {
	Persons []PersonResponse `json:"persons"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
