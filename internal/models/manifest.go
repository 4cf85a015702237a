package models

import (
	"database/sql"
	"time"
)

// Digitization states for a manifest. The state is derived once at insert
// time from the presence of a document URL and never recomputed afterwards.
const (
	DigitizationPending   = "pending"
	DigitizationCompleted = "completed"
)

// Signing roles accepted on a submission.
const (
	RolePrincipalOperator = "principal_operator"
	RoleSecondaryOperator = "secondary_operator"
	RoleReceivingOfficial = "receiving_official"
)

type Vessel struct {
	ID               int64
	Name             string
	RegistrationCode sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type PersonCategory struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Person struct {
	ID         int64
	Name       string
	CategoryID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Manifest struct {
	ID                 int64
	Number             string
	IssueDate          time.Time
	VesselID           int64
	PrincipalID        int64
	SecondaryID        sql.NullInt64
	Notes              sql.NullString
	DigitizationStatus string
	ScanURL            sql.NullString
	DocumentURL        sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ResidueBreakdown is the five-field waste-quantity record owned by a
// manifest. Fields are never null in the database; omitted values persist
// as zero so aggregate queries stay arithmetic-safe.
type ResidueBreakdown struct {
	ID                int64
	ManifestID        int64
	UsedOilLiters     float64
	OilFilterCount    int64
	DieselFilterCount int64
	AirFilterCount    int64
	GeneralWasteKg    float64
}

// ManifestRecord is a manifest row joined with the display names of its
// referenced vessel and persons, as returned by the list query. Names are
// null when the referenced row has gone missing; the filter engine falls
// back to the cached entity lists in that case.
type ManifestRecord struct {
	Manifest
	VesselName    sql.NullString
	PrincipalName sql.NullString
	SecondaryName sql.NullString
	Breakdown     *ResidueBreakdown
}
