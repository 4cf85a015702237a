// Package filter applies the user-selected manifest filters over an
// in-memory snapshot of the collection. The snapshot is owned by the
// presentation layer; filtering never mutates or re-sorts it.
package filter

import (
	"database/sql"
	"strings"
	"time"

	"github.com/LuisMario698/dck-backend/internal/models"
)

type Dimension string

const (
	DimensionAll       Dimension = "all"
	DimensionVessel    Dimension = "vessel"
	DimensionPrincipal Dimension = "principal"
	DimensionSecondary Dimension = "secondary"
	DimensionDateRange Dimension = "date_range"
	DimensionNumber    Dimension = "number"
)

// Criteria is one active filter dimension plus the orthogonal free-text
// query. The query's meaning depends on the dimension: with no dimension it
// searches across number and all party names; with one active it searches
// only that dimension's display field.
type Criteria struct {
	Dimension   Dimension
	VesselID    int64
	PrincipalID int64
	SecondaryID int64
	From        time.Time
	To          time.Time
	Number      string
	Query       string
}

// Directory holds the locally cached entity name lists. Freshly created
// records may not yet carry their embedded relation name; the filter falls
// back to these so such rows are not silently excluded.
type Directory struct {
	Vessels map[int64]string
	Persons map[int64]string
}

// Apply returns the subsequence of the snapshot satisfying the criteria, in
// the snapshot's own order (newest-first as produced by the fetch).
func Apply(snapshot []models.ManifestRecord, crit Criteria, dir Directory) []models.ManifestRecord {
	query := strings.TrimSpace(crit.Query)

	var out []models.ManifestRecord
	for _, record := range snapshot {
		if !matchesDimension(record, crit) {
			continue
		}
		if query != "" && !matchesQuery(record, crit.Dimension, query, dir) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func matchesDimension(r models.ManifestRecord, crit Criteria) bool {
	switch crit.Dimension {
	case DimensionVessel:
		return crit.VesselID == 0 || r.VesselID == crit.VesselID
	case DimensionPrincipal:
		return crit.PrincipalID == 0 || r.PrincipalID == crit.PrincipalID
	case DimensionSecondary:
		return crit.SecondaryID == 0 || (r.SecondaryID.Valid && r.SecondaryID.Int64 == crit.SecondaryID)
	case DimensionDateRange:
		return inRange(r.IssueDate, crit.From, crit.To)
	case DimensionNumber:
		return crit.Number == "" || containsFold(r.Number, crit.Number)
	default:
		return true
	}
}

// inRange applies inclusive day-level bounds: From is normalized to the
// start of its day, To to the end of its day.
func inRange(date, from, to time.Time) bool {
	if !from.IsZero() {
		start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
		if date.Before(start) {
			return false
		}
	}
	if !to.IsZero() {
		end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
		if date.After(end) {
			return false
		}
	}
	return true
}

func matchesQuery(r models.ManifestRecord, dim Dimension, query string, dir Directory) bool {
	switch dim {
	case DimensionVessel:
		return containsFold(vesselName(r, dir), query)
	case DimensionPrincipal:
		return containsFold(personName(r.PrincipalName, r.PrincipalID, dir), query)
	case DimensionSecondary:
		if !r.SecondaryID.Valid {
			return false
		}
		return containsFold(personName(r.SecondaryName, r.SecondaryID.Int64, dir), query)
	case DimensionDateRange:
		return containsFold(r.IssueDate.Format("2006-01-02"), query)
	case DimensionNumber:
		return containsFold(r.Number, query)
	default:
		// No dimension active: OR across number and all party display names
		if containsFold(r.Number, query) {
			return true
		}
		if containsFold(vesselName(r, dir), query) {
			return true
		}
		if containsFold(personName(r.PrincipalName, r.PrincipalID, dir), query) {
			return true
		}
		if r.SecondaryID.Valid && containsFold(personName(r.SecondaryName, r.SecondaryID.Int64, dir), query) {
			return true
		}
		return false
	}
}

func vesselName(r models.ManifestRecord, dir Directory) string {
	if r.VesselName.Valid && r.VesselName.String != "" {
		return r.VesselName.String
	}
	return dir.Vessels[r.VesselID]
}

func personName(embedded sql.NullString, id int64, dir Directory) string {
	if embedded.Valid && embedded.String != "" {
		return embedded.String
	}
	return dir.Persons[id]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
