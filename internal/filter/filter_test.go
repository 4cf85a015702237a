package filter

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LuisMario698/dck-backend/internal/models"
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func record(id int64, number string, issueDate time.Time, vesselID int64, vesselName string, principalID int64, principalName string) models.ManifestRecord {
	r := models.ManifestRecord{}
	r.ID = id
	r.Number = number
	r.IssueDate = issueDate
	r.VesselID = vesselID
	r.PrincipalID = principalID
	if vesselName != "" {
		r.VesselName = nullStr(vesselName)
	}
	if principalName != "" {
		r.PrincipalName = nullStr(principalName)
	}
	return r
}

func snapshot() []models.ManifestRecord {
	return []models.ManifestRecord{
		record(3, "MAN14032025 002", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 1, "Nueva Lancha", 7, "Juan Perez"),
		record(2, "MAN14032025 001", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 2, "La Perla", 8, "Pedro Lopez"),
		record(1, "MAN10012025 001", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), 1, "Nueva Lancha", 8, "Pedro Lopez"),
	}
}

func ids(records []models.ManifestRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestApplyNoCriteriaKeepsOrder(t *testing.T) {
	out := Apply(snapshot(), Criteria{Dimension: DimensionAll}, Directory{})
	assert.Equal(t, []int64{3, 2, 1}, ids(out))
}

func TestVesselDimension(t *testing.T) {
	out := Apply(snapshot(), Criteria{Dimension: DimensionVessel, VesselID: 1}, Directory{})
	assert.Equal(t, []int64{3, 1}, ids(out))
}

func TestVesselDimensionScopesQuery(t *testing.T) {
	// "perla" matches the vessel name of record 2 but also nothing else;
	// "pedro" matches a principal, which the vessel dimension must not see
	out := Apply(snapshot(), Criteria{Dimension: DimensionVessel, Query: "perla"}, Directory{})
	assert.Equal(t, []int64{2}, ids(out))

	out = Apply(snapshot(), Criteria{Dimension: DimensionVessel, Query: "pedro"}, Directory{})
	assert.Empty(t, out)
}

func TestFreeTextSearchesAcrossFields(t *testing.T) {
	// Matches record 2 by vessel name and records 2,1 by principal name
	out := Apply(snapshot(), Criteria{Dimension: DimensionAll, Query: "pedro"}, Directory{})
	assert.Equal(t, []int64{2, 1}, ids(out))

	// Number substring reaches everything issued on 14-03
	out = Apply(snapshot(), Criteria{Dimension: DimensionAll, Query: "MAN1403"}, Directory{})
	assert.Equal(t, []int64{3, 2}, ids(out))
}

func TestQueryIsCaseInsensitive(t *testing.T) {
	out := Apply(snapshot(), Criteria{Dimension: DimensionAll, Query: "nueva LANCHA"}, Directory{})
	assert.Equal(t, []int64{3, 1}, ids(out))
}

func TestNumberDimensionSubstring(t *testing.T) {
	out := Apply(snapshot(), Criteria{Dimension: DimensionNumber, Number: "025 001"}, Directory{})
	assert.Equal(t, []int64{2, 1}, ids(out))
}

func TestDateRangeInclusiveBounds(t *testing.T) {
	crit := Criteria{
		Dimension: DimensionDateRange,
		From:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	out := Apply(snapshot(), crit, Directory{})
	assert.Equal(t, []int64{3, 2, 1}, ids(out))

	// Moving To one day earlier drops the 14-03 manifests
	crit.To = time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	out = Apply(snapshot(), crit, Directory{})
	assert.Equal(t, []int64{1}, ids(out))

	// Open-ended From
	crit = Criteria{Dimension: DimensionDateRange, To: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}
	out = Apply(snapshot(), crit, Directory{})
	assert.Equal(t, []int64{1}, ids(out))
}

func TestDateRangeQueryMatchesDateText(t *testing.T) {
	out := Apply(snapshot(), Criteria{Dimension: DimensionDateRange, Query: "2025-03"}, Directory{})
	assert.Equal(t, []int64{3, 2}, ids(out))
}

func TestDirectoryFallbackForMissingNames(t *testing.T) {
	// A freshly created manifest may come back without its embedded names
	snap := []models.ManifestRecord{record(9, "MAN01062025 001", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 4, "", 11, "")}
	dir := Directory{
		Vessels: map[int64]string{4: "Marlin Azul"},
		Persons: map[int64]string{11: "Rosa Diaz"},
	}

	out := Apply(snap, Criteria{Dimension: DimensionAll, Query: "marlin"}, dir)
	assert.Equal(t, []int64{9}, ids(out))

	out = Apply(snap, Criteria{Dimension: DimensionPrincipal, Query: "rosa"}, dir)
	assert.Equal(t, []int64{9}, ids(out))

	// Without the directory the row is simply not matched
	out = Apply(snap, Criteria{Dimension: DimensionAll, Query: "marlin"}, Directory{})
	assert.Empty(t, out)
}

func TestSecondaryDimensionRequiresSecondary(t *testing.T) {
	snap := snapshot()
	snap[0].SecondaryID = sql.NullInt64{Int64: 12, Valid: true}
	snap[0].SecondaryName = nullStr("Luis Vega")

	out := Apply(snap, Criteria{Dimension: DimensionSecondary, SecondaryID: 12}, Directory{})
	assert.Equal(t, []int64{3}, ids(out))

	// Query on the secondary dimension ignores rows without one
	out = Apply(snap, Criteria{Dimension: DimensionSecondary, Query: "luis"}, Directory{})
	assert.Equal(t, []int64{3}, ids(out))
}

func TestApplyDoesNotMutateSnapshot(t *testing.T) {
	snap := snapshot()
	Apply(snap, Criteria{Dimension: DimensionAll, Query: "pedro"}, Directory{})
	assert.Equal(t, []int64{3, 2, 1}, ids(snap))
}
