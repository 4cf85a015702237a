package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/LuisMario698/dck-backend/internal/models"
)

// ErrDuplicateNumber is returned when a manifest insert collides with an
// existing number. The intake pipeline recounts and retries on it.
var ErrDuplicateNumber = errors.New("manifest number already exists")

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// CountManifestsOnDate counts manifests whose issue date equals the given
// calendar day. Backs the read-then-derive numbering scheme.
func (d *DatabaseClient) CountManifestsOnDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM manifests WHERE issue_date = $1
	`, date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count manifests for date: %w", err)
	}
	return count, nil
}

func (d *DatabaseClient) CreateManifest(ctx context.Context, m *models.Manifest) (*models.Manifest, error) {
	var out models.Manifest
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO manifests (number, issue_date, vessel_id, principal_id, secondary_id, notes, digitization_status, scan_url, document_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, number, issue_date, vessel_id, principal_id, secondary_id, notes, digitization_status, scan_url, document_url, created_at, updated_at
	`, m.Number, m.IssueDate.Format("2006-01-02"), m.VesselID, m.PrincipalID, m.SecondaryID,
		m.Notes, m.DigitizationStatus, m.ScanURL, m.DocumentURL).Scan(
		&out.ID, &out.Number, &out.IssueDate, &out.VesselID, &out.PrincipalID, &out.SecondaryID,
		&out.Notes, &out.DigitizationStatus, &out.ScanURL, &out.DocumentURL, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to create manifest: %w", err)
	}

	return &out, nil
}

func (d *DatabaseClient) GetManifest(ctx context.Context, id int64) (*models.ManifestRecord, error) {
	row := d.db.QueryRowContext(ctx, manifestSelect+`
		WHERE m.id = $1
	`, id)

	record, err := scanManifestRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}

	breakdown, err := d.GetResidueBreakdown(ctx, id)
	if err == nil {
		record.Breakdown = breakdown
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return record, nil
}

// ListManifests returns the full collection newest-first, each row joined
// with its entity display names and breakdown.
func (d *DatabaseClient) ListManifests(ctx context.Context) ([]models.ManifestRecord, error) {
	rows, err := d.db.QueryContext(ctx, manifestSelect+`
		ORDER BY m.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}
	defer rows.Close()

	var records []models.ManifestRecord
	ids := make([]int64, 0)
	for rows.Next() {
		record, err := scanManifestRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manifest: %w", err)
		}
		records = append(records, *record)
		ids = append(ids, record.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	if len(ids) > 0 {
		breakdowns, err := d.residueBreakdownsByManifestIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range records {
			if b, ok := breakdowns[records[i].ID]; ok {
				records[i].Breakdown = b
			}
		}
	}

	return records, nil
}

func (d *DatabaseClient) UpdateManifest(ctx context.Context, m *models.Manifest) error {
	result, err := d.db.ExecContext(ctx, `
		UPDATE manifests
		SET issue_date = $1, vessel_id = $2, principal_id = $3, secondary_id = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
	`, m.IssueDate.Format("2006-01-02"), m.VesselID, m.PrincipalID, m.SecondaryID, m.Notes, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update manifest: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteManifest removes the manifest row. The residue breakdown goes with
// it via the ON DELETE CASCADE constraint on residue_breakdowns.manifest_id.
func (d *DatabaseClient) DeleteManifest(ctx context.Context, id int64) error {
	result, err := d.db.ExecContext(ctx, `
		DELETE FROM manifests WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete manifest: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertResidueBreakdown inserts the breakdown for a manifest, or updates it
// in place when one already exists. A manifest that somehow lacks a
// breakdown row gets one created rather than the update silently no-oping.
func (d *DatabaseClient) UpsertResidueBreakdown(ctx context.Context, b *models.ResidueBreakdown) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO residue_breakdowns (manifest_id, used_oil_liters, oil_filter_count, diesel_filter_count, air_filter_count, general_waste_kg)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (manifest_id) DO UPDATE
		SET used_oil_liters = EXCLUDED.used_oil_liters,
		    oil_filter_count = EXCLUDED.oil_filter_count,
		    diesel_filter_count = EXCLUDED.diesel_filter_count,
		    air_filter_count = EXCLUDED.air_filter_count,
		    general_waste_kg = EXCLUDED.general_waste_kg
		RETURNING id
	`, b.ManifestID, b.UsedOilLiters, b.OilFilterCount, b.DieselFilterCount,
		b.AirFilterCount, b.GeneralWasteKg).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert residue breakdown: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetResidueBreakdown(ctx context.Context, manifestID int64) (*models.ResidueBreakdown, error) {
	var b models.ResidueBreakdown
	err := d.db.QueryRowContext(ctx, `
		SELECT id, manifest_id, used_oil_liters, oil_filter_count, diesel_filter_count, air_filter_count, general_waste_kg
		FROM residue_breakdowns
		WHERE manifest_id = $1
	`, manifestID).Scan(
		&b.ID, &b.ManifestID, &b.UsedOilLiters, &b.OilFilterCount,
		&b.DieselFilterCount, &b.AirFilterCount, &b.GeneralWasteKg,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get residue breakdown: %w", err)
	}
	return &b, nil
}

func (d *DatabaseClient) residueBreakdownsByManifestIDs(ctx context.Context, ids []int64) (map[int64]*models.ResidueBreakdown, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, manifest_id, used_oil_liters, oil_filter_count, diesel_filter_count, air_filter_count, general_waste_kg
		FROM residue_breakdowns
		WHERE manifest_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get residue breakdowns: %w", err)
	}
	defer rows.Close()

	breakdowns := make(map[int64]*models.ResidueBreakdown)
	for rows.Next() {
		var b models.ResidueBreakdown
		err := rows.Scan(
			&b.ID, &b.ManifestID, &b.UsedOilLiters, &b.OilFilterCount,
			&b.DieselFilterCount, &b.AirFilterCount, &b.GeneralWasteKg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan residue breakdown: %w", err)
		}
		breakdowns[b.ManifestID] = &b
	}

	return breakdowns, rows.Err()
}

const manifestSelect = `
	SELECT m.id, m.number, m.issue_date, m.vessel_id, m.principal_id, m.secondary_id,
	       m.notes, m.digitization_status, m.scan_url, m.document_url, m.created_at, m.updated_at,
	       v.name AS vessel_name, p1.name AS principal_name, p2.name AS secondary_name
	FROM manifests m
	LEFT JOIN vessels v ON v.id = m.vessel_id
	LEFT JOIN persons p1 ON p1.id = m.principal_id
	LEFT JOIN persons p2 ON p2.id = m.secondary_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanManifestRecord(row rowScanner) (*models.ManifestRecord, error) {
	var r models.ManifestRecord
	err := row.Scan(
		&r.ID, &r.Number, &r.IssueDate, &r.VesselID, &r.PrincipalID, &r.SecondaryID,
		&r.Notes, &r.DigitizationStatus, &r.ScanURL, &r.DocumentURL, &r.CreatedAt, &r.UpdatedAt,
		&r.VesselName, &r.PrincipalName, &r.SecondaryName,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
