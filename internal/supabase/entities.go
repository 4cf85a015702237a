package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LuisMario698/dck-backend/internal/models"
)

func (d *DatabaseClient) CreateVessel(ctx context.Context, name, registrationCode string) (*models.Vessel, error) {
	var code sql.NullString
	if registrationCode != "" {
		code = sql.NullString{String: registrationCode, Valid: true}
	}

	var vessel models.Vessel
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO vessels (name, registration_code)
		VALUES ($1, $2)
		RETURNING id, name, registration_code, created_at, updated_at
	`, name, code).Scan(
		&vessel.ID, &vessel.Name, &vessel.RegistrationCode, &vessel.CreatedAt, &vessel.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vessel: %w", err)
	}

	return &vessel, nil
}

func (d *DatabaseClient) ListVessels(ctx context.Context) ([]models.Vessel, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, registration_code, created_at, updated_at
		FROM vessels
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vessels: %w", err)
	}
	defer rows.Close()

	var vessels []models.Vessel
	for rows.Next() {
		var vessel models.Vessel
		err := rows.Scan(&vessel.ID, &vessel.Name, &vessel.RegistrationCode, &vessel.CreatedAt, &vessel.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vessel: %w", err)
		}
		vessels = append(vessels, vessel)
	}

	return vessels, rows.Err()
}

func (d *DatabaseClient) CreatePerson(ctx context.Context, name string, categoryID int64) (*models.Person, error) {
	var person models.Person
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO persons (name, category_id)
		VALUES ($1, $2)
		RETURNING id, name, category_id, created_at, updated_at
	`, name, categoryID).Scan(
		&person.ID, &person.Name, &person.CategoryID, &person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return &person, nil
}

func (d *DatabaseClient) ListPersons(ctx context.Context) ([]models.Person, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, category_id, created_at, updated_at
		FROM persons
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []models.Person
	for rows.Next() {
		var person models.Person
		err := rows.Scan(&person.ID, &person.Name, &person.CategoryID, &person.CreatedAt, &person.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, person)
	}

	return persons, rows.Err()
}

// GetPersonCategoryByName matches case-insensitively on the full name.
// Returns sql.ErrNoRows when no category exists.
func (d *DatabaseClient) GetPersonCategoryByName(ctx context.Context, name string) (*models.PersonCategory, error) {
	var category models.PersonCategory
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM person_categories
		WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person category: %w", err)
	}
	return &category, nil
}

func (d *DatabaseClient) CreatePersonCategory(ctx context.Context, name string) (*models.PersonCategory, error) {
	var category models.PersonCategory
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO person_categories (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create person category: %w", err)
	}
	return &category, nil
}

func (d *DatabaseClient) ListPersonCategories(ctx context.Context) ([]models.PersonCategory, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM person_categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list person categories: %w", err)
	}
	defer rows.Close()

	var categories []models.PersonCategory
	for rows.Next() {
		var category models.PersonCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}
