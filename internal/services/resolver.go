package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyName means no resolution was attempted; the caller must block the
// submission rather than create a nameless entity.
var ErrEmptyName = errors.New("name is empty")

// Resolver turns free-text names into existing-or-newly-created entity ids.
// Matching is case-insensitive full-string equality only; anything fuzzier
// risks silently attaching a record to the wrong entity. Creation is durable
// before the caller proceeds, so a failed create aborts the whole
// submission. Resolution and the manifest write are not one transaction: two
// submissions racing on a brand-new name can still create a duplicate
// entity, which is accepted and documented rather than masked.
type Resolver struct {
	store EntityStore
}

func NewResolver(store EntityStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveVessel returns the id of the vessel with the given name, creating
// one when no match exists.
func (r *Resolver) ResolveVessel(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}

	vessels, err := r.store.ListVessels(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load vessels while resolving %q: %w", name, err)
	}
	for _, vessel := range vessels {
		if strings.EqualFold(vessel.Name, name) {
			return vessel.ID, nil
		}
	}

	vessel, err := r.store.CreateVessel(ctx, name, "")
	if err != nil {
		return 0, fmt.Errorf("failed to create vessel %q: %w", name, err)
	}
	return vessel.ID, nil
}

// ResolvePerson returns the id of the person with the given name, creating
// one when no match exists. Creation first creates-or-fetches the named
// category, which is itself a lazily created record keyed by name.
func (r *Resolver) ResolvePerson(ctx context.Context, name, category string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}

	persons, err := r.store.ListPersons(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load persons while resolving %q: %w", name, err)
	}
	for _, person := range persons {
		if strings.EqualFold(person.Name, name) {
			return person.ID, nil
		}
	}

	categoryID, err := r.resolveCategory(ctx, category)
	if err != nil {
		return 0, err
	}

	person, err := r.store.CreatePerson(ctx, name, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to create person %q: %w", name, err)
	}
	return person.ID, nil
}

func (r *Resolver) resolveCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("a category is required to create a new person: %w", ErrEmptyName)
	}

	category, err := r.store.GetPersonCategoryByName(ctx, name)
	if err == nil {
		return category.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up category %q: %w", name, err)
	}

	created, err := r.store.CreatePersonCategory(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return created.ID, nil
}
