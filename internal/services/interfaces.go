package services

import (
	"context"
	"time"

	"github.com/LuisMario698/dck-backend/internal/models"
	"github.com/LuisMario698/dck-backend/internal/renderer"
)

// ManifestStore is the slice of the persistent store the intake pipeline
// needs. *supabase.DatabaseClient satisfies it.
type ManifestStore interface {
	CountManifestsOnDate(ctx context.Context, date time.Time) (int, error)
	CreateManifest(ctx context.Context, m *models.Manifest) (*models.Manifest, error)
	GetManifest(ctx context.Context, id int64) (*models.ManifestRecord, error)
	UpdateManifest(ctx context.Context, m *models.Manifest) error
	DeleteManifest(ctx context.Context, id int64) error
	UpsertResidueBreakdown(ctx context.Context, b *models.ResidueBreakdown) error
}

// EntityStore backs the entity resolver. *supabase.DatabaseClient satisfies it.
type EntityStore interface {
	ListVessels(ctx context.Context) ([]models.Vessel, error)
	CreateVessel(ctx context.Context, name, registrationCode string) (*models.Vessel, error)
	ListPersons(ctx context.Context) ([]models.Person, error)
	CreatePerson(ctx context.Context, name string, categoryID int64) (*models.Person, error)
	GetPersonCategoryByName(ctx context.Context, name string) (*models.PersonCategory, error)
	CreatePersonCategory(ctx context.Context, name string) (*models.PersonCategory, error)
}

// BlobStorage stores a named blob and returns a retrievable URL, and removes
// a stored blob addressed by that URL.
type BlobStorage interface {
	UploadManifestDocument(manifestNumber, filename, contentType string, data []byte) (string, error)
	DeleteManifestDocument(publicURL string) error
}

// DocumentRenderer turns manifest data plus signatures into a binary
// document blob. Treated as opaque and potentially failing.
type DocumentRenderer interface {
	RenderManifest(req renderer.RenderRequest) ([]byte, error)
}

// EventPublisher pushes manifest lifecycle events to interested listeners.
type EventPublisher interface {
	PublishManifestEvent(manifestID int64, event string, payload map[string]interface{}) error
}
