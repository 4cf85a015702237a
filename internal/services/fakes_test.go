package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LuisMario698/dck-backend/internal/models"
	"github.com/LuisMario698/dck-backend/internal/renderer"
	"github.com/LuisMario698/dck-backend/internal/supabase"
)

type fakeStore struct {
	manifests  []models.Manifest
	breakdowns map[int64]models.ResidueBreakdown
	nextID     int64

	failBreakdown bool

	// concurrentInsert, when set, lands in the store right before the next
	// CreateManifest call, simulating a racing submission that takes the
	// derived number first.
	concurrentInsert *models.Manifest
}

func newFakeStore() *fakeStore {
	return &fakeStore{breakdowns: make(map[int64]models.ResidueBreakdown)}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (s *fakeStore) CountManifestsOnDate(_ context.Context, date time.Time) (int, error) {
	count := 0
	for _, m := range s.manifests {
		if sameDay(m.IssueDate, date) {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CreateManifest(_ context.Context, m *models.Manifest) (*models.Manifest, error) {
	if s.concurrentInsert != nil {
		s.nextID++
		racer := *s.concurrentInsert
		racer.ID = s.nextID
		s.manifests = append(s.manifests, racer)
		s.concurrentInsert = nil
	}
	for _, existing := range s.manifests {
		if existing.Number == m.Number {
			return nil, supabase.ErrDuplicateNumber
		}
	}
	s.nextID++
	created := *m
	created.ID = s.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.manifests = append(s.manifests, created)
	return &created, nil
}

func (s *fakeStore) GetManifest(_ context.Context, id int64) (*models.ManifestRecord, error) {
	for _, m := range s.manifests {
		if m.ID == id {
			record := &models.ManifestRecord{Manifest: m}
			if b, ok := s.breakdowns[id]; ok {
				copy := b
				record.Breakdown = &copy
			}
			return record, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeStore) UpdateManifest(_ context.Context, m *models.Manifest) error {
	for i := range s.manifests {
		if s.manifests[i].ID == m.ID {
			updated := *m
			updated.CreatedAt = s.manifests[i].CreatedAt
			updated.UpdatedAt = time.Now()
			s.manifests[i] = updated
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeStore) DeleteManifest(_ context.Context, id int64) error {
	for i := range s.manifests {
		if s.manifests[i].ID == id {
			s.manifests = append(s.manifests[:i], s.manifests[i+1:]...)
			delete(s.breakdowns, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *fakeStore) UpsertResidueBreakdown(_ context.Context, b *models.ResidueBreakdown) error {
	if s.failBreakdown {
		return fmt.Errorf("breakdown write rejected")
	}
	if existing, ok := s.breakdowns[b.ManifestID]; ok {
		b.ID = existing.ID
	} else {
		s.nextID++
		b.ID = s.nextID
	}
	s.breakdowns[b.ManifestID] = *b
	return nil
}

type fakeEntities struct {
	vessels    []models.Vessel
	persons    []models.Person
	categories []models.PersonCategory
	nextID     int64

	vesselCreates   int
	personCreates   int
	categoryCreates int

	failCreates bool
}

func (s *fakeEntities) ListVessels(context.Context) ([]models.Vessel, error) {
	return s.vessels, nil
}

func (s *fakeEntities) CreateVessel(_ context.Context, name, registrationCode string) (*models.Vessel, error) {
	if s.failCreates {
		return nil, fmt.Errorf("vessel insert rejected")
	}
	s.nextID++
	s.vesselCreates++
	vessel := models.Vessel{ID: s.nextID, Name: name}
	if registrationCode != "" {
		vessel.RegistrationCode = sql.NullString{String: registrationCode, Valid: true}
	}
	s.vessels = append(s.vessels, vessel)
	return &vessel, nil
}

func (s *fakeEntities) ListPersons(context.Context) ([]models.Person, error) {
	return s.persons, nil
}

func (s *fakeEntities) CreatePerson(_ context.Context, name string, categoryID int64) (*models.Person, error) {
	if s.failCreates {
		return nil, fmt.Errorf("person insert rejected")
	}
	s.nextID++
	s.personCreates++
	person := models.Person{ID: s.nextID, Name: name, CategoryID: categoryID}
	s.persons = append(s.persons, person)
	return &person, nil
}

func (s *fakeEntities) GetPersonCategoryByName(_ context.Context, name string) (*models.PersonCategory, error) {
	for _, category := range s.categories {
		if strings.EqualFold(category.Name, name) {
			c := category
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeEntities) CreatePersonCategory(_ context.Context, name string) (*models.PersonCategory, error) {
	s.nextID++
	s.categoryCreates++
	category := models.PersonCategory{ID: s.nextID, Name: name}
	s.categories = append(s.categories, category)
	return &category, nil
}

type upload struct {
	Number      string
	Filename    string
	ContentType string
	Size        int
}

// fakeStorage is shared by the concurrent upload goroutines, so every access
// goes through the mutex.
type fakeStorage struct {
	mu         sync.Mutex
	uploads    []upload
	deleted    []string
	fail       func(filename string) error
	failDelete error
}

func (s *fakeStorage) UploadManifestDocument(number, filename, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		if err := s.fail(filename); err != nil {
			return "", err
		}
	}
	s.uploads = append(s.uploads, upload{Number: number, Filename: filename, ContentType: contentType, Size: len(data)})
	return fmt.Sprintf("https://storage.test/manifests/%s/%s", number, filename), nil
}

func (s *fakeStorage) DeleteManifestDocument(publicURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	s.deleted = append(s.deleted, publicURL)
	return nil
}

type fakeRenderer struct {
	calls int
	blob  []byte
	err   error
}

func (r *fakeRenderer) RenderManifest(renderer.RenderRequest) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.blob, nil
}

type fakeEvents struct {
	published []string
}

func (e *fakeEvents) PublishManifestEvent(_ int64, event string, _ map[string]interface{}) error {
	e.published = append(e.published, event)
	return nil
}
