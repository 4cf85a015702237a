package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LuisMario698/dck-backend/internal/models"
	"github.com/LuisMario698/dck-backend/internal/renderer"
	"github.com/LuisMario698/dck-backend/internal/supabase"
)

const numberRetries = 3

// ManifestService runs the intake pipeline: resolve entities, derive the
// sequence number, upload artifacts, then persist exactly one manifest row
// and its residue breakdown. Every step threads its output into the next;
// the service holds no state between calls.
type ManifestService struct {
	store     ManifestStore
	resolver  *Resolver
	numbering *NumberingService
	storage   BlobStorage
	renderer  DocumentRenderer
	events    EventPublisher
	log       *zap.Logger
}

func NewManifestService(
	store ManifestStore,
	entities EntityStore,
	storage BlobStorage,
	docRenderer DocumentRenderer,
	events EventPublisher,
	log *zap.Logger,
) *ManifestService {
	return &ManifestService{
		store:     store,
		resolver:  NewResolver(entities),
		numbering: NewNumberingService(store),
		storage:   storage,
		renderer:  docRenderer,
		events:    events,
		log:       log,
	}
}

// Submit runs a full submission. Order matters: uploads settle before the
// manifest row is written so no reader ever sees a manifest whose document
// URLs are still in flight. The two uploads run concurrently; everything
// else is sequential because each step needs the previous step's output.
func (s *ManifestService) Submit(ctx context.Context, sub models.ManifestSubmission) (*models.Manifest, error) {
	if sub.IssueDate.IsZero() {
		return nil, fmt.Errorf("issue date is required")
	}
	if err := validateResidues(sub.Residues); err != nil {
		return nil, err
	}

	vesselID, principalID, secondaryID, err := s.resolveParties(ctx, sub)
	if err != nil {
		return nil, err
	}

	number, err := s.numbering.NumberFor(ctx, sub.IssueDate, sub.Number)
	if err != nil {
		return nil, err
	}

	scanURL, documentURL, err := s.uploadArtifacts(number, sub)
	if err != nil {
		return nil, err
	}

	manifest := &models.Manifest{
		Number:             number,
		IssueDate:          sub.IssueDate,
		VesselID:           vesselID,
		PrincipalID:        principalID,
		DigitizationStatus: models.DigitizationPending,
	}
	if secondaryID != 0 {
		manifest.SecondaryID.Int64 = secondaryID
		manifest.SecondaryID.Valid = true
	}
	if sub.Notes != "" {
		manifest.Notes.String = sub.Notes
		manifest.Notes.Valid = true
	}
	if scanURL != "" {
		manifest.ScanURL.String = scanURL
		manifest.ScanURL.Valid = true
	}
	if documentURL != "" {
		manifest.DocumentURL.String = documentURL
		manifest.DocumentURL.Valid = true
	}
	// Derived once at insert time, never recomputed afterwards
	if scanURL != "" || documentURL != "" {
		manifest.DigitizationStatus = models.DigitizationCompleted
	}

	created, err := s.insertWithNumberRetry(ctx, manifest, sub.Number == "")
	if err != nil {
		return nil, err
	}

	// Child record: needs the manifest id, so it always comes last. Failure
	// here is the terminal error of the submission; already uploaded
	// artifacts are not deleted retroactively.
	breakdown := breakdownFromInput(created.ID, sub.Residues)
	if err := s.store.UpsertResidueBreakdown(ctx, breakdown); err != nil {
		return nil, fmt.Errorf("manifest %s was created but its residue breakdown could not be saved: %w", created.Number, err)
	}

	if s.events != nil {
		s.events.PublishManifestEvent(created.ID, "manifest_submitted",
			supabase.ManifestSubmittedPayload(created.ID, created.Number))
		if scanURL != "" || documentURL != "" {
			s.events.PublishManifestEvent(created.ID, "documents_uploaded",
				supabase.DocumentsUploadedPayload(created.ID, scanURL, documentURL))
		}
	}

	return created, nil
}

// Update edits an existing manifest in place and upserts its breakdown, so
// a manifest that somehow lacks a breakdown row gets one created instead of
// the update silently no-oping.
func (s *ManifestService) Update(ctx context.Context, id int64, req models.UpdateManifestRequest) (*models.ManifestRecord, error) {
	existing, err := s.store.GetManifest(ctx, id)
	if err != nil {
		return nil, err
	}

	manifest := existing.Manifest
	if req.IssueDate != "" {
		date, err := time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid issue date %q: %w", req.IssueDate, err)
		}
		manifest.IssueDate = date
	}
	if req.VesselID != 0 {
		manifest.VesselID = req.VesselID
	}
	if req.PrincipalID != 0 {
		manifest.PrincipalID = req.PrincipalID
	}
	if req.SecondaryID != 0 {
		manifest.SecondaryID.Int64 = req.SecondaryID
		manifest.SecondaryID.Valid = true
	}
	if req.Notes != nil {
		manifest.Notes.String = *req.Notes
		manifest.Notes.Valid = *req.Notes != ""
	}

	if err := s.store.UpdateManifest(ctx, &manifest); err != nil {
		return nil, err
	}

	if req.Residues != nil {
		if err := validateResidues(*req.Residues); err != nil {
			return nil, err
		}
		breakdown := breakdownFromInput(id, *req.Residues)
		if err := s.store.UpsertResidueBreakdown(ctx, breakdown); err != nil {
			return nil, err
		}
	}

	return s.store.GetManifest(ctx, id)
}

// Delete removes the manifest row (the breakdown goes with it via the
// cascade) and cleans up its stored artifacts. Artifact removal is best
// effort: an unreachable bucket leaves an orphaned blob, not a half-deleted
// manifest.
func (s *ManifestService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetManifest(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteManifest(ctx, id); err != nil {
		return err
	}

	for _, url := range []sql.NullString{existing.ScanURL, existing.DocumentURL} {
		if !url.Valid {
			continue
		}
		if err := s.storage.DeleteManifestDocument(url.String); err != nil {
			s.log.Warn("failed to remove stored artifact",
				zap.Int64("id", id), zap.String("url", url.String), zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.PublishManifestEvent(id, "manifest_deleted",
			supabase.ManifestDeletedPayload(id, existing.Number))
	}
	return nil
}

func (s *ManifestService) resolveParties(ctx context.Context, sub models.ManifestSubmission) (vesselID, principalID, secondaryID int64, err error) {
	vesselID = sub.VesselID
	if vesselID == 0 {
		vesselID, err = s.resolver.ResolveVessel(ctx, sub.VesselName)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("could not resolve the vessel: %w", err)
		}
	}

	principalID = sub.PrincipalID
	if principalID == 0 {
		principalID, err = s.resolver.ResolvePerson(ctx, sub.PrincipalName, sub.PrincipalCategory)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("could not resolve the principal responsible party: %w", err)
		}
	}

	secondaryID = sub.SecondaryID
	if secondaryID == 0 && strings.TrimSpace(sub.SecondaryName) != "" {
		secondaryID, err = s.resolver.ResolvePerson(ctx, sub.SecondaryName, sub.SecondaryCategory)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("could not resolve the secondary responsible party: %w", err)
		}
	}

	return vesselID, principalID, secondaryID, nil
}

// uploadArtifacts pushes the attached scan and the generated document to
// storage concurrently and waits for both. A scan failure is fatal: the user
// explicitly attached that file. A generated-document failure is logged and
// swallowed so a renderer outage cannot sink the submission. When the
// attached file is itself a document it takes precedence and no second
// document is generated.
func (s *ManifestService) uploadArtifacts(number string, sub models.ManifestSubmission) (scanURL, documentURL string, err error) {
	attachedIsDocument := sub.Scan != nil && isDocument(sub.Scan.Filename, sub.Scan.MimeType)

	var g errgroup.Group

	if sub.Scan != nil {
		g.Go(func() error {
			url, err := s.storage.UploadManifestDocument(number, sub.Scan.Filename, scanContentType(sub.Scan), sub.Scan.Data)
			if err != nil {
				return fmt.Errorf("failed to upload the attached file: %w", err)
			}
			scanURL = url
			return nil
		})
	}

	if !attachedIsDocument && s.renderer != nil {
		g.Go(func() error {
			data, err := s.renderer.RenderManifest(s.renderRequest(number, sub))
			if err != nil {
				s.log.Warn("document generation failed, continuing without it",
					zap.String("number", number), zap.Error(err))
				return nil
			}
			url, err := s.storage.UploadManifestDocument(number, "manifiesto.pdf", "application/pdf", data)
			if err != nil {
				s.log.Warn("generated document upload failed, continuing without it",
					zap.String("number", number), zap.Error(err))
				return nil
			}
			documentURL = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return scanURL, documentURL, nil
}

// insertWithNumberRetry writes the manifest row. When the number was derived
// here (not caller-supplied) and two submissions collide on it, the unique
// constraint rejects the duplicate and the number is re-derived from a fresh
// count. A caller-supplied number is never recomputed, so its collision is
// surfaced as-is.
func (s *ManifestService) insertWithNumberRetry(ctx context.Context, manifest *models.Manifest, generated bool) (*models.Manifest, error) {
	for attempt := 0; ; attempt++ {
		created, err := s.store.CreateManifest(ctx, manifest)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, supabase.ErrDuplicateNumber) || !generated || attempt >= numberRetries-1 {
			return nil, fmt.Errorf("failed to save the manifest: %w", err)
		}

		number, derr := s.numbering.NextNumber(ctx, manifest.IssueDate)
		if derr != nil {
			return nil, derr
		}
		s.log.Info("manifest number collided, retrying with a fresh count",
			zap.String("rejected", manifest.Number), zap.String("next", number))
		manifest.Number = number
	}
}

func (s *ManifestService) renderRequest(number string, sub models.ManifestSubmission) renderer.RenderRequest {
	breakdown := breakdownFromInput(0, sub.Residues)
	req := renderer.RenderRequest{
		Number:        number,
		IssueDate:     sub.IssueDate.Format("2006-01-02"),
		VesselName:    sub.VesselName,
		PrincipalName: sub.PrincipalName,
		SecondaryName: sub.SecondaryName,
		Notes:         sub.Notes,
		Residues: renderer.RenderResidues{
			UsedOilLiters:     breakdown.UsedOilLiters,
			OilFilterCount:    breakdown.OilFilterCount,
			DieselFilterCount: breakdown.DieselFilterCount,
			AirFilterCount:    breakdown.AirFilterCount,
			GeneralWasteKg:    breakdown.GeneralWasteKg,
		},
	}
	if len(sub.Signatures) > 0 {
		req.Signatures = make(map[string]string, len(sub.Signatures))
		for role, png := range sub.Signatures {
			req.Signatures[role] = renderer.EncodeSignature(png)
		}
	}
	return req
}

func validateResidues(in models.ResidueInput) error {
	if in.UsedOilLiters != nil && *in.UsedOilLiters < 0 {
		return fmt.Errorf("used oil volume cannot be negative")
	}
	if in.OilFilterCount != nil && *in.OilFilterCount < 0 {
		return fmt.Errorf("oil filter count cannot be negative")
	}
	if in.DieselFilterCount != nil && *in.DieselFilterCount < 0 {
		return fmt.Errorf("diesel filter count cannot be negative")
	}
	if in.AirFilterCount != nil && *in.AirFilterCount < 0 {
		return fmt.Errorf("air filter count cannot be negative")
	}
	if in.GeneralWasteKg != nil && *in.GeneralWasteKg < 0 {
		return fmt.Errorf("general waste weight cannot be negative")
	}
	return nil
}

// breakdownFromInput fills omitted fields with zero, never null, so
// aggregate queries over the breakdown stay arithmetic-safe.
func breakdownFromInput(manifestID int64, in models.ResidueInput) *models.ResidueBreakdown {
	b := &models.ResidueBreakdown{ManifestID: manifestID}
	if in.UsedOilLiters != nil {
		b.UsedOilLiters = *in.UsedOilLiters
	}
	if in.OilFilterCount != nil {
		b.OilFilterCount = *in.OilFilterCount
	}
	if in.DieselFilterCount != nil {
		b.DieselFilterCount = *in.DieselFilterCount
	}
	if in.AirFilterCount != nil {
		b.AirFilterCount = *in.AirFilterCount
	}
	if in.GeneralWasteKg != nil {
		b.GeneralWasteKg = *in.GeneralWasteKg
	}
	return b
}

func isDocument(filename, mimeType string) bool {
	if mimeType == "application/pdf" {
		return true
	}
	return strings.EqualFold(path.Ext(filename), ".pdf")
}

func scanContentType(scan *models.Attachment) string {
	if scan.MimeType != "" {
		return scan.MimeType
	}
	switch strings.ToLower(path.Ext(scan.Filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
