package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LuisMario698/dck-backend/internal/filter"
	"github.com/LuisMario698/dck-backend/internal/models"
	"github.com/LuisMario698/dck-backend/internal/services"
	"github.com/LuisMario698/dck-backend/internal/supabase"
)

type ManifestsHandler struct {
	service  *services.ManifestService
	dbClient *supabase.DatabaseClient
	log      *zap.Logger
}

func NewManifestsHandler(service *services.ManifestService, dbClient *supabase.DatabaseClient, log *zap.Logger) *ManifestsHandler {
	return &ManifestsHandler{
		service:  service,
		dbClient: dbClient,
		log:      log,
	}
}

// CreateManifest godoc
// @Summary     Submit a new waste delivery manifest
// @Description Accepts a multipart form with a "payload" JSON part and an optional scanned file part,
// @Description or a plain JSON body when there is no file. Resolves free-text vessel/person names,
// @Description derives the sequence number, uploads the artifacts and persists the manifest with
// @Description its residue breakdown.
// @Tags        manifests
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ManifestResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /manifests [post]
func (h *ManifestsHandler) CreateManifest(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	req, scan, err := h.parseSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid submission",
			Message: err.Error(),
		})
		return
	}

	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid issue date",
			Message: fmt.Sprintf("expected YYYY-MM-DD, got %q", req.IssueDate),
		})
		return
	}

	// Validation failures are caught before any write
	if req.VesselID == 0 && strings.TrimSpace(req.VesselName) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "a vessel is required"})
		return
	}
	if req.PrincipalID == 0 && strings.TrimSpace(req.PrincipalName) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "a principal responsible party is required"})
		return
	}

	signatures, err := collectSignatures(req.Signatures)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid signature",
			Message: err.Error(),
		})
		return
	}

	submission := models.ManifestSubmission{
		IssueDate:         issueDate,
		Number:            req.Number,
		VesselID:          req.VesselID,
		VesselName:        req.VesselName,
		PrincipalID:       req.PrincipalID,
		PrincipalName:     req.PrincipalName,
		PrincipalCategory: req.PrincipalCategory,
		SecondaryID:       req.SecondaryID,
		SecondaryName:     req.SecondaryName,
		SecondaryCategory: req.SecondaryCategory,
		Notes:             req.Notes,
		Residues:          req.Residues,
		Scan:              scan,
		Signatures:        signatures,
	}

	created, err := h.service.Submit(c.Request.Context(), submission)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrEmptyName) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "failed to submit manifest",
			Message: err.Error(),
		})
		return
	}

	record, err := h.dbClient.GetManifest(c.Request.Context(), created.ID)
	if err != nil {
		// The manifest exists; answer with what we have
		h.log.Warn("failed to reload manifest after submission", zap.Int64("id", created.ID), zap.Error(err))
		c.JSON(http.StatusOK, manifestResponse(models.ManifestRecord{Manifest: *created}))
		return
	}

	c.JSON(http.StatusOK, manifestResponse(*record))
}

// ListManifests godoc
// @Summary     List manifests with filtering
// @Description Returns the collection newest-first, filtered by one dimension
// @Description (vessel, principal, secondary, date_range, number) plus an optional
// @Description free-text query.
// @Tags        manifests
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ManifestListResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /manifests [get]
func (h *ManifestsHandler) ListManifests(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	records, err := h.dbClient.ListManifests(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list manifests",
			Message: err.Error(),
		})
		return
	}

	crit, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid filter",
			Message: err.Error(),
		})
		return
	}

	directory, err := h.loadDirectory(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load entity lists",
			Message: err.Error(),
		})
		return
	}

	filtered := filter.Apply(records, crit, directory)

	responses := make([]models.ManifestResponse, len(filtered))
	for i, record := range filtered {
		responses[i] = manifestResponse(record)
	}

	c.JSON(http.StatusOK, models.ManifestListResponse{Manifests: responses})
}

// GetManifest godoc
// @Summary     Get one manifest
// @Tags        manifests
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ManifestResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /manifests/{manifest_id} [get]
func (h *ManifestsHandler) GetManifest(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	id, err := strconv.ParseInt(c.Param("manifest_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid manifest id"})
		return
	}

	record, err := h.dbClient.GetManifest(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "manifest not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, manifestResponse(*record))
}

// UpdateManifest godoc
// @Summary     Update a manifest
// @Description Updates the manifest fields directly and upserts the residue
// @Description breakdown keyed by manifest id.
// @Tags        manifests
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ManifestResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /manifests/{manifest_id} [put]
func (h *ManifestsHandler) UpdateManifest(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	id, err := strconv.ParseInt(c.Param("manifest_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid manifest id"})
		return
	}

	var req models.UpdateManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	record, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "manifest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update manifest",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, manifestResponse(*record))
}

// DeleteManifest godoc
// @Summary     Delete a manifest
// @Tags        manifests
// @Produce     json
// @Security    Bearer
// @Success     200 {object} map[string]string
// @Failure     404 {object} models.ErrorResponse
// @Router      /manifests/{manifest_id} [delete]
func (h *ManifestsHandler) DeleteManifest(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	id, err := strconv.ParseInt(c.Param("manifest_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid manifest id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "manifest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete manifest",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "manifest deleted successfully"})
}

// parseSubmission accepts either a multipart form (payload part + optional
// file part) or a plain JSON body when no file travels along.
func (h *ManifestsHandler) parseSubmission(c *gin.Context) (*models.CreateManifestRequest, *models.Attachment, error) {
	var req models.CreateManifestRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, fmt.Errorf("failed to parse request body: %w", err)
		}
		return &req, nil, nil
	}

	// Max memory for the multipart form (32MB)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	payload := c.PostForm("payload")
	if payload == "" {
		return nil, nil, fmt.Errorf("missing payload part")
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	form := c.Request.MultipartForm
	if form == nil {
		return &req, nil, nil
	}

	// Try multiple common field names for the attached file
	var file *multipart.FileHeader
	for _, fieldName := range []string{"scan", "file", "document", "attachment"} {
		if f := form.File[fieldName]; len(f) > 0 {
			file = f[0]
			break
		}
	}
	if file == nil {
		return &req, nil, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attached file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read attached file: %w", err)
	}

	scan := &models.Attachment{
		Filename: file.Filename,
		MimeType: attachmentMimeType(file),
		Data:     data,
	}
	return &req, scan, nil
}

func attachmentMimeType(file *multipart.FileHeader) string {
	if ct := file.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(path.Ext(file.Filename)) {
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

func parseCriteria(c *gin.Context) (filter.Criteria, error) {
	crit := filter.Criteria{
		Dimension: filter.Dimension(c.DefaultQuery("dimension", string(filter.DimensionAll))),
		Number:    c.Query("number"),
		Query:     c.Query("q"),
	}

	switch crit.Dimension {
	case filter.DimensionAll, filter.DimensionVessel, filter.DimensionPrincipal,
		filter.DimensionSecondary, filter.DimensionDateRange, filter.DimensionNumber:
	default:
		return crit, fmt.Errorf("unknown filter dimension %q", crit.Dimension)
	}

	var err error
	if v := c.Query("vessel_id"); v != "" {
		if crit.VesselID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return crit, fmt.Errorf("invalid vessel_id: %w", err)
		}
	}
	if v := c.Query("principal_id"); v != "" {
		if crit.PrincipalID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return crit, fmt.Errorf("invalid principal_id: %w", err)
		}
	}
	if v := c.Query("secondary_id"); v != "" {
		if crit.SecondaryID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return crit, fmt.Errorf("invalid secondary_id: %w", err)
		}
	}
	if v := c.Query("from"); v != "" {
		if crit.From, err = time.Parse("2006-01-02", v); err != nil {
			return crit, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if v := c.Query("to"); v != "" {
		if crit.To, err = time.Parse("2006-01-02", v); err != nil {
			return crit, fmt.Errorf("invalid to date: %w", err)
		}
	}

	return crit, nil
}

func (h *ManifestsHandler) loadDirectory(c *gin.Context) (filter.Directory, error) {
	directory := filter.Directory{
		Vessels: make(map[int64]string),
		Persons: make(map[int64]string),
	}

	vessels, err := h.dbClient.ListVessels(c.Request.Context())
	if err != nil {
		return directory, err
	}
	for _, vessel := range vessels {
		directory.Vessels[vessel.ID] = vessel.Name
	}

	persons, err := h.dbClient.ListPersons(c.Request.Context())
	if err != nil {
		return directory, err
	}
	for _, person := range persons {
		directory.Persons[person.ID] = person.Name
	}

	return directory, nil
}

func manifestResponse(r models.ManifestRecord) models.ManifestResponse {
	resp := models.ManifestResponse{
		ID:                 r.ID,
		Number:             r.Number,
		IssueDate:          r.IssueDate.Format("2006-01-02"),
		VesselID:           r.VesselID,
		PrincipalID:        r.PrincipalID,
		DigitizationStatus: r.DigitizationStatus,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.VesselName.Valid {
		resp.VesselName = r.VesselName.String
	}
	if r.PrincipalName.Valid {
		resp.PrincipalName = r.PrincipalName.String
	}
	if r.SecondaryID.Valid {
		resp.SecondaryID = r.SecondaryID.Int64
	}
	if r.SecondaryName.Valid {
		resp.SecondaryName = r.SecondaryName.String
	}
	if r.Notes.Valid {
		resp.Notes = r.Notes.String
	}
	if r.ScanURL.Valid {
		resp.ScanURL = r.ScanURL.String
	}
	if r.DocumentURL.Valid {
		resp.DocumentURL = r.DocumentURL.String
	}
	if r.Breakdown != nil {
		resp.Residues = &models.ResidueResponse{
			UsedOilLiters:     r.Breakdown.UsedOilLiters,
			OilFilterCount:    r.Breakdown.OilFilterCount,
			DieselFilterCount: r.Breakdown.DieselFilterCount,
			AirFilterCount:    r.Breakdown.AirFilterCount,
			GeneralWasteKg:    r.Breakdown.GeneralWasteKg,
		}
	}
	return resp
}
