package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LuisMario698/dck-backend/internal/models"
	"github.com/LuisMario698/dck-backend/internal/supabase"
)

// EntitiesHandler serves the vessel/person/category lists that feed the
// client-side resolver caches, and direct creation for both entity kinds.
type EntitiesHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewEntitiesHandler(dbClient *supabase.DatabaseClient) *EntitiesHandler {
	return &EntitiesHandler{dbClient: dbClient}
}

func (h *EntitiesHandler) ListVessels(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	vessels, err := h.dbClient.ListVessels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list vessels",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.VesselResponse, len(vessels))
	for i, vessel := range vessels {
		responses[i] = models.VesselResponse{
			ID:        vessel.ID,
			Name:      vessel.Name,
			CreatedAt: vessel.CreatedAt,
		}
		if vessel.RegistrationCode.Valid {
			responses[i].RegistrationCode = vessel.RegistrationCode.String
		}
	}

	c.JSON(http.StatusOK, models.VesselListResponse{Vessels: responses})
}

func (h *EntitiesHandler) CreateVessel(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	var req models.CreateVesselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	vessel, err := h.dbClient.CreateVessel(c.Request.Context(), req.Name, req.RegistrationCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create vessel",
			Message: err.Error(),
		})
		return
	}

	resp := models.VesselResponse{
		ID:        vessel.ID,
		Name:      vessel.Name,
		CreatedAt: vessel.CreatedAt,
	}
	if vessel.RegistrationCode.Valid {
		resp.RegistrationCode = vessel.RegistrationCode.String
	}

	c.JSON(http.StatusOK, resp)
}

func (h *EntitiesHandler) ListPersons(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	persons, err := h.dbClient.ListPersons(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list persons",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.PersonResponse, len(persons))
	for i, person := range persons {
		responses[i] = models.PersonResponse{
			ID:         person.ID,
			Name:       person.Name,
			CategoryID: person.CategoryID,
			CreatedAt:  person.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.PersonListResponse{Persons: responses})
}

func (h *EntitiesHandler) CreatePerson(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	var req models.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	// The category is itself a lazily created record keyed by name
	category, err := h.dbClient.GetPersonCategoryByName(c.Request.Context(), req.Category)
	if errors.Is(err, sql.ErrNoRows) {
		category, err = h.dbClient.CreatePersonCategory(c.Request.Context(), req.Category)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to resolve person category",
			Message: err.Error(),
		})
		return
	}

	person, err := h.dbClient.CreatePerson(c.Request.Context(), req.Name, category.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create person",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.PersonResponse{
		ID:         person.ID,
		Name:       person.Name,
		CategoryID: person.CategoryID,
		CreatedAt:  person.CreatedAt,
	})
}

func (h *EntitiesHandler) ListPersonCategories(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	categories, err := h.dbClient.ListPersonCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list person categories",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = models.CategoryResponse{ID: category.ID, Name: category.Name}
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Categories: responses})
}
