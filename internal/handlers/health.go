package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LuisMario698/dck-backend/internal/models"
)

// HealthHandler godoc
// @Summary     Health check
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
