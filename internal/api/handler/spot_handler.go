package handler

import (
	"errors"
	"net/http"

	"parklot/internal/domain"
	"parklot/internal/service"

	"github.com/gin-gonic/gin"
)

type SpotHandler struct {
	allocationService *service.AllocationService
	adminService      *service.AdminService
}

func NewSpotHandler(as *service.AllocationService, admin *service.AdminService) *SpotHandler {
	return &SpotHandler{allocationService: as, adminService: admin}
}

// GET /board
func (h *SpotHandler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, h.allocationService.Board())
}

// GET /spots?type=mini
func (h *SpotHandler) ListSpotsByType(c *gin.Context) {
	t, err := domain.ParseSpotType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spots, err := h.allocationService.SpotsByType(c.Request.Context(), t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list spots"})
		return
	}
	c.JSON(http.StatusOK, spots)
}

// POST /spots
func (h *SpotHandler) AddSpots(c *gin.Context) {
	var dto domain.AddSpotsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	report, err := h.adminService.AddSpots(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSpotType), errors.Is(err, domain.ErrInvalidCount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrLocationCollision):
			// Integrity violation; the partial report says what landed.
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add spots"})
		}
		return
	}
	c.JSON(http.StatusCreated, report)
}

// PATCH /spots/:location/active
func (h *SpotHandler) SetSpotActive(c *gin.Context) {
	var dto domain.SetSpotActiveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	spot, err := h.adminService.SetSpotActive(c.Request.Context(), c.Param("location"), *dto.Active)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSpotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSpotOccupied):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update spot"})
		}
		return
	}
	c.JSON(http.StatusOK, spot)
}
