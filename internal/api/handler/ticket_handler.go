package handler

import (
	"errors"
	"net/http"

	"parklot/internal/domain"
	"parklot/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	ticketService *service.TicketService
}

func NewTicketHandler(ts *service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ts}
}

// POST /tickets
func (h *TicketHandler) Park(c *gin.Context) {
	var dto domain.ParkRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ticket, err := h.ticketService.OpenTicket(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSpotType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrDuplicateOpenTicket):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNoSpotAvailable):
			// Expected when the lot is full; the caller should retry later.
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not park vehicle"})
		}
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// POST /tickets/:id/close
func (h *TicketHandler) Unpark(c *gin.Context) {
	closed, err := h.ticketService.CloseTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not close ticket"})
		}
		return
	}
	c.JSON(http.StatusOK, closed)
}

// PATCH /tickets/:id/vehicle
func (h *TicketHandler) UpdateVehicle(c *gin.Context) {
	var dto domain.UpdateVehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ticket, err := h.ticketService.UpdateVehicleNo(c.Request.Context(), c.Param("id"), dto.VehicleNo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAlreadyCompleted), errors.Is(err, domain.ErrDuplicateOpenTicket):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update ticket"})
		}
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GET /tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.ticketService.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load ticket"})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GET /tickets
func (h *TicketHandler) ListOpenTickets(c *gin.Context) {
	tickets, err := h.ticketService.ListOpenTickets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}
