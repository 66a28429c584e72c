package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"college-reclaim/models"
)

// CreateEvent posts a campus event. The router restricts this to
// coordinators and admins.
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	event, err := h.events.Create(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListEvents lists events with interest counts.
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.events.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetEvent retrieves one event.
func (h *Handlers) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// UpdateEvent updates an event.
func (h *Handlers) UpdateEvent(c *gin.Context) {
	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	event, err := h.events.Update(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event.
func (h *Handlers) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "event deleted"})
}

// ToggleEventInterest flips the caller's interest in an event.
func (h *Handlers) ToggleEventInterest(c *gin.Context) {
	interested, count, err := h.events.ToggleInterest(c.Request.Context(),
		c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"interested":      interested,
		"interestedCount": count,
	})
}
