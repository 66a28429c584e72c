package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"college-reclaim/models"
)

// ListMatches returns the caller's matches on either side.
func (h *Handlers) ListMatches(c *gin.Context) {
	matches, err := h.matches.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// CreateMatch handles a manual match claim.
func (h *Handlers) CreateMatch(c *gin.Context) {
	var req models.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	match, err := h.matches.CreateManual(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// UpdateMatch confirms or rejects a pending match.
func (h *Handlers) UpdateMatch(c *gin.Context) {
	var req models.UpdateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	match, err := h.matches.UpdateStatus(c.Request.Context(),
		c.GetString("user_id"), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
