package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"college-reclaim/models"
)

// CreateCoordinatorRequest submits a coordinator access request.
func (h *Handlers) CreateCoordinatorRequest(c *gin.Context) {
	var req models.CreateCoordinatorRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.coordinator.Create(c.Request.Context(), c.GetString("user_id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// ListCoordinatorRequests lists requests for admin review.
func (h *Handlers) ListCoordinatorRequests(c *gin.Context) {
	requests, err := h.coordinator.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ReviewCoordinatorRequest approves or rejects a request.
func (h *Handlers) ReviewCoordinatorRequest(c *gin.Context) {
	var req models.ReviewCoordinatorRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.coordinator.Review(c.Request.Context(),
		c.GetString("user_id"), c.Param("id"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
