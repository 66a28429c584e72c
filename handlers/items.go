package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"college-reclaim/models"
)

// CreateLostItem handles lost item reports.
func (h *Handlers) CreateLostItem(c *gin.Context) {
	var req models.CreateLostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.items.CreateLostItem(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListLostItems lists lost items with category/status/search filters.
func (h *Handlers) ListLostItems(c *gin.Context) {
	items, total, err := h.items.ListLostItems(c.Request.Context(), itemFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	page, pageSize := pageFromQuery(c)
	c.JSON(http.StatusOK, models.ListResponse[models.LostItem]{
		Items: items, Total: total, Page: page, PageSize: pageSize,
	})
}

// GetLostItem retrieves one lost item.
func (h *Handlers) GetLostItem(c *gin.Context) {
	item, err := h.items.GetLostItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateLostItem updates a lost item.
func (h *Handlers) UpdateLostItem(c *gin.Context) {
	var req models.UpdateLostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.items.UpdateLostItem(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteLostItem deletes a lost item.
func (h *Handlers) DeleteLostItem(c *gin.Context) {
	if err := h.items.DeleteLostItem(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "lost item deleted"})
}

// CreateFoundItem handles found item reports. Creation triggers the match
// scan; the response carries the candidate count.
func (h *Handlers) CreateFoundItem(c *gin.Context) {
	var req models.CreateFoundItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	item, candidates, err := h.items.CreateFoundItem(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateFoundItemResponse{
		FoundItem:        item,
		PotentialMatches: candidates,
	})
}

// ListFoundItems lists found items with filters.
func (h *Handlers) ListFoundItems(c *gin.Context) {
	filter := itemFilterFromQuery(c)
	if v := c.Query("handed_to_admin"); v != "" {
		handed := v == "true"
		filter.HandedToAdmin = &handed
	}

	items, total, err := h.items.ListFoundItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	page, pageSize := pageFromQuery(c)
	c.JSON(http.StatusOK, models.ListResponse[models.FoundItem]{
		Items: items, Total: total, Page: page, PageSize: pageSize,
	})
}

// GetFoundItem retrieves one found item.
func (h *Handlers) GetFoundItem(c *gin.Context) {
	item, err := h.items.GetFoundItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateFoundItem updates a found item.
func (h *Handlers) UpdateFoundItem(c *gin.Context) {
	var req models.UpdateFoundItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	item, err := h.items.UpdateFoundItem(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteFoundItem deletes a found item.
func (h *Handlers) DeleteFoundItem(c *gin.Context) {
	if err := h.items.DeleteFoundItem(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "found item deleted"})
}

func itemFilterFromQuery(c *gin.Context) models.ItemFilter {
	page, pageSize := pageFromQuery(c)
	return models.ItemFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
}

func pageFromQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
