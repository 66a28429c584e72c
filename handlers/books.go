package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"college-reclaim/models"
)

// CreateBook lists a book for sale or rent.
func (h *Handlers) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	book, err := h.books.Create(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// ListBooks lists books with subject/type/status/search filters.
func (h *Handlers) ListBooks(c *gin.Context) {
	page, pageSize := pageFromQuery(c)
	filter := models.BookFilter{
		Subject:     c.Query("subject"),
		ListingType: c.Query("listing_type"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		Page:        page,
		PageSize:    pageSize,
	}

	books, total, err := h.books.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ListResponse[models.Book]{
		Items: books, Total: total, Page: page, PageSize: pageSize,
	})
}

// GetBook retrieves one book.
func (h *Handlers) GetBook(c *gin.Context) {
	book, err := h.books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook updates a listing.
func (h *Handlers) UpdateBook(c *gin.Context) {
	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	book, err := h.books.Update(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a listing.
func (h *Handlers) DeleteBook(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(),
		c.GetString("user_id"), c.GetString("role"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "book deleted"})
}

// CreateBookRequest submits a borrow/buy request for a book.
func (h *Handlers) CreateBookRequest(c *gin.Context) {
	var req models.CreateBookBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.books.CreateRequest(c.Request.Context(),
		c.GetString("user_id"), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// ListBookRequests lists requests against the caller's book.
func (h *Handlers) ListBookRequests(c *gin.Context) {
	requests, err := h.books.ListRequests(c.Request.Context(),
		c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ReviewBookRequest approves or rejects a book request.
func (h *Handlers) ReviewBookRequest(c *gin.Context) {
	var req models.ReviewBookRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	request, err := h.books.ReviewRequest(c.Request.Context(),
		c.GetString("user_id"), c.Param("id"), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
