package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"college-reclaim/config"
	"college-reclaim/database"
	"college-reclaim/models"
	"college-reclaim/services"
)

// Handlers handles HTTP requests for the College Reclaim API.
type Handlers struct {
	cfg           *config.Config
	auth          *database.AuthService
	items         *services.ItemService
	matches       *services.MatchService
	books         *services.BookService
	events        *services.EventService
	notifications *services.NotificationService
	coordinator   *services.CoordinatorService
	admin         *services.AdminService
	mailer        services.Mailer
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	cfg *config.Config,
	auth *database.AuthService,
	items *services.ItemService,
	matches *services.MatchService,
	books *services.BookService,
	events *services.EventService,
	notifications *services.NotificationService,
	coordinator *services.CoordinatorService,
	admin *services.AdminService,
	mailer services.Mailer,
) *Handlers {
	return &Handlers{
		cfg:           cfg,
		auth:          auth,
		items:         items,
		matches:       matches,
		books:         books,
		events:        events,
		notifications: notifications,
		coordinator:   coordinator,
		admin:         admin,
		mailer:        mailer,
	}
}

// respondError maps service errors to HTTP status codes. Downstream failures
// are logged with their cause and surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	case errors.Is(err, database.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, database.ErrUserExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "user already exists"})
	case errors.Is(err, database.ErrInvalidOTP):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid or expired code"})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
	}
}

// HealthCheck returns the service health status.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "college-reclaim",
	})
}
