package main

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"college-reclaim/config"
	"college-reclaim/database"
	"college-reclaim/email"
	"college-reclaim/handlers"
	"college-reclaim/middleware"
	"college-reclaim/models"
	"college-reclaim/services"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	mailer := email.NewSender(cfg)

	authService := database.NewAuthService(db, cfg.JWTSecret)
	notificationService := services.NewNotificationService(db)
	itemService := services.NewItemService(db, notificationService, mailer)
	matchService := services.NewMatchService(db, itemService, notificationService)
	bookService := services.NewBookService(db, notificationService)
	eventService := services.NewEventService(db)
	coordinatorService := services.NewCoordinatorService(db, authService, notificationService, mailer, cfg.AdminEmail)
	adminService := services.NewAdminService(db, notificationService, mailer)

	h := handlers.NewHandlers(cfg, authService, itemService, matchService, bookService,
		eventService, notificationService, coordinatorService, adminService, mailer)

	router := setupRouter(h, authService, cfg)

	log.Infof("College Reclaim API starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func setupRouter(h *handlers.Handlers, authService *database.AuthService, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies(cfg.TrustedProxies)

	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware(120, time.Minute))

	router.GET("/health", h.HealthCheck)

	// Public routes
	public := router.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/oauth", h.OAuthLogin)
			auth.POST("/refresh", h.RefreshToken)
			auth.POST("/forgot-password", h.ForgotPassword)
			auth.POST("/reset-password", h.ResetPassword)
		}

		public.GET("/lost-items", h.ListLostItems)
		public.GET("/lost-items/:id", h.GetLostItem)
		public.GET("/found-items", h.ListFoundItems)
		public.GET("/found-items/:id", h.GetFoundItem)
		public.GET("/books", h.ListBooks)
		public.GET("/books/:id", h.GetBook)

		public.GET("/health", h.HealthCheck)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.POST("/auth/logout", h.Logout)
		protected.GET("/users/me", h.Me)

		protected.POST("/lost-items", h.CreateLostItem)
		protected.PUT("/lost-items/:id", h.UpdateLostItem)
		protected.DELETE("/lost-items/:id", h.DeleteLostItem)

		protected.POST("/found-items", h.CreateFoundItem)
		protected.PUT("/found-items/:id", h.UpdateFoundItem)
		protected.DELETE("/found-items/:id", h.DeleteFoundItem)

		protected.GET("/matches", h.ListMatches)
		protected.POST("/matches", h.CreateMatch)
		protected.PUT("/matches/:id", h.UpdateMatch)

		protected.POST("/books", h.CreateBook)
		protected.PUT("/books/:id", h.UpdateBook)
		protected.DELETE("/books/:id", h.DeleteBook)
		protected.POST("/books/:id/request", h.CreateBookRequest)
		protected.GET("/books/:id/requests", h.ListBookRequests)
		protected.PUT("/book-requests/:id", h.ReviewBookRequest)

		protected.GET("/events", h.ListEvents)
		protected.GET("/events/:id", h.GetEvent)
		protected.POST("/events/:id/interest", h.ToggleEventInterest)

		protected.GET("/notifications", h.ListNotifications)
		protected.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
		protected.PUT("/notifications/:id/read", h.MarkNotificationRead)

		protected.POST("/coordinator-requests", h.CreateCoordinatorRequest)
	}

	// Coordinator routes
	coordinator := router.Group("/api/v1")
	coordinator.Use(middleware.AuthMiddleware(authService))
	coordinator.Use(middleware.RequireRole(models.RoleCoordinator, models.RoleAdmin))
	{
		coordinator.POST("/events", h.CreateEvent)
		coordinator.PUT("/events/:id", h.UpdateEvent)
		coordinator.DELETE("/events/:id", h.DeleteEvent)
	}

	// Admin routes
	admin := router.Group("/api/v1")
	admin.Use(middleware.AuthMiddleware(authService))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/coordinator-requests", h.ListCoordinatorRequests)
		admin.POST("/coordinator-requests/:id", h.ReviewCoordinatorRequest)
		admin.POST("/admin/notify", h.AdminNotify)
	}

	return router
}
