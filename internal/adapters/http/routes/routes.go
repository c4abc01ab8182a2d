package routes

import (
	"strings"
	"time"

	"medirelay/internal/adapters/http/handlers"
	"medirelay/internal/adapters/http/middleware"
	"medirelay/internal/adapters/persistence/repositories"
	"medirelay/internal/adapters/storage"
	"medirelay/internal/config"
	"medirelay/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// missionCacheAge is the shared cache lifetime of public mission reads
const missionCacheAge = 30 * time.Second

// Setup configures all routes for the application. The returned CronService
// shares the document service the routes use; the caller decides whether to start it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, store storage.Storage, redisLimiter *middleware.RedisLimiter) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	cvRepo := repositories.NewCVRepository(db)
	missionRepo := repositories.NewMissionRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	proposalRepo := repositories.NewProposalRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	// Initialize services
	notificationService := services.NewNotificationService(notificationRepo)
	authService := services.NewAuthService(db, userRepo, profileRepo, resetRepo, cfg)
	userService := services.NewUserService(db, userRepo, profileRepo, cvRepo, documentRepo, store)
	missionService := services.NewMissionService(db, missionRepo)
	applicationService := services.NewApplicationService(db, applicationRepo, missionRepo, notificationService)
	proposalService := services.NewProposalService(db, proposalRepo, missionRepo, userRepo, notificationService)
	documentService := services.NewDocumentService(db, documentRepo, store, notificationService, cfg.Storage.MaxBytes)
	adminService := services.NewAdminService(db, userRepo, profileRepo, documentRepo, store, notificationService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	missionHandler := handlers.NewMissionHandler(missionService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded files (local backend only)
	if local, ok := store.(*storage.Local); ok && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		app.Static(cfg.Storage.PublicURL, local.Root(), fiber.Static{
			Browse: false,
		})
	}

	auth := middleware.AuthMiddleware(cfg, userRepo)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth", middleware.NoCacheHeaders()), authHandler, auth, middleware.AuthRateLimiter(cfg, redisLimiter))
	setupUserRoutes(apiV1.Group("/users", auth), userHandler, authHandler)
	setupMissionRoutes(apiV1.Group("/missions"), missionHandler, applicationHandler, auth)
	setupApplicationRoutes(apiV1.Group("/applications", auth), applicationHandler)
	setupProposalRoutes(apiV1.Group("/proposals", auth), proposalHandler)
	setupDocumentRoutes(apiV1.Group("/documents", auth), documentHandler)
	setupNotificationRoutes(apiV1.Group("/notifications", auth, middleware.NoCacheHeaders()), notificationHandler)
	setupAdminRoutes(apiV1.Group("/admin", auth, middleware.AdminOnly()), adminHandler, dashboardHandler, documentHandler)

	return services.NewCronService(resetRepo, documentService)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth, limiter fiber.Handler) {
	// Public routes
	router.Post("/register", limiter, handler.Register)
	router.Post("/login", limiter, handler.Login)
	router.Post("/forgot-password", limiter, handler.ForgotPassword)
	router.Post("/reset-password", limiter, handler.ResetPassword)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
}

// setupUserRoutes configures profile, CV and directory routes (Authenticated)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler, authHandler *handlers.AuthHandler) {
	router.Get("/profile", handler.GetProfile)
	router.Put("/profile", handler.UpdateProfile)
	router.Put("/password", authHandler.ChangePassword)

	// Doctor directory (before /:id)
	router.Get("/replacements", middleware.RoleMiddleware("employer", "admin"), handler.SearchReplacements)
	router.Get("/:id/public", handler.PublicProfile)

	// CV (Replacement only)
	doctor := middleware.ReplacementOnly()
	router.Get("/experiences", doctor, handler.ListExperiences)
	router.Post("/experiences", doctor, handler.CreateExperience)
	router.Put("/experiences/:id", doctor, handler.ReplaceExperience)
	router.Patch("/experiences/:id", doctor, handler.PatchExperience)
	router.Delete("/experiences/:id", doctor, handler.DeleteExperience)
	router.Get("/diplomas", doctor, handler.ListDiplomas)
	router.Post("/diplomas", doctor, handler.CreateDiploma)
	router.Delete("/diplomas/:id", doctor, handler.DeleteDiploma)
}

// setupMissionRoutes configures mission routes; reads are public
func setupMissionRoutes(router fiber.Router, handler *handlers.MissionHandler, applications *handlers.ApplicationHandler, auth fiber.Handler) {
	cache := middleware.PublicCache(missionCacheAge)

	// Static segments before /:id
	router.Get("/", cache, handler.ListMissions)
	router.Get("/search", cache, handler.ListMissions)
	router.Get("/mine", auth, middleware.EmployerOnly(), handler.ListMyMissions)

	router.Post("/", auth, middleware.EmployerOnly(), handler.CreateMission)
	router.Get("/:id", cache, handler.GetMission)
	router.Put("/:id", auth, middleware.EmployerOnly(), handler.UpdateMission)
	router.Delete("/:id", auth, middleware.EmployerOnly(), handler.DeleteMission)

	// Applications of a mission
	router.Get("/:id/applications", auth, middleware.RoleMiddleware("employer", "admin"), applications.ListMissionApplications)
	router.Get("/:id/applications/summary", auth, middleware.RoleMiddleware("employer", "admin"), applications.MissionApplicationSummary)
	router.Post("/:id/applications", auth, middleware.ReplacementOnly(), applications.Apply)
}

// setupApplicationRoutes configures application routes (Authenticated)
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler) {
	router.Get("/", handler.ListApplications)
	router.Post("/", middleware.ReplacementOnly(), handler.Apply)

	// Ownership is checked by the service so that any non-owner gets 403
	router.Put("/:id", handler.RespondApplication)
	router.Delete("/:id", handler.WithdrawApplication)
}

// setupProposalRoutes configures proposal routes (Authenticated)
func setupProposalRoutes(router fiber.Router, handler *handlers.ProposalHandler) {
	router.Get("/", handler.ListProposals)
	router.Post("/", middleware.EmployerOnly(), handler.CreateProposal)
	router.Put("/:id", handler.RespondProposal)
}

// setupDocumentRoutes configures document routes (Authenticated)
func setupDocumentRoutes(router fiber.Router, handler *handlers.DocumentHandler) {
	router.Get("/", handler.ListDocuments)
	router.Post("/", handler.UploadDocument)
	router.Post("/upload", handler.UploadDocument)
	router.Delete("/:id", handler.DeleteDocument)
}

// setupNotificationRoutes configures notification routes (Authenticated)
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/", handler.ListNotifications)
	router.Get("/unread-count", handler.UnreadCount)
	router.Put("/read-all", handler.MarkAllRead)
	router.Put("/:id/read", handler.MarkRead)
}

// setupAdminRoutes configures moderation routes (Admin only)
func setupAdminRoutes(
	router fiber.Router,
	adminHandler *handlers.AdminHandler,
	dashboardHandler *handlers.DashboardHandler,
	documentHandler *handlers.DocumentHandler,
) {
	router.Get("/stats", dashboardHandler.GetAdminStats)

	// Users (static segments before /:id)
	router.Get("/users", adminHandler.ListUsers)
	router.Get("/users/export", adminHandler.ExportUsers)
	router.Get("/users/:id", adminHandler.GetUser)
	router.Put("/users/:id/status", adminHandler.SetProfileStatus)
	router.Post("/users/:id/approve", adminHandler.ApproveUser)
	router.Post("/users/:id/reject", adminHandler.RejectUser)
	router.Put("/users/:id/active", adminHandler.SetActive)

	// Documents
	router.Get("/documents", documentHandler.ListForReview)
	router.Post("/documents/:id/verify", documentHandler.VerifyDocument)
}
