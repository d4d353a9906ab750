package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/http/handlers"
	"github.com/tutorconnect/tutor-connect/internal/auth"
	"github.com/tutorconnect/tutor-connect/internal/config"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Jobs           *handlers.JobsHandler
	Applications   *handlers.ApplicationsHandler
	Admin          *handlers.AdminHandler
	Upload         *handlers.UploadHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	Limiter        Limiter
	RateLimit      config.RateLimitConfig
	Uploads        config.UploadConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	window := cfg.RateLimit.Window()
	loginLimit := RateLimit(cfg.Limiter, "login", cfg.RateLimit.LoginAttempts, window)
	registerLimit := RateLimit(cfg.Limiter, "register", cfg.RateLimit.RegisterAttempts, window)
	uploadLimit := RateLimit(cfg.Limiter, "upload", cfg.RateLimit.UploadAttempts, window)

	authenticated := cfg.AuthMiddleware.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/students/register", registerLimit, cfg.Auth.RegisterStudent)
	authGroup.Post("/teachers/register", registerLimit, cfg.Auth.RegisterTeacher)
	authGroup.Post("/admin/setup", registerLimit, cfg.Auth.SetupAdmin)
	authGroup.Post("/login", loginLimit, cfg.Auth.Login)
	authGroup.Get("/me", authenticated, auth.RequireAnyRole(), cfg.Auth.Me)
	authGroup.Post("/password/change", authenticated, auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	posters := auth.RequireRole(domain.RoleTeacher, domain.RoleAdmin)
	jobs := app.Group("/jobs")
	jobs.Get("/", cfg.Jobs.ListJobs)
	jobs.Get("/mine", authenticated, posters, cfg.Jobs.ListMyJobs)
	jobs.Get("/:id", cfg.AuthMiddleware.Optional, cfg.Jobs.GetJob)
	jobs.Post("/", authenticated, posters, cfg.Jobs.CreateJob)
	jobs.Patch("/:id/status", authenticated, posters, cfg.Jobs.UpdateJobStatus)

	apps := app.Group("/applications", authenticated)
	apps.Post("/", auth.RequireRole(domain.RoleStudent), cfg.Applications.Apply)
	apps.Get("/", auth.RequireAnyRole(), cfg.Applications.List)
	apps.Post("/:id/decision", posters, cfg.Applications.Decide)
	apps.Post("/:id/withdraw", auth.RequireRole(domain.RoleStudent), cfg.Applications.Withdraw)

	admin := app.Group("/admin", authenticated, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/approve-teacher", cfg.Admin.ApproveTeacher)
	admin.Post("/reject-teacher", cfg.Admin.RejectTeacher)
	admin.Post("/suspend-user", cfg.Admin.SuspendUser)
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Get("/pending-teachers", cfg.Admin.PendingTeachers)
	admin.Get("/logs", cfg.Admin.ActivityLogs)

	app.Post("/upload", uploadLimit, cfg.Upload.Upload)
	if cfg.Uploads.Dir != "" {
		app.Static(cfg.Uploads.PublicBase, cfg.Uploads.Dir, fiber.Static{Browse: false})
	}
}
