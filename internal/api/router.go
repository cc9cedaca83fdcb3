package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/hireflow/internal/api/middleware"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	RegisterHandler http.HandlerFunc
	LoginHandler    http.HandlerFunc

	ListJobsHandler http.HandlerFunc
	GetJobHandler   http.HandlerFunc

	SubmitHandler           http.HandlerFunc
	CheckApplicationHandler http.HandlerFunc
	MyApplicationsHandler   http.HandlerFunc

	CreateJobHandler       http.HandlerFunc
	ListMyJobsHandler      http.HandlerFunc
	RecentJobsHandler      http.HandlerFunc
	UpdateJobStatusHandler http.HandlerFunc
	StatsHandler           http.HandlerFunc

	ListApplicationsHandler http.HandlerFunc
	GetApplicationHandler   http.HandlerFunc
	UpdateStatusHandler     http.HandlerFunc
	AddNoteHandler          http.HandlerFunc
	ListNotesHandler        http.HandlerFunc
	TimelineHandler         http.HandlerFunc
	ResumeHandler           http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Public routes, rate limited per client address
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/auth/register", orNotImplemented(deps.RegisterHandler))
		r.Post("/api/v1/auth/login", orNotImplemented(deps.LoginHandler))

		r.Get("/api/v1/jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJobHandler))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		// Applicant routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(models.RoleApplicant))

			r.Post("/api/v1/applications", orNotImplemented(deps.SubmitHandler))
			r.Get("/api/v1/applications/check/{jobID}", orNotImplemented(deps.CheckApplicationHandler))
			r.Get("/api/v1/me/applications", orNotImplemented(deps.MyApplicationsHandler))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(models.RoleAdmin))

			r.Post("/api/v1/admin/jobs", orNotImplemented(deps.CreateJobHandler))
			r.Get("/api/v1/admin/jobs", orNotImplemented(deps.ListMyJobsHandler))
			r.Get("/api/v1/admin/jobs/recent", orNotImplemented(deps.RecentJobsHandler))
			r.Patch("/api/v1/admin/jobs/{jobID}/status", orNotImplemented(deps.UpdateJobStatusHandler))
			r.Get("/api/v1/admin/stats", orNotImplemented(deps.StatsHandler))

			r.Route("/api/v1/admin/applications", func(r chi.Router) {
				r.Get("/", orNotImplemented(deps.ListApplicationsHandler))
				r.Get("/{applicationID}", orNotImplemented(deps.GetApplicationHandler))
				r.Patch("/{applicationID}/status", orNotImplemented(deps.UpdateStatusHandler))
				r.Post("/{applicationID}/notes", orNotImplemented(deps.AddNoteHandler))
				r.Get("/{applicationID}/notes", orNotImplemented(deps.ListNotesHandler))
				r.Get("/{applicationID}/timeline", orNotImplemented(deps.TimelineHandler))
				r.Get("/{applicationID}/resume", orNotImplemented(deps.ResumeHandler))
			})
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
