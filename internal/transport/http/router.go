package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"postdeck/internal/handler"
	"postdeck/internal/httputil"
	authmw "postdeck/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	DraftHandler      *handler.DraftHandler
	EngagementHandler *handler.EngagementHandler
	ApprovalHandler   *handler.ApprovalHandler
	ScheduleHandler   *handler.ScheduleHandler
	InboxHandler      *handler.InboxHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	MediaHandler      *handler.MediaHandler
	JWTSecret         string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/me/avatar", cfg.MediaHandler.UploadAvatar)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Draft composition
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", cfg.DraftHandler.Create)
			r.Get("/", cfg.DraftHandler.List)
			r.Get("/{id}", cfg.DraftHandler.GetByID)
			r.Put("/{id}", cfg.DraftHandler.Update)
			r.Delete("/{id}", cfg.DraftHandler.Delete)

			// Engagement prediction
			r.Post("/{id}/predict", cfg.EngagementHandler.Predict)

			// Approval workflow
			r.Post("/{id}/submit", cfg.ApprovalHandler.Submit)

			// Scheduling
			r.Post("/{id}/schedule", cfg.ScheduleHandler.Schedule)
			r.Delete("/{id}/schedule", cfg.ScheduleHandler.Unschedule)

			// Per-post analytics
			r.Get("/{id}/analytics", cfg.AnalyticsHandler.PostStats)
		})

		// Ad-hoc scoring for the composer
		r.Post("/engagement/score", cfg.EngagementHandler.Score)

		// Review queue
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/pending", cfg.ApprovalHandler.ListPending)
			r.Post("/{id}/approve", cfg.ApprovalHandler.Approve)
			r.Post("/{id}/reject", cfg.ApprovalHandler.Reject)
		})

		// Calendar
		r.Get("/calendar", cfg.ScheduleHandler.Calendar)
		r.Get("/schedule/best-times", cfg.ScheduleHandler.BestTimes)

		// Unified inbox
		r.Route("/inbox", func(r chi.Router) {
			r.Get("/conversations", cfg.InboxHandler.ListConversations)
			r.Get("/conversations/{id}/messages", cfg.InboxHandler.ListMessages)
			r.Post("/conversations/{id}/reply", cfg.InboxHandler.Reply)
			r.Post("/sync/{platform}", cfg.InboxHandler.Sync)
		})

		// Aggregate analytics
		r.Get("/analytics/summary", cfg.AnalyticsHandler.Summary)

		// Media endpoints (direct-to-R2 uploads)
		r.Post("/media/presign", cfg.MediaHandler.PresignUpload)
		r.Post("/media/presign-batch", cfg.MediaHandler.PresignUploadBatch)
	})

	return r
}
