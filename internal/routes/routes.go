package routes

import (
	"github.com/exploria-travel/auth-service/internal/handlers"
	"github.com/exploria-travel/auth-service/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	portalHandler *handlers.PortalHandler,
) {
	// Rate limiting for credential-bearing endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()
	limited := middleware.RateLimitByIP(rateLimitConfig)

	// End-user auth
	router.Route("/auth", func(r chi.Router) {
		r.Post("/check-email", authHandler.CheckEmail)
		r.With(limited).Post("/register", authHandler.Register)
		r.Post("/complete-profile", authHandler.CompleteProfile)
		r.With(limited).Post("/login", authHandler.Login)
		r.Post("/update-location", authHandler.UpdateLocation)
		r.Post("/logout", authHandler.Logout)
		r.Get("/profile/{ref_id}", authHandler.GetProfile)
	})

	// Back-office portals
	router.Route("/portal", func(r chi.Router) {
		r.With(limited).Post("/login", portalHandler.Login)
		r.With(limited).Post("/admin/login", portalHandler.AdminLogin)
		r.With(limited).Post("/staff/login", portalHandler.StaffLogin)
		r.With(limited).Post("/operator/login", portalHandler.OperatorLogin)
		r.Post("/logout", portalHandler.Logout)
		r.Post("/verify-session", portalHandler.VerifySession)
	})
}
