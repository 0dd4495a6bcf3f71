package http

import (
	"net/http"

	"github.com/eventure/identity-api/internal/application/auth"
	"github.com/eventure/identity-api/internal/config"
	"github.com/eventure/identity-api/internal/transport/http/handler"
	appmiddleware "github.com/eventure/identity-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		Users:           deps.UserRepo,
		Sessions:        deps.Sessions,
		Mailer:          deps.Mailer,
		SMSSender:       deps.SMSSender,
		Tokens:          deps.JWTProvider,
		OTPTTL:          cfg.OTPTTL,
		ResendOTPTTL:    cfg.ResendOTPTTL,
		RegistrationTTL: cfg.RegistrationTTL,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, cfg.RefreshTokenTTL, cfg.AppEnv == "production")

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/otpverify", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/resend-otp", authH.ResendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/users/me", authH.Me)
		})
	})

	return r
}
