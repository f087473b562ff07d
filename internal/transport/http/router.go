package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otp-notify-api/internal/application/notification"
	"github.com/otp-notify-api/internal/application/otp"
	"github.com/otp-notify-api/internal/config"
	"github.com/otp-notify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/otp-notify-api/internal/infrastructure/jwt"
	"github.com/otp-notify-api/internal/infrastructure/memory"
	"github.com/otp-notify-api/internal/infrastructure/provider"
	"github.com/otp-notify-api/internal/pkg/phone"
	"github.com/otp-notify-api/internal/transport/http/handler"
	appmiddleware "github.com/otp-notify-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Verifications *memory.VerificationStore
	IssueLimiter  *memory.FixedWindowLimiter
	Sender        provider.Sender
	Normalizer    *phone.Normalizer
	MessageLog    *dynamo.MessageLogRepo // nil disables the audit log
	JWTProvider   *jwtinfra.Provider     // nil disables the admin surface
}

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
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — shields the request path itself;
	// the SMS budget is enforced by the fixed-window limiter inside the
	// issuance service.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	// The repos satisfy narrower service interfaces; a nil *MessageLogRepo
	// must stay a nil interface so the services can detect it.
	var otpLog otp.MessageLogger
	var notifLog notification.MessageLogger
	if deps.MessageLog != nil {
		otpLog = deps.MessageLog
		notifLog = deps.MessageLog
	}

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:      deps.Verifications,
		Limiter:    deps.IssueLimiter,
		Sender:     deps.Sender,
		Normalizer: deps.Normalizer,
		MessageLog: otpLog,
		TTL:        cfg.OTPTTL,
		Diagnostic: !cfg.IsProduction(),
	})
	notifSvc := notification.NewService(deps.Sender, deps.Normalizer, notifLog)

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/health-check/{action}", healthH.Ping)
	r.Get("/test", healthH.Test)
	r.Post("/test", healthH.Test)
	r.With(sensitiveRL.Limit).Post("/otp", otpH.SendOTP)
	r.With(sensitiveRL.Limit).Put("/otp", otpH.VerifyOTP)

	// ── Admin routes ─────────────────────────────────────────────────────
	if deps.JWTProvider != nil {
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Use(appmiddleware.RequireRole(jwtinfra.RoleAdmin))

			r.Post("/notifications", notifH.Dispatch)
			r.Get("/notifications", notifH.History)
		})
	} else {
		unavailable := func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"admin endpoints disabled: no JWT public key configured"}`))
		}
		r.Post("/notifications", unavailable)
		r.Get("/notifications", unavailable)
	}

	return r
}
