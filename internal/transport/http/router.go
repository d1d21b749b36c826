package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marketplace-api/internal/application/account"
	"github.com/marketplace-api/internal/application/auth"
	"github.com/marketplace-api/internal/application/media"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/application/role"
	"github.com/marketplace-api/internal/application/session"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/marketplace-api/internal/infrastructure/jwt"
	s3infra "github.com/marketplace-api/internal/infrastructure/s3"
	"github.com/marketplace-api/internal/infrastructure/smtp"
	"github.com/marketplace-api/internal/infrastructure/sns"
	"github.com/marketplace-api/internal/transport/http/handler"
	appmiddleware "github.com/marketplace-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. S3Store, Mailer,
// SMSSender, and JWTProvider may be nil when their credentials are missing;
// the affected endpoints then degrade instead of crashing the process.
type Deps struct {
	AccountRepo *dynamo.AccountRepo
	SessionRepo *dynamo.SessionRepo
	OTPRepo     *dynamo.OTPRepo
	RoleRepo    *dynamo.RoleRepo
	AssetRepo   *dynamo.AssetRepo
	DeviceRepo  *dynamo.DeviceRepo
	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}

// RoleService builds the role registry service from the router deps so main
// can seed System roles before serving.
func (d *Deps) RoleService() role.Service {
	return role.NewService(d.RoleRepo)
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

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider, deps.SessionRepo)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	devCode := ""
	if cfg.Development() {
		devCode = "123456"
	}
	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:     deps.OTPRepo,
		AccountRepo: deps.AccountRepo,
		Mailer:      deps.Mailer,
		SMSSender:   deps.SMSSender,
		Policy: otp.Policy{
			Digits:         cfg.OTPDigits,
			TTL:            cfg.OTPTTL,
			MaxAttempts:    cfg.OTPMaxAttempts,
			ResendCooldown: cfg.OTPResendCooldown,
			DevCode:        devCode,
		},
	})
	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		SessionRepo: deps.SessionRepo,
	})
	sessionDeps := session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		AccountRepo:     deps.AccountRepo,
		DeviceRepo:      deps.DeviceRepo,
		RefreshTokenDur: cfg.RefreshTokenDur,
	}
	// Leave the signer nil when no provider is configured so the service
	// answers 503 instead of dereferencing a dead provider.
	if deps.JWTProvider != nil {
		sessionDeps.JWTProvider = deps.JWTProvider
	}
	sessionSvc := session.NewService(sessionDeps)
	authSvc := auth.NewService(auth.ServiceDeps{
		OTPService:     otpSvc,
		AccountService: accountSvc,
		SessionService: sessionSvc,
	})
	roleSvc := deps.RoleService()
	mediaLimits := media.Limits{
		ImageMaxBytes:    cfg.UploadImageMaxBytes,
		DocumentMaxBytes: cfg.UploadDocumentMaxBytes,
	}
	mediaSvc := media.NewService(nil, deps.AssetRepo, mediaLimits)
	if deps.S3Store != nil {
		mediaSvc = media.NewService(deps.S3Store, deps.AssetRepo, mediaLimits)
	}

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, otpSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	accountH := handler.NewAccountHandler(accountSvc)
	roleH := handler.NewRoleHandler(roleSvc)
	uploadH := handler.NewUploadHandler(mediaSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/ping", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/{role}/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/{role}/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/{role}/verify-otp", authH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/auth/{role}/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/reset-password", authH.ResetPassword)
		r.Post("/sessions/refresh", sessionH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			// Self or admin, enforced in the handler
			r.Get("/accounts/{id}", accountH.Get)
			r.Put("/accounts/{id}", accountH.Update)

			r.Post("/upload/image", uploadH.UploadImage)
			r.Post("/upload/document", uploadH.UploadDocument)
			r.Delete("/upload/{publicId}", uploadH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/accounts", accountH.List)
				r.Delete("/accounts/{id}", accountH.Delete)

				r.Get("/roles", roleH.List)
				r.Post("/roles", roleH.Create)
				r.Get("/roles/permissions", roleH.Permissions)
				r.Put("/roles/{id}", roleH.Update)
				r.Delete("/roles/{id}", roleH.Delete)
			})
		})
	})

	return r
}
