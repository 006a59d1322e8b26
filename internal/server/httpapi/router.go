// Package httpapi exposes the account and password-recovery operations as a
// JSON API over HTTP.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators served by the router.
type Deps struct {
	Accounts      Accounts
	Recovery      Recovery
	Authenticator Authenticator
	Limiter       Admitter
	Logger        logging.Logger

	AllowedOrigins    []string
	TrustProxyHeaders bool
}

// NewRouter mounts every route twice: at the root and under the /api
// prefixes older clients use.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handlers{accounts: d.Accounts, recovery: d.Recovery, logger: d.Logger}
	limited := RateLimit(d.Limiter, d.TrustProxyHeaders)
	authed := RequireAuth(d.Authenticator, d.Logger)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{common.RequestIDHeaderName, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", h.root)

	authRoutes := func(r chi.Router) {
		r.With(limited).Post("/register", h.register)
		r.With(limited).Post("/login", h.login)
		r.With(limited).Post("/forgot-password", h.forgotPassword)
		r.With(limited).Post("/verify-otp", h.verifyOTP)
		r.With(limited).Post("/reset-password", h.resetPassword)
		r.With(authed).Get("/me", h.me)
	}
	protectedRoutes := func(r chi.Router) {
		r.Use(authed)
		r.Get("/profile", h.profile)
		r.Get("/dashboard", h.dashboard)
	}

	r.Group(authRoutes)
	r.Route("/protected", protectedRoutes)
	r.Route("/api/auth", authRoutes)
	r.Route("/api/protected", protectedRoutes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
