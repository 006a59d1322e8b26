package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/go-chi/render"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, plain string) (*services.LoginResult, error)
}

type Recovery interface {
	RequestReset(ctx context.Context, email string) (string, error)
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type Admitter interface {
	Reserve(key string) ratelimit.Decision
}

type handlers struct {
	accounts Accounts
	recovery Recovery
	logger   logging.Logger
}

type userView struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type tokenView struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	User        userView `json:"user"`
}

// decode reads a JSON body into v and validates it.
func decode[T interface{ validate() error }](w http.ResponseWriter, r *http.Request, v T) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return invalid("body", "must be a valid JSON object")
	}
	return v.validate()
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Auth API is running",
		"version": Version,
	})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	writeOK(w, r, "user registered successfully", viewOf(user))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	writeOK(w, r, "login successful", tokenView{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   int64(res.ExpiresIn.Seconds()),
		User:        viewOf(res.User),
	})
}

func (h *handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.recovery.RequestReset(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, "forgot password", err)
		return
	}

	writeOK(w, r, msg, nil)
}

func (h *handlers) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.recovery.VerifyCode(r.Context(), req.Email, req.OTPCode); err != nil {
		h.fail(w, r, "verify code", err)
		return
	}

	writeOK(w, r, "code verified", nil)
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.recovery.ResetPassword(r.Context(), req.Email, req.OTPCode, req.NewPassword); err != nil {
		h.fail(w, r, "reset password", err)
		return
	}

	writeOK(w, r, "password updated successfully", nil)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, "current user", viewOf(UserFromContext(r.Context())))
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, "user profile", viewOf(UserFromContext(r.Context())))
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	u := UserFromContext(r.Context())
	writeOK(w, r, "welcome to your dashboard, "+u.Name, map[string]any{
		"user": map[string]any{"id": u.ID, "name": u.Name},
		"stats": map[string]any{
			"member_since": u.CreatedAt,
		},
	})
}

// fail logs server-side failures and writes the mapped response.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if status := statusOf(err); status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), op+" failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	writeError(w, r, err)
}
