package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/go-chi/render"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeOK(w http.ResponseWriter, r *http.Request, message string, data any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Success: false, Message: message})
}

// writeError maps err onto a status code and a caller-safe message.
// Internal details never leave the server; they are logged by the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusUnauthorized && !errors.Is(err, common.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="authkeeper"`)
	}
	writeFail(w, r, status, msg)
}

func statusOf(err error) int {
	status, _ := classify(err)
	return status
}

func classify(err error) (int, string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, common.ErrDuplicateCredential):
		return http.StatusBadRequest, common.ErrDuplicateCredential.Error()
	case errors.Is(err, common.ErrInvalidOrExpiredOTP):
		return http.StatusBadRequest, common.ErrInvalidOrExpiredOTP.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, unauthorizedMessage(err)
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests, try again later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "not authenticated"
	case errors.Is(err, auth.ErrUserGone):
		return "user no longer exists"
	default:
		return "invalid or expired token"
	}
}

func seconds(n int64) string { return strconv.FormatInt(n, 10) }
