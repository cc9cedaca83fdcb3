package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/auth"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// Registrar creates applicant accounts.
type Registrar interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
}

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
	Role  string  `json:"role"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID.String(), Email: u.Email, Name: u.Name, Role: strings.ToLower(u.Role)}
}

// NewRegisterHandler returns an http.HandlerFunc for POST /api/v1/auth/register.
func NewRegisterHandler(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !bindJSON(w, r, &req) {
			return
		}

		user, err := svc.Register(r.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists", nil)
				return
			}
			writeServiceError(w, r, err)
			return
		}

		response.Created(w, toUserResponse(user))
	}
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/auth/login.
func NewLoginHandler(svc Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !bindJSON(w, r, &req) {
			return
		}

		session, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
				return
			}
			writeServiceError(w, r, err)
			return
		}

		response.JSON(w, sessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
			User:      toUserResponse(session.User),
		})
	}
}
