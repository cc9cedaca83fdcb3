package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/auth"
	"github.com/kiranshivaraju/hireflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccounts struct {
	users map[string]*models.User
}

func (m *mockAccounts) Register(_ context.Context, email, _, name string) (*models.User, error) {
	email = strings.ToLower(email)
	if _, ok := m.users[email]; ok {
		return nil, auth.ErrEmailTaken
	}
	u := &models.User{ID: uuid.New(), Email: email, Role: models.RoleApplicant}
	if name != "" {
		u.Name = &name
	}
	m.users[email] = u
	return u, nil
}

func (m *mockAccounts) Login(_ context.Context, email, password string) (*auth.Session, error) {
	u, ok := m.users[strings.ToLower(email)]
	if !ok || password != "correct-horse" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Session{Token: "tok", ExpiresAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), User: u}, nil
}

func TestRegisterHandler(t *testing.T) {
	svc := &mockAccounts{users: map[string]*models.User{}}
	body := map[string]string{"email": "Ada@Example.com", "password": "correct-horse", "name": "Ada"}

	w := serve(NewRegisterHandler(svc), jsonRequest(t, http.MethodPost, "/", body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got userResponse
	dataOf(t, w, &got)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "applicant", got.Role)
	assert.NotContains(t, w.Body.String(), "password")

	w = serve(NewRegisterHandler(svc), jsonRequest(t, http.MethodPost, "/", body))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_TAKEN", errorOf(t, w).Error.Code)
}

func TestRegisterHandler_Validation(t *testing.T) {
	svc := &mockAccounts{users: map[string]*models.User{}}
	w := serve(NewRegisterHandler(svc), jsonRequest(t, http.MethodPost, "/", map[string]string{"email": "nope", "password": "short"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := errorOf(t, w).Error.Details
	assert.Equal(t, "email", details["email"])
	assert.Equal(t, "min=8", details["password"])
}

func TestLoginHandler(t *testing.T) {
	svc := &mockAccounts{users: map[string]*models.User{
		"ada@example.com": {ID: uuid.New(), Email: "ada@example.com", Role: models.RoleApplicant},
	}}

	w := serve(NewLoginHandler(svc), jsonRequest(t, http.MethodPost, "/", map[string]string{"email": "ada@example.com", "password": "correct-horse"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got sessionResponse
	dataOf(t, w, &got)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "2025-01-02T00:00:00Z", got.ExpiresAt)

	w = serve(NewLoginHandler(svc), jsonRequest(t, http.MethodPost, "/", map[string]string{"email": "ada@example.com", "password": "wrong-pass"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorOf(t, w).Error.Code)
}
