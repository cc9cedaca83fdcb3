package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/store"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// UserStore is the subset of store.Store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Service registers applicants and issues session tokens.
type Service struct {
	users UserStore
	jwt   *JWTManager
}

// NewService creates a new auth Service.
func NewService(users UserStore, jwt *JWTManager) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates an applicant account. Admin accounts are never created here.
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         models.RoleApplicant,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if n := strings.TrimSpace(name); n != "" {
		u.Name = &n
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.jwt.GenerateAccessToken(IdentityOf(u))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// IdentityOf converts a stored user into the identity carried by its session.
func IdentityOf(u *models.User) models.Identity {
	id := models.Identity{ID: u.ID, Role: u.Role, Email: u.Email}
	if u.Name != nil {
		id.Name = *u.Name
	}
	return id
}
