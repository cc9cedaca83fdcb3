package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = errors.New("invalid access token")

// JWTManager signs and validates HS256 session tokens.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// sessionClaims carries the identity fields the workflow needs so that
// handlers never have to reload the user.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// GenerateAccessToken creates a signed token for id and returns it with its expiry.
func (m *JWTManager) GenerateAccessToken(id models.Identity) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.accessTTL)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role:  id.Role,
		Name:  id.Name,
		Email: id.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateAccessToken parses tokenString and returns the identity it carries.
func (m *JWTManager) ValidateAccessToken(tokenString string) (models.Identity, error) {
	if tokenString == "" {
		return models.Identity{}, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: invalid subject: %v", ErrInvalidToken, err)
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleApplicant {
		return models.Identity{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return models.Identity{
		ID:    userID,
		Role:  claims.Role,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
