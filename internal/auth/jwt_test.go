package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, "hireflow", time.Hour)
	id := models.Identity{ID: uuid.New(), Role: models.RoleAdmin, Name: "Grace", Email: "grace@example.com"}

	token, expires, err := m.GenerateAccessToken(id)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager(testSecret, "hireflow", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, _, err := m.GenerateAccessToken(models.Identity{ID: uuid.New(), Role: models.RoleApplicant})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_WrongIssuer(t *testing.T) {
	signer := NewJWTManager(testSecret, "someone-else", time.Hour)
	verifier := NewJWTManager(testSecret, "hireflow", time.Hour)

	token, _, err := signer.GenerateAccessToken(models.Identity{ID: uuid.New(), Role: models.RoleApplicant})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	signer := NewJWTManager("ffffffffffffffffffffffffffffffff", "hireflow", time.Hour)
	verifier := NewJWTManager(testSecret, "hireflow", time.Hour)

	token, _, err := signer.GenerateAccessToken(models.Identity{ID: uuid.New(), Role: models.RoleApplicant})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsUnknownRole(t *testing.T) {
	m := NewJWTManager(testSecret, "hireflow", time.Hour)

	token, _, err := m.GenerateAccessToken(models.Identity{ID: uuid.New(), Role: "SUPERUSER"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsNonUUIDSubject(t *testing.T) {
	m := NewJWTManager(testSecret, "hireflow", time.Hour)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "hireflow",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: models.RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsMissingExpiry(t *testing.T) {
	m := NewJWTManager(testSecret, "hireflow", time.Hour)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), Issuer: "hireflow"},
		Role:             models.RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_EmptyToken(t *testing.T) {
	m := NewJWTManager(testSecret, "hireflow", time.Hour)

	_, err := m.ValidateAccessToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
