// Package models contains shared data models used across the hireflow codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleApplicant = "APPLICANT"
	RoleAdmin     = "ADMIN"
)

// User is an account. Only the bcrypt hash of the password is stored.
type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	Name         *string   `db:"name"          json:"name,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role"          json:"role"`
	Profile      Profile   `db:"profile_info"  json:"profileInfo"`
	CreatedAt    time.Time `db:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updatedAt"`
}

// Profile is the optional candidate information stored as JSONB.
type Profile struct {
	Phone            string `json:"phone,omitempty"`
	Location         string `json:"location,omitempty"`
	CoverLetter      string `json:"coverLetter,omitempty"`
	Experience       string `json:"experience,omitempty"`
	PreviousRole     string `json:"previousRole,omitempty"`
	CurrentCompany   string `json:"currentCompany,omitempty"`
	ExpectedSalary   string `json:"expectedSalary,omitempty"`
	AvailabilityDate string `json:"availabilityDate,omitempty"`
}

// Identity is the resolved caller of a request.
type Identity struct {
	ID    uuid.UUID
	Role  string
	Name  string
	Email string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// IsApplicant reports whether the caller holds the applicant role.
func (i Identity) IsApplicant() bool { return i.Role == RoleApplicant }
