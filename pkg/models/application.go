package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the persisted, uppercase application status token.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusOnHold   Status = "ON_HOLD"
)

// Statuses lists every valid status token.
var Statuses = []Status{StatusPending, StatusAccepted, StatusRejected, StatusOnHold}

// ParseStatus converts a wire value (any casing) into a Status token.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of pending, accepted, rejected, on_hold", s)
	}
	return st, nil
}

// Valid reports whether s is one of the four known tokens.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusOnHold:
		return true
	}
	return false
}

// Lower returns the display form used outside the database.
func (s Status) Lower() string {
	return strings.ToLower(string(s))
}

// MarshalJSON writes the lowercase display form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Lower())
}

// UnmarshalJSON accepts any casing of a known status.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ActionApplied is logged once when an applicant submits.
const ActionApplied = "APPLIED"

// Application is one candidate's submission to one job posting.
// (UserID, JobID) is unique.
type Application struct {
	ID               uuid.UUID         `db:"id"                 json:"id"`
	JobID            uuid.UUID         `db:"job_id"             json:"jobId"`
	UserID           uuid.UUID         `db:"user_id"            json:"userId"`
	Status           Status            `db:"status"             json:"status"`
	Answers          map[string]string `db:"answers"            json:"answers,omitempty"`
	ResumeURL        *string           `db:"resume_url"         json:"resumeUrl,omitempty"`
	ResumePreviewURL *string           `db:"resume_preview_url" json:"resumePreviewUrl,omitempty"`
	// Notes holds the raw note ledger exactly as persisted.
	Notes     json.RawMessage `db:"notes"      json:"-"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// Note is a human-authored annotation in an application's note ledger.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
}

// ActionLog is a system-authored audit entry. Action holds a Status token
// or ActionApplied.
type ActionLog struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	Seq           int64     `db:"seq"            json:"-"`
	ApplicationID uuid.UUID `db:"application_id" json:"applicationId"`
	Action        string    `db:"action"         json:"action"`
	PerformedBy   uuid.UUID `db:"performed_by"   json:"performedBy"`
	Timestamp     time.Time `db:"timestamp"      json:"timestamp"`
}

// TimelineEntry is the read-only projection shared by notes and action logs.
type TimelineEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
}

// ApplicationView joins an application with the job and candidate columns
// needed by admin listings and the detail page.
type ApplicationView struct {
	Application
	JobTitle       string           `db:"job_title"`
	JobDepartment  string           `db:"job_department"`
	JobLocation    string           `db:"job_location"`
	JobStatus      string           `db:"job_status"`
	JobQuestions   []CustomQuestion `db:"job_custom_fields"`
	CandidateName  *string          `db:"candidate_name"`
	CandidateEmail string           `db:"candidate_email"`
	Profile        Profile          `db:"candidate_profile"`
}
