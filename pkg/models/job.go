package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusActive = "ACTIVE"
	JobStatusClosed = "CLOSED"
)

// CustomQuestion is an extra question an applicant answers when applying.
// Label is accepted as a fallback for Question on older postings.
type CustomQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Label    string `json:"label,omitempty"`
}

// Text returns the question wording shown to reviewers.
func (q CustomQuestion) Text() string {
	if q.Question != "" {
		return q.Question
	}
	return q.Label
}

// Job is a posting created by an admin. Applications reference it by ID.
type Job struct {
	ID               uuid.UUID        `db:"id"               json:"id"`
	Title            string           `db:"title"            json:"title"`
	Department       string           `db:"department"       json:"department"`
	Location         string           `db:"location"         json:"location"`
	Salary           *string          `db:"salary"           json:"salary,omitempty"`
	Description      string           `db:"description"      json:"description"`
	Requirements     *string          `db:"requirements"     json:"requirements,omitempty"`
	CustomQuestions  []CustomQuestion `db:"custom_fields"    json:"customFields"`
	Status           string           `db:"status"           json:"status"`
	RequiresResume   bool             `db:"requires_resume"  json:"requiresResume"`
	CreatedBy        uuid.UUID        `db:"created_by"       json:"createdBy"`
	ApplicationCount int              `db:"application_count" json:"applicationCount"`
	CreatedAt        time.Time        `db:"created_at"       json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at"       json:"updatedAt"`
}

// JobStats are the dashboard counters for the jobs one admin created.
type JobStats struct {
	TotalJobs           int `json:"totalJobs"`
	ActiveJobs          int `json:"activeJobs"`
	ClosedJobs          int `json:"closedJobs"`
	TotalApplications   int `json:"totalApplications"`
	PendingApplications int `json:"pendingApplications"`
}
