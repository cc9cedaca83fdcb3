package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListActiveJobs(ctx context.Context) ([]*models.Job, error)
	ListJobsByCreator(ctx context.Context, createdBy uuid.UUID, limit int) ([]*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, createdBy uuid.UUID, status string) error
	GetJobStats(ctx context.Context, createdBy uuid.UUID) (*models.JobStats, error)

	// CreateApplication inserts the application and its first action log
	// entry in one transaction. Returns ErrDuplicateKey when the applicant
	// already applied to the job.
	CreateApplication(ctx context.Context, app *models.Application, log *models.ActionLog) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetApplicationView(ctx context.Context, id uuid.UUID) (*models.ApplicationView, error)
	GetApplicationByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]*models.ApplicationView, int, error)
	ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ApplicationView, error)

	// UpdateApplicationStatus overwrites the status and appends log in one
	// transaction. Returns ErrNotFound if the application does not exist.
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.Status, log *models.ActionLog) error
	// UpdateNotes locks the application row, passes the persisted ledger to
	// fn and stores what fn returns. Returns ErrNotFound if the application
	// does not exist; an error from fn aborts without writing.
	UpdateNotes(ctx context.Context, id uuid.UUID, fn func(current json.RawMessage) (json.RawMessage, error)) error
	ListActionLogs(ctx context.Context, applicationID uuid.UUID) ([]*models.ActionLog, error)
}

// ApplicationFilter narrows the admin application listing. Empty fields
// are not applied.
type ApplicationFilter struct {
	Status models.Status
	JobID  uuid.UUID
	Search string
	Page   int
	Limit  int
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Normalize clamps pagination to sane bounds and returns the effective
// page, limit and row offset.
func (f ApplicationFilter) Normalize() (page, limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page = f.Page
	if page <= 0 {
		page = 1
	}
	return page, limit, (page - 1) * limit
}
