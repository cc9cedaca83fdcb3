// Package workflow implements the recruiting core: submissions, the status
// workflow with its action log, the note ledger and the merged timeline.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/storage"
	"github.com/kiranshivaraju/hireflow/internal/store"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// Store is the persistence the application workflow needs.
type Store interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	CreateApplication(ctx context.Context, app *models.Application, log *models.ActionLog) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetApplicationView(ctx context.Context, id uuid.UUID) (*models.ApplicationView, error)
	GetApplicationByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Application, error)
	ListApplications(ctx context.Context, filter store.ApplicationFilter) ([]*models.ApplicationView, int, error)
	ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ApplicationView, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.Status, log *models.ActionLog) error
	UpdateNotes(ctx context.Context, id uuid.UUID, fn func(current json.RawMessage) (json.RawMessage, error)) error
	ListActionLogs(ctx context.Context, applicationID uuid.UUID) ([]*models.ActionLog, error)
}

// StatsInvalidator drops cached dashboard counters after a write.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, adminID uuid.UUID)
}

// Options tunes a Service. Zero values are usable.
type Options struct {
	ResumeMaxBytes int64
	Stats          StatsInvalidator
}

// Service runs the application workflow. It is safe for concurrent use;
// all shared state lives in the Store.
type Service struct {
	store          Store
	files          storage.FileStore
	stats          StatsInvalidator
	resumeMaxBytes int64
	now            func() time.Time
}

// NewService creates a new workflow Service.
func NewService(s Store, files storage.FileStore, opts Options) *Service {
	return &Service{
		store:          s,
		files:          files,
		stats:          opts.Stats,
		resumeMaxBytes: opts.ResumeMaxBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func requireAdmin(caller models.Identity) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrUnauthorized)
	}
	return nil
}

func requireApplicant(caller models.Identity) error {
	if !caller.IsApplicant() {
		return fmt.Errorf("%w: applicant role required", ErrUnauthorized)
	}
	return nil
}
