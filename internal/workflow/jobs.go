package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/cache"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

const recentJobsLimit = 5

// JobStore is the persistence the job postings need.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListActiveJobs(ctx context.Context) ([]*models.Job, error)
	ListJobsByCreator(ctx context.Context, createdBy uuid.UUID, limit int) ([]*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, createdBy uuid.UUID, status string) error
	GetJobStats(ctx context.Context, createdBy uuid.UUID) (*models.JobStats, error)
}

// JobInput is a new posting. Field rules are enforced at the HTTP edge;
// the service only normalizes.
type JobInput struct {
	Title           string
	Department      string
	Location        string
	Salary          string
	Description     string
	Requirements    string
	CustomQuestions []models.CustomQuestion
	RequiresResume  bool
}

// JobService manages postings and the admin dashboard counters.
type JobService struct {
	store    JobStore
	cache    cache.Cache
	statsTTL time.Duration
}

// NewJobService creates a JobService. c may be nil, which disables stats
// caching.
func NewJobService(s JobStore, c cache.Cache, statsTTL time.Duration) *JobService {
	return &JobService{store: s, cache: c, statsTTL: statsTTL}
}

// CreateJob publishes a new active posting owned by the caller.
func (s *JobService) CreateJob(ctx context.Context, caller models.Identity, in JobInput) (*models.Job, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	questions := make([]models.CustomQuestion, 0, len(in.CustomQuestions))
	seen := make(map[string]bool, len(in.CustomQuestions))
	for _, q := range in.CustomQuestions {
		q.ID = strings.TrimSpace(q.ID)
		q.Question = strings.TrimSpace(q.Question)
		if q.ID == "" || q.Text() == "" {
			return nil, invalidArgument("custom questions need an id and a question")
		}
		if seen[q.ID] {
			return nil, invalidArgument("duplicate custom question id %q", q.ID)
		}
		seen[q.ID] = true
		questions = append(questions, q)
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(in.Title),
		Department:      strings.TrimSpace(in.Department),
		Location:        strings.TrimSpace(in.Location),
		Salary:          optional(in.Salary),
		Description:     strings.TrimSpace(in.Description),
		Requirements:    optional(in.Requirements),
		CustomQuestions: questions,
		Status:          models.JobStatusActive,
		RequiresResume:  in.RequiresResume,
		CreatedBy:       caller.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, storeError(err, "job")
	}
	s.InvalidateStats(ctx, caller.ID)
	return job, nil
}

// ListActiveJobs returns open postings, newest first.
func (s *JobService) ListActiveJobs(ctx context.Context) ([]*models.Job, error) {
	jobs, err := s.store.ListActiveJobs(ctx)
	if err != nil {
		return nil, storeError(err, "jobs")
	}
	return jobs, nil
}

// GetActiveJob returns an open posting. Closed postings are reported as
// not found.
func (s *JobService) GetActiveJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, storeError(err, "job")
	}
	if job.Status != models.JobStatusActive {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	return job, nil
}

// ListMyJobs returns the caller's postings, newest first. recent limits the
// result to the latest few.
func (s *JobService) ListMyJobs(ctx context.Context, caller models.Identity, recent bool) ([]*models.Job, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	limit := 0
	if recent {
		limit = recentJobsLimit
	}
	jobs, err := s.store.ListJobsByCreator(ctx, caller.ID, limit)
	if err != nil {
		return nil, storeError(err, "jobs")
	}
	return jobs, nil
}

// UpdateJobStatus opens or closes one of the caller's postings. rawStatus
// is "active" or "closed" in any casing.
func (s *JobService) UpdateJobStatus(ctx context.Context, caller models.Identity, id uuid.UUID, rawStatus string) (string, error) {
	if err := requireAdmin(caller); err != nil {
		return "", err
	}
	status := strings.ToUpper(strings.TrimSpace(rawStatus))
	if status != models.JobStatusActive && status != models.JobStatusClosed {
		return "", invalidArgument("status must be active or closed")
	}

	if err := s.store.UpdateJobStatus(ctx, id, caller.ID, status); err != nil {
		return "", storeError(err, "job")
	}
	s.InvalidateStats(ctx, caller.ID)
	return status, nil
}

// Stats returns the dashboard counters for the caller's postings. Cache
// failures are logged and fall through to the database.
func (s *JobService) Stats(ctx context.Context, caller models.Identity) (*models.JobStats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	key := cache.StatsKey(caller.ID)
	if s.cache != nil {
		var cached models.JobStats
		found, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			slog.Warn("stats cache read failed", "admin_id", caller.ID, "error", err)
		}
		if found {
			return &cached, nil
		}
	}

	stats, err := s.store.GetJobStats(ctx, caller.ID)
	if err != nil {
		return nil, storeError(err, "stats")
	}

	if s.cache != nil && s.statsTTL > 0 {
		if err := cache.SetJSON(ctx, s.cache, key, stats, s.statsTTL); err != nil {
			slog.Warn("stats cache write failed", "admin_id", caller.ID, "error", err)
		}
	}
	return stats, nil
}

// InvalidateStats drops the cached counters of adminID.
func (s *JobService) InvalidateStats(ctx context.Context, adminID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.StatsKey(adminID)); err != nil {
		slog.Warn("stats cache invalidation failed", "admin_id", adminID, "error", err)
	}
}

var _ StatsInvalidator = (*JobService)(nil)
