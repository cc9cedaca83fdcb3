package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/storage"
	"github.com/kiranshivaraju/hireflow/internal/store"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// ResumeUpload is a resume file as received from the applicant.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitInput is an applicant's submission to one job.
type SubmitInput struct {
	JobID   uuid.UUID
	Answers map[string]string
	Resume  *ResumeUpload
}

// Submit creates the caller's application to a job together with its
// APPLIED log entry. The (applicant, job) uniqueness is enforced by the
// store; the lookup here only gives a faster Conflict.
func (s *Service) Submit(ctx context.Context, caller models.Identity, in SubmitInput) (*models.Application, error) {
	if err := requireApplicant(caller); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, in.JobID)
	if err != nil {
		return nil, storeError(err, "job")
	}
	if job.Status != models.JobStatusActive {
		return nil, fmt.Errorf("%w: job is not accepting applications", ErrNotFound)
	}

	_, err = s.store.GetApplicationByUserAndJob(ctx, caller.ID, in.JobID)
	switch {
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return nil, storeError(err, "application")
	}

	if in.Resume == nil && job.RequiresResume {
		return nil, invalidArgument("this job requires a resume")
	}
	if in.Resume != nil {
		if err := storage.ValidateResume(in.Resume.ContentType, in.Resume.Data, s.resumeMaxBytes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}

	now := s.now()
	app := &models.Application{
		ID:        uuid.New(),
		JobID:     job.ID,
		UserID:    caller.ID,
		Status:    models.StatusPending,
		Answers:   cleanAnswers(in.Answers),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var uploaded *storage.StoredFile
	if in.Resume != nil {
		name := fmt.Sprintf("%s/%s.pdf", caller.ID, app.ID)
		uploaded, err = s.files.Put(ctx, name, in.Resume.Data, storage.ResumeContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDependencyFailure, err)
		}
		app.ResumeURL = &uploaded.URL
		app.ResumePreviewURL = uploaded.PreviewURL
	}

	entry := &models.ActionLog{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Action:        models.ActionApplied,
		PerformedBy:   caller.ID,
		Timestamp:     now,
	}
	if err := s.store.CreateApplication(ctx, app, entry); err != nil {
		if uploaded != nil {
			s.discardUpload(ctx, uploaded)
		}
		return nil, storeError(err, "application")
	}

	if s.stats != nil {
		s.stats.InvalidateStats(ctx, job.CreatedBy)
	}
	return app, nil
}

// discardUpload removes a resume whose application was never created.
func (s *Service) discardUpload(ctx context.Context, f *storage.StoredFile) {
	if err := s.files.Delete(context.WithoutCancel(ctx), f.URL); err != nil {
		slog.Warn("failed to remove orphaned resume",
			"url", f.URL,
			"error", err,
		)
	}
}

func cleanAnswers(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// CheckApplication returns the caller's application to jobID, or nil if
// there is none.
func (s *Service) CheckApplication(ctx context.Context, caller models.Identity, jobID uuid.UUID) (*models.Application, error) {
	if err := requireApplicant(caller); err != nil {
		return nil, err
	}
	app, err := s.store.GetApplicationByUserAndJob(ctx, caller.ID, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "application")
	}
	return app, nil
}

// ListMyApplications returns the caller's own applications, newest first.
func (s *Service) ListMyApplications(ctx context.Context, caller models.Identity) ([]*models.ApplicationView, error) {
	if err := requireApplicant(caller); err != nil {
		return nil, err
	}
	views, err := s.store.ListApplicationsByUser(ctx, caller.ID)
	if err != nil {
		return nil, storeError(err, "applications")
	}
	return views, nil
}
