package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/workflow"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// JobBoard serves the public listing of open postings.
type JobBoard interface {
	ListActiveJobs(ctx context.Context) ([]*models.Job, error)
	GetActiveJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// JobManager is the admin side of postings.
type JobManager interface {
	CreateJob(ctx context.Context, caller models.Identity, in workflow.JobInput) (*models.Job, error)
	ListMyJobs(ctx context.Context, caller models.Identity, recent bool) ([]*models.Job, error)
	UpdateJobStatus(ctx context.Context, caller models.Identity, id uuid.UUID, rawStatus string) (string, error)
}

// StatsReader returns the admin dashboard counters.
type StatsReader interface {
	Stats(ctx context.Context, caller models.Identity) (*models.JobStats, error)
}

type customFieldRequest struct {
	ID       string `json:"id" validate:"required,max=64"`
	Question string `json:"question" validate:"required,max=500"`
	Label    string `json:"label" validate:"omitempty,max=100"`
}

type createJobRequest struct {
	Title          string               `json:"title" validate:"required,min=2,max=200"`
	Department     string               `json:"department" validate:"required,min=2,max=100"`
	Location       string               `json:"location" validate:"required,min=2,max=100"`
	Salary         string               `json:"salary" validate:"omitempty,max=100"`
	Description    string               `json:"description" validate:"required,min=10"`
	Requirements   string               `json:"requirements"`
	CustomFields   []customFieldRequest `json:"customFields" validate:"omitempty,max=20,dive"`
	RequiresResume bool                 `json:"requiresResume"`
}

type jobStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type jobResponse struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Department       string                  `json:"department"`
	Location         string                  `json:"location"`
	Salary           *string                 `json:"salary,omitempty"`
	Description      string                  `json:"description"`
	Requirements     *string                 `json:"requirements,omitempty"`
	CustomFields     []models.CustomQuestion `json:"customFields"`
	Status           string                  `json:"status"`
	RequiresResume   bool                    `json:"requiresResume"`
	ApplicationCount int                     `json:"applicationCount"`
	CreatedAt        string                  `json:"createdAt"`
}

func toJobResponse(j *models.Job) jobResponse {
	questions := j.CustomQuestions
	if questions == nil {
		questions = []models.CustomQuestion{}
	}
	return jobResponse{
		ID:               j.ID.String(),
		Title:            j.Title,
		Department:       j.Department,
		Location:         j.Location,
		Salary:           j.Salary,
		Description:      j.Description,
		Requirements:     j.Requirements,
		CustomFields:     questions,
		Status:           strings.ToLower(j.Status),
		RequiresResume:   j.RequiresResume,
		ApplicationCount: j.ApplicationCount,
		CreatedAt:        j.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toJobResponses(jobs []*models.Job) []jobResponse {
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	return out
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
func NewListJobsHandler(svc JobBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := svc.ListActiveJobs(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, toJobResponses(jobs))
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(svc JobBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "jobID")
		if !ok {
			return
		}
		job, err := svc.GetActiveJob(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, toJobResponse(job))
	}
}

// NewCreateJobHandler returns an http.HandlerFunc for POST /api/v1/admin/jobs.
func NewCreateJobHandler(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		var req createJobRequest
		if !bindJSON(w, r, &req) {
			return
		}

		questions := make([]models.CustomQuestion, 0, len(req.CustomFields))
		for _, f := range req.CustomFields {
			questions = append(questions, models.CustomQuestion{ID: f.ID, Question: f.Question, Label: f.Label})
		}

		job, err := svc.CreateJob(r.Context(), id, workflow.JobInput{
			Title:           req.Title,
			Department:      req.Department,
			Location:        req.Location,
			Salary:          req.Salary,
			Description:     req.Description,
			Requirements:    req.Requirements,
			CustomQuestions: questions,
			RequiresResume:  req.RequiresResume,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.Created(w, toJobResponse(job))
	}
}

// NewListMyJobsHandler returns an http.HandlerFunc for the admin's own
// postings. With recent set it serves GET /api/v1/admin/jobs/recent.
func NewListMyJobsHandler(svc JobManager, recent bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		jobs, err := svc.ListMyJobs(r.Context(), id, recent)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, toJobResponses(jobs))
	}
}

// NewUpdateJobStatusHandler returns an http.HandlerFunc for
// PATCH /api/v1/admin/jobs/{jobID}/status.
func NewUpdateJobStatusHandler(svc JobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		jobID, ok := pathUUID(w, r, "jobID")
		if !ok {
			return
		}
		var req jobStatusRequest
		if !bindJSON(w, r, &req) {
			return
		}

		status, err := svc.UpdateJobStatus(r.Context(), id, jobID, req.Status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, map[string]string{
			"id":     jobID.String(),
			"status": strings.ToLower(status),
		})
	}
}

// NewStatsHandler returns an http.HandlerFunc for GET /api/v1/admin/stats.
func NewStatsHandler(svc StatsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		stats, err := svc.Stats(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, stats)
	}
}
