package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/workflow"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

const (
	multipartMemory = 8 << 20
	formOverhead    = 1 << 20
)

// Applicant is the applicant side of the workflow.
type Applicant interface {
	Submit(ctx context.Context, caller models.Identity, in workflow.SubmitInput) (*models.Application, error)
	CheckApplication(ctx context.Context, caller models.Identity, jobID uuid.UUID) (*models.Application, error)
	ListMyApplications(ctx context.Context, caller models.Identity) ([]*models.ApplicationView, error)
}

type submitJSONRequest struct {
	JobID   string            `json:"jobId" validate:"required,uuid"`
	Answers map[string]string `json:"answers"`
}

type submittedResponse struct {
	ID        string        `json:"id"`
	JobID     string        `json:"jobId"`
	Status    models.Status `json:"status"`
	HasResume bool          `json:"hasResume"`
	CreatedAt string        `json:"createdAt"`
}

type checkedApplication struct {
	ID        string        `json:"id"`
	Status    models.Status `json:"status"`
	CreatedAt string        `json:"createdAt"`
}

type checkResponse struct {
	Application *checkedApplication `json:"application"`
}

type myApplicationResponse struct {
	ID            string        `json:"id"`
	JobID         string        `json:"jobId"`
	JobTitle      string        `json:"jobTitle"`
	JobDepartment string        `json:"jobDepartment"`
	JobLocation   string        `json:"jobLocation"`
	Status        models.Status `json:"status"`
	AppliedAt     string        `json:"appliedAt"`
	HasResume     bool          `json:"hasResume"`
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/applications.
// It accepts multipart/form-data with jobId, an answers JSON object and an
// optional resume file, or a JSON body without a resume.
func NewSubmitHandler(svc Applicant, maxResumeBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		var in workflow.SubmitInput
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			in, ok = readSubmitJSON(w, r)
		} else {
			in, ok = readSubmitForm(w, r, maxResumeBytes)
		}
		if !ok {
			return
		}

		app, err := svc.Submit(r.Context(), id, in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.Created(w, submittedResponse{
			ID:        app.ID.String(),
			JobID:     app.JobID.String(),
			Status:    app.Status,
			HasResume: app.ResumeURL != nil,
			CreatedAt: app.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

func readSubmitJSON(w http.ResponseWriter, r *http.Request) (workflow.SubmitInput, bool) {
	var req submitJSONRequest
	if !bindJSON(w, r, &req) {
		return workflow.SubmitInput{}, false
	}
	return workflow.SubmitInput{JobID: uuid.MustParse(req.JobID), Answers: req.Answers}, true
}

func readSubmitForm(w http.ResponseWriter, r *http.Request, maxResumeBytes int64) (workflow.SubmitInput, bool) {
	limit := maxResumeBytes + formOverhead
	if r.ContentLength > limit {
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Upload exceeds the size limit", nil)
		return workflow.SubmitInput{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Upload exceeds the size limit", nil)
			return workflow.SubmitInput{}, false
		}
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Expected multipart/form-data", nil)
		return workflow.SubmitInput{}, false
	}
	defer r.MultipartForm.RemoveAll()

	jobID, err := uuid.Parse(strings.TrimSpace(r.FormValue("jobId")))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobId must be a valid UUID", nil)
		return workflow.SubmitInput{}, false
	}
	in := workflow.SubmitInput{JobID: jobID}

	if raw := strings.TrimSpace(r.FormValue("answers")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Answers); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "answers must be a JSON object of strings", nil)
			return workflow.SubmitInput{}, false
		}
	}

	file, header, err := r.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, true
	case err != nil:
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not read resume", nil)
		return workflow.SubmitInput{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not read resume", nil)
		return workflow.SubmitInput{}, false
	}
	in.Resume = &workflow.ResumeUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return in, true
}

// NewCheckApplicationHandler returns an http.HandlerFunc for
// GET /api/v1/applications/check/{jobID}.
func NewCheckApplicationHandler(svc Applicant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		jobID, ok := pathUUID(w, r, "jobID")
		if !ok {
			return
		}
		app, err := svc.CheckApplication(r.Context(), id, jobID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		var resp checkResponse
		if app != nil {
			resp.Application = &checkedApplication{
				ID:        app.ID.String(),
				Status:    app.Status,
				CreatedAt: app.CreatedAt.UTC().Format(time.RFC3339),
			}
		}
		response.JSON(w, resp)
	}
}

// NewMyApplicationsHandler returns an http.HandlerFunc for
// GET /api/v1/me/applications.
func NewMyApplicationsHandler(svc Applicant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		views, err := svc.ListMyApplications(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		out := make([]myApplicationResponse, 0, len(views))
		for _, v := range views {
			out = append(out, myApplicationResponse{
				ID:            v.ID.String(),
				JobID:         v.JobID.String(),
				JobTitle:      v.JobTitle,
				JobDepartment: v.JobDepartment,
				JobLocation:   v.JobLocation,
				Status:        v.Status,
				AppliedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
				HasResume:     v.ResumeURL != nil,
			})
		}
		response.JSON(w, out)
	}
}
