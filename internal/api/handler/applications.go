package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/hireflow/internal/api/middleware"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/internal/workflow"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// ApplicationReader serves the admin listing and detail page.
type ApplicationReader interface {
	ListApplications(ctx context.Context, caller models.Identity, q workflow.ApplicationQuery) (*workflow.ApplicationPage, error)
	GetApplicationDetail(ctx context.Context, caller models.Identity, applicationID uuid.UUID) (*workflow.ApplicationDetail, error)
}

// StatusChanger moves an application between statuses.
type StatusChanger interface {
	ApplyStatusChange(ctx context.Context, caller models.Identity, applicationID uuid.UUID, rawStatus string) (models.Status, error)
}

// NoteKeeper appends to and reads the note ledger.
type NoteKeeper interface {
	AddNote(ctx context.Context, caller models.Identity, applicationID uuid.UUID, content string) (*models.Note, error)
	ListNotes(ctx context.Context, caller models.Identity, applicationID uuid.UUID) ([]models.Note, error)
}

// TimelineReader returns the merged note and action history.
type TimelineReader interface {
	MergedTimeline(ctx context.Context, caller models.Identity, applicationID uuid.UUID) ([]models.TimelineEntry, error)
}

// ResumeOpener streams a stored resume.
type ResumeOpener interface {
	ResumeDownload(ctx context.Context, caller models.Identity, applicationID uuid.UUID) (*workflow.ResumeFile, error)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type noteRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type statusResponse struct {
	ID     string        `json:"id"`
	Status models.Status `json:"status"`
}

// NewListApplicationsHandler returns an http.HandlerFunc for
// GET /api/v1/admin/applications.
func NewListApplicationsHandler(svc ApplicationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		page, ok := queryInt(w, q.Get("page"), "page")
		if !ok {
			return
		}
		limit, ok := queryInt(w, q.Get("limit"), "limit")
		if !ok {
			return
		}

		result, err := svc.ListApplications(r.Context(), id, workflow.ApplicationQuery{
			Status: q.Get("status"),
			JobID:  q.Get("jobId"),
			Search: q.Get("search"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		items := result.Items
		if items == nil {
			items = []workflow.ApplicationSummary{}
		}
		response.Collection(w, items, response.NewPaginationMeta(result.Page, result.Limit, result.Total))
	}
}

// queryInt parses an optional positive integer query parameter. Zero means
// unset.
func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a positive integer", nil)
		return 0, false
	}
	return n, true
}

// NewGetApplicationHandler returns an http.HandlerFunc for
// GET /api/v1/admin/applications/{applicationID}.
func NewGetApplicationHandler(svc ApplicationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		appID, ok := pathUUID(w, r, "applicationID")
		if !ok {
			return
		}
		detail, err := svc.GetApplicationDetail(r.Context(), id, appID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, detail)
	}
}

// NewUpdateStatusHandler returns an http.HandlerFunc for
// PATCH /api/v1/admin/applications/{applicationID}/status.
func NewUpdateStatusHandler(svc StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		appID, ok := pathUUID(w, r, "applicationID")
		if !ok {
			return
		}
		var req statusRequest
		if !bindJSON(w, r, &req) {
			return
		}

		status, err := svc.ApplyStatusChange(r.Context(), id, appID, req.Status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.JSON(w, statusResponse{ID: appID.String(), Status: status})
	}
}

// NewAddNoteHandler returns an http.HandlerFunc for
// POST /api/v1/admin/applications/{applicationID}/notes.
func NewAddNoteHandler(svc NoteKeeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		appID, ok := pathUUID(w, r, "applicationID")
		if !ok {
			return
		}
		var req noteRequest
		if !bindJSON(w, r, &req) {
			return
		}

		note, err := svc.AddNote(r.Context(), id, appID, req.Content)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.Created(w, note)
	}
}

// NewListNotesHandler returns an http.HandlerFunc for
// GET /api/v1/admin/applications/{applicationID}/notes.
func NewListNotesHandler(svc NoteKeeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		appID, ok := pathUUID(w, r, "applicationID")
		if !ok {
			return
		}
		notes, err := svc.ListNotes(r.Context(), id, appID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if notes == nil {
			notes = []models.Note{}
		}
		response.JSON(w, notes)
	}
}

// NewTimelineHandler returns an http.HandlerFunc for
// GET /api/v1/admin/applications/{applicationID}/timeline.
func NewTimelineHandler(svc TimelineReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		appID, ok := pathUUID(w, r, "applicationID")
		if !ok {
			return
		}
		entries, err := svc.MergedTimeline(r.Context(), id, appID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if entries == nil {
			entries = []models.TimelineEntry{}
		}
		response.JSON(w, entries)
	}
}

// NewResumeHandler returns an http.HandlerFunc for
// GET /api/v1/admin/applications/{applicationID}/resume. The file is
// streamed as an attachment.
func NewResumeHandler(svc ResumeOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		appID, ok := pathUUID(w, r, "applicationID")
		if !ok {
			return
		}
		file, err := svc.ResumeDownload(r.Context(), id, appID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		defer file.Body.Close()

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
		w.Header().Set("Cache-Control", "private, no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, file.Body); err != nil {
			slog.Warn("resume stream interrupted",
				"application_id", appID,
				"error", err,
				"request_id", mw.GetRequestID(r.Context()),
			)
		}
	}
}
