package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/store"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

const (
	unknownCandidate = "Unknown"
	notSpecified     = "Not specified"
	noAnswer         = "No answer provided"
	filterAll        = "all"
)

// CustomResponse pairs a job question with the applicant's answer.
type CustomResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ApplicationDetail is the admin detail view of one application.
type ApplicationDetail struct {
	ID                uuid.UUID              `json:"id"`
	JobID             uuid.UUID              `json:"jobId"`
	JobTitle          string                 `json:"jobTitle"`
	JobDepartment     string                 `json:"jobDepartment"`
	CandidateName     string                 `json:"candidateName"`
	CandidateEmail    string                 `json:"candidateEmail"`
	CandidatePhone    *string                `json:"candidatePhone,omitempty"`
	CandidateLocation string                 `json:"candidateLocation"`
	AppliedAt         time.Time              `json:"appliedAt"`
	Status            string                 `json:"status"`
	Resume            *string                `json:"resume,omitempty"`
	ResumePreviewURL  *string                `json:"resumePreviewUrl,omitempty"`
	CoverLetter       *string                `json:"coverLetter,omitempty"`
	Experience        string                 `json:"experience"`
	PreviousRole      *string                `json:"previousRole,omitempty"`
	CurrentCompany    *string                `json:"currentCompany,omitempty"`
	ExpectedSalary    *string                `json:"expectedSalary,omitempty"`
	AvailabilityDate  *string                `json:"availabilityDate,omitempty"`
	CustomResponses   []CustomResponse       `json:"customResponses,omitempty"`
	Notes             []models.TimelineEntry `json:"notes"`
}

// ApplicationSummary is one row of the admin application listing.
type ApplicationSummary struct {
	ID             uuid.UUID `json:"id"`
	JobID          uuid.UUID `json:"jobId"`
	JobTitle       string    `json:"jobTitle"`
	JobDepartment  string    `json:"jobDepartment"`
	CandidateName  string    `json:"candidateName"`
	CandidateEmail string    `json:"candidateEmail"`
	Status         string    `json:"status"`
	AppliedAt      time.Time `json:"appliedAt"`
	HasResume      bool      `json:"hasResume"`
}

// ApplicationQuery holds the raw admin list filters. "all" or an empty
// value disables a filter.
type ApplicationQuery struct {
	Status string
	JobID  string
	Search string
	Page   int
	Limit  int
}

// ApplicationPage is one page of the admin listing.
type ApplicationPage struct {
	Items []ApplicationSummary
	Page  int
	Limit int
	Total int
}

// ListApplications returns the filtered admin listing, newest first.
func (s *Service) ListApplications(ctx context.Context, caller models.Identity, q ApplicationQuery) (*ApplicationPage, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	filter := store.ApplicationFilter{Search: strings.TrimSpace(q.Search), Page: q.Page, Limit: q.Limit}
	if raw := strings.TrimSpace(q.Status); raw != "" && !strings.EqualFold(raw, filterAll) {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return nil, invalidArgument("%v", err)
		}
		filter.Status = st
	}
	if raw := strings.TrimSpace(q.JobID); raw != "" && !strings.EqualFold(raw, filterAll) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalidArgument("jobId must be a UUID")
		}
		filter.JobID = id
	}

	views, total, err := s.store.ListApplications(ctx, filter)
	if err != nil {
		return nil, storeError(err, "applications")
	}

	page, limit, _ := filter.Normalize()
	items := make([]ApplicationSummary, 0, len(views))
	for _, v := range views {
		items = append(items, ApplicationSummary{
			ID:             v.ID,
			JobID:          v.JobID,
			JobTitle:       v.JobTitle,
			JobDepartment:  v.JobDepartment,
			CandidateName:  candidateName(v),
			CandidateEmail: v.CandidateEmail,
			Status:         v.Status.Lower(),
			AppliedAt:      v.CreatedAt,
			HasResume:      v.ResumeURL != nil,
		})
	}
	return &ApplicationPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

// GetApplicationDetail assembles the admin detail view, including the
// merged timeline.
func (s *Service) GetApplicationDetail(ctx context.Context, caller models.Identity, applicationID uuid.UUID) (*ApplicationDetail, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	v, err := s.store.GetApplicationView(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "application")
	}
	timeline, err := s.timelineFor(ctx, v.ID, v.Notes)
	if err != nil {
		return nil, err
	}

	p := v.Profile
	d := &ApplicationDetail{
		ID:                v.ID,
		JobID:             v.JobID,
		JobTitle:          v.JobTitle,
		JobDepartment:     v.JobDepartment,
		CandidateName:     candidateName(v),
		CandidateEmail:    v.CandidateEmail,
		CandidatePhone:    optional(p.Phone),
		CandidateLocation: firstNonEmpty(p.Location, v.JobLocation, notSpecified),
		AppliedAt:         v.CreatedAt,
		Status:            v.Status.Lower(),
		Resume:            v.ResumeURL,
		ResumePreviewURL:  v.ResumePreviewURL,
		CoverLetter:       optional(p.CoverLetter),
		Experience:        firstNonEmpty(p.Experience, notSpecified),
		PreviousRole:      optional(p.PreviousRole),
		CurrentCompany:    optional(p.CurrentCompany),
		ExpectedSalary:    optional(p.ExpectedSalary),
		AvailabilityDate:  optional(p.AvailabilityDate),
		CustomResponses:   customResponses(v.JobQuestions, v.Answers),
		Notes:             timeline,
	}
	return d, nil
}

func customResponses(questions []models.CustomQuestion, answers map[string]string) []CustomResponse {
	if len(questions) == 0 {
		return nil
	}
	out := make([]CustomResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, CustomResponse{
			Question: q.Text(),
			Answer:   firstNonEmpty(answers[q.ID], noAnswer),
		})
	}
	return out
}

func candidateName(v *models.ApplicationView) string {
	if v.CandidateName != nil {
		return firstNonEmpty(*v.CandidateName, unknownCandidate)
	}
	return unknownCandidate
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
