package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/internal/storage"
	"github.com/kiranshivaraju/hireflow/internal/store"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// memStore is an in-memory Store and JobStore. Every method holds one
// mutex, so CreateApplication enforces (user, job) uniqueness the way the
// database constraint does and each write is all-or-nothing.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	jobs  map[uuid.UUID]*models.Job
	apps  map[uuid.UUID]*models.Application
	logs  []*models.ActionLog
	seq   int64

	// hideExisting makes the pre-insert lookup miss so only the
	// uniqueness check in CreateApplication can reject a duplicate.
	hideExisting bool
	// logErr fails the action log insert of a status change.
	logErr   error
	statsErr error
	statsHit int
}

func newMemStore() *memStore {
	return &memStore{
		users: map[uuid.UUID]*models.User{},
		jobs:  map[uuid.UUID]*models.Job{},
		apps:  map[uuid.UUID]*models.Application{},
	}
}

func (m *memStore) addUser(name, email string, profile models.Profile) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: email, Role: models.RoleApplicant, Profile: profile}
	if name != "" {
		u.Name = &name
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addJob(status string, questions ...models.CustomQuestion) *models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := &models.Job{
		ID:              uuid.New(),
		Title:           "Backend Engineer",
		Department:      "Engineering",
		Location:        "Berlin",
		Description:     "Build the hiring platform",
		CustomQuestions: questions,
		Status:          status,
		CreatedBy:       uuid.New(),
		CreatedAt:       time.Now().UTC(),
	}
	m.jobs[j.ID] = j
	return j
}

func (m *memStore) addApplication(userID, jobID uuid.UUID, notes string) *models.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &models.Application{
		ID:        uuid.New(),
		JobID:     jobID,
		UserID:    userID,
		Status:    models.StatusPending,
		Answers:   map[string]string{},
		Notes:     json.RawMessage(notes),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.apps[a.ID] = a
	return a
}

func (m *memStore) appCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.apps)
}

func (m *memStore) rawNotes(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.apps[id].Notes)
}

func (m *memStore) logsFor(id uuid.UUID) []*models.ActionLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ActionLog
	for _, l := range m.logs {
		if l.ApplicationID == id {
			c := *l
			out = append(out, &c)
		}
	}
	return out
}

func (m *memStore) appendLog(l *models.ActionLog) {
	m.seq++
	l.Seq = m.seq
	c := *l
	m.logs = append(m.logs, &c)
}

func copyApp(a *models.Application) *models.Application {
	c := *a
	c.Notes = slices.Clone(a.Notes)
	return &c
}

// --- JobStore ---

func (m *memStore) CreateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *memStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *j
	return &c, nil
}

func (m *memStore) ListActiveJobs(_ context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Job{}
	for _, j := range m.jobs {
		if j.Status == models.JobStatusActive {
			c := *j
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) ListJobsByCreator(_ context.Context, createdBy uuid.UUID, limit int) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Job{}
	for _, j := range m.jobs {
		if j.CreatedBy == createdBy {
			c := *j
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateJobStatus(_ context.Context, id uuid.UUID, createdBy uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.CreatedBy != createdBy {
		return store.ErrNotFound
	}
	j.Status = status
	return nil
}

func (m *memStore) GetJobStats(_ context.Context, createdBy uuid.UUID) (*models.JobStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsHit++
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	var st models.JobStats
	for _, j := range m.jobs {
		if j.CreatedBy != createdBy {
			continue
		}
		st.TotalJobs++
		if j.Status == models.JobStatusActive {
			st.ActiveJobs++
		} else {
			st.ClosedJobs++
		}
		for _, a := range m.apps {
			if a.JobID == j.ID {
				st.TotalApplications++
				if a.Status == models.StatusPending {
					st.PendingApplications++
				}
			}
		}
	}
	return &st, nil
}

// --- Store ---

func (m *memStore) CreateApplication(_ context.Context, app *models.Application, log *models.ActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.UserID == app.UserID && a.JobID == app.JobID {
			return store.ErrDuplicateKey
		}
	}
	c := copyApp(app)
	if len(c.Notes) == 0 {
		c.Notes = json.RawMessage("[]")
	}
	m.apps[app.ID] = c
	m.appendLog(log)
	return nil
}

func (m *memStore) GetApplication(_ context.Context, id uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyApp(a), nil
}

func (m *memStore) view(a *models.Application) *models.ApplicationView {
	v := &models.ApplicationView{Application: *copyApp(a)}
	if j, ok := m.jobs[a.JobID]; ok {
		v.JobTitle = j.Title
		v.JobDepartment = j.Department
		v.JobLocation = j.Location
		v.JobStatus = j.Status
		v.JobQuestions = j.CustomQuestions
	}
	if u, ok := m.users[a.UserID]; ok {
		v.CandidateName = u.Name
		v.CandidateEmail = u.Email
		v.Profile = u.Profile
	}
	return v
}

func (m *memStore) GetApplicationView(_ context.Context, id uuid.UUID) (*models.ApplicationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.view(a), nil
}

func (m *memStore) GetApplicationByUserAndJob(_ context.Context, userID, jobID uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideExisting {
		return nil, store.ErrNotFound
	}
	for _, a := range m.apps {
		if a.UserID == userID && a.JobID == jobID {
			return copyApp(a), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListApplications(_ context.Context, f store.ApplicationFilter) ([]*models.ApplicationView, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.ApplicationView
	for _, a := range m.apps {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.JobID != uuid.Nil && a.JobID != f.JobID {
			continue
		}
		v := m.view(a)
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			name := ""
			if v.CandidateName != nil {
				name = *v.CandidateName
			}
			hay := strings.ToLower(name + " " + v.CandidateEmail + " " + v.JobTitle)
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		all = append(all, v)
	}
	slices.SortFunc(all, func(a, b *models.ApplicationView) int { return b.CreatedAt.Compare(a.CreatedAt) })

	_, limit, offset := f.Normalize()
	page := []*models.ApplicationView{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		page = append(page, all[i])
	}
	return page, len(all), nil
}

func (m *memStore) ListApplicationsByUser(_ context.Context, userID uuid.UUID) ([]*models.ApplicationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.ApplicationView{}
	for _, a := range m.apps {
		if a.UserID == userID {
			out = append(out, m.view(a))
		}
	}
	return out, nil
}

func (m *memStore) UpdateApplicationStatus(_ context.Context, id uuid.UUID, status models.Status, log *models.ActionLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return store.ErrNotFound
	}
	if m.logErr != nil {
		return m.logErr
	}
	a.Status = status
	a.UpdatedAt = log.Timestamp
	m.appendLog(log)
	return nil
}

func (m *memStore) UpdateNotes(_ context.Context, id uuid.UUID, fn func(current json.RawMessage) (json.RawMessage, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return store.ErrNotFound
	}
	updated, err := fn(slices.Clone(a.Notes))
	if err != nil {
		return err
	}
	a.Notes = updated
	return nil
}

func (m *memStore) ListActionLogs(_ context.Context, applicationID uuid.UUID) ([]*models.ActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.ActionLog{}
	for _, l := range m.logs {
		if l.ApplicationID == applicationID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

// memFiles is an in-memory storage.FileStore.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	openErr error
	deleted []string
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (f *memFiles) Put(_ context.Context, name string, content []byte, _ string) (*storage.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	url := "mem://" + name
	f.objects[url] = slices.Clone(content)
	return &storage.StoredFile{Key: name, URL: url}, nil
}

func (f *memFiles) Open(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	b, ok := f.objects[url]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *memFiles) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, url)
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *memFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// recordingStats counts invalidations.
type recordingStats struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingStats) InvalidateStats(_ context.Context, adminID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, adminID)
}

var errBoom = errors.New("boom")

var testPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func adminCaller() models.Identity {
	return models.Identity{ID: uuid.New(), Role: models.RoleAdmin, Name: "Grace Hopper", Email: "grace@example.com"}
}

func applicantCaller(u *models.User) models.Identity {
	id := models.Identity{ID: u.ID, Role: models.RoleApplicant, Email: u.Email}
	if u.Name != nil {
		id.Name = *u.Name
	}
	return id
}

// fixedClock returns a clock that advances by one second per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestService() (*Service, *memStore, *memFiles) {
	st := newMemStore()
	files := newMemFiles()
	svc := NewService(st, files, Options{ResumeMaxBytes: 1 << 20})
	svc.now = fixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return svc, st, files
}
