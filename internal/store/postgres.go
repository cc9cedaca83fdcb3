package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// psql builds Postgres-flavoured queries with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const (
	userColumns = `id, email, name, password_hash, role, profile_info, created_at, updated_at`

	jobColumns = `j.id, j.title, j.department, j.location, j.salary, j.description, j.requirements,
		j.custom_fields, j.status, j.requires_resume, j.created_by,
		(SELECT COUNT(*) FROM applications c WHERE c.job_id = j.id) AS application_count,
		j.created_at, j.updated_at`

	applicationColumns = `id, job_id, user_id, status, COALESCE(answers, '{}'::jsonb), resume_url,
		resume_preview_url, COALESCE(notes, '[]'::jsonb), created_at, updated_at`

	viewFrom = `applications a JOIN jobs j ON j.id = a.job_id JOIN users u ON u.id = a.user_id`
)

var viewColumns = []string{
	"a.id", "a.job_id", "a.user_id", "a.status", "COALESCE(a.answers, '{}'::jsonb)",
	"a.resume_url", "a.resume_preview_url", "COALESCE(a.notes, '[]'::jsonb)",
	"a.created_at", "a.updated_at",
	"j.title", "j.department", "j.location", "j.status", "j.custom_fields",
	"u.name", "u.email", "u.profile_info",
}

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, profile_info, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Profile, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Profile,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	questions := job.CustomQuestions
	if questions == nil {
		questions = []models.CustomQuestion{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, title, department, location, salary, description, requirements,
		                   custom_fields, status, requires_resume, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		job.ID, job.Title, job.Department, job.Location, job.Salary, job.Description, job.Requirements,
		questions, job.Status, job.RequiresResume, job.CreatedBy, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) ListActiveJobs(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs j WHERE j.status = $1 ORDER BY j.created_at DESC`,
		models.JobStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	return collectJobs(rows)
}

// ListJobsByCreator returns the creator's jobs, newest first. A limit of
// zero or less returns all of them.
func (s *PostgresStore) ListJobsByCreator(ctx context.Context, createdBy uuid.UUID, limit int) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.created_by = $1 ORDER BY j.created_at DESC`
	args := []any{createdBy}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs by creator: %w", err)
	}
	return collectJobs(rows)
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, createdBy uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $3, updated_at = NOW() WHERE id = $1 AND created_by = $2`,
		id, createdBy, status)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetJobStats(ctx context.Context, createdBy uuid.UUID) (*models.JobStats, error) {
	var st models.JobStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		        COUNT(*) FILTER (WHERE status = 'CLOSED')
		 FROM jobs WHERE created_by = $1`, createdBy,
	).Scan(&st.TotalJobs, &st.ActiveJobs, &st.ClosedJobs)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE a.status = 'PENDING')
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE j.created_by = $1`, createdBy,
	).Scan(&st.TotalApplications, &st.PendingApplications)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	return &st, nil
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	if err := row.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Salary, &j.Description,
		&j.Requirements, &j.CustomQuestions, &j.Status, &j.RequiresResume, &j.CreatedBy,
		&j.ApplicationCount, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]*models.Job, error) {
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// --- Applications ---

func (s *PostgresStore) CreateApplication(ctx context.Context, app *models.Application, log *models.ActionLog) error {
	notes := app.Notes
	if len(notes) == 0 {
		notes = json.RawMessage("[]")
	}

	return s.runInTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO applications (id, job_id, user_id, status, answers, resume_url, resume_preview_url,
			                           notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			app.ID, app.JobID, app.UserID, app.Status, app.Answers, app.ResumeURL, app.ResumePreviewURL,
			string(notes), app.CreatedAt, app.UpdatedAt)
		if err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateKey
			}
			return fmt.Errorf("create application: %w", err)
		}
		return insertActionLog(ctx, tx, log)
	})
}

func (s *PostgresStore) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) GetApplicationByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 AND job_id = $2`, userID, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application by user and job: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) GetApplicationView(ctx context.Context, id uuid.UUID) (*models.ApplicationView, error) {
	query, args, err := psql.Select(viewColumns...).From(viewFrom).
		Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build application query: %w", err)
	}

	v, err := scanApplicationView(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application view: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) ListApplications(ctx context.Context, filter ApplicationFilter) ([]*models.ApplicationView, int, error) {
	countQ := psql.Select("COUNT(*)").From(viewFrom)
	dataQ := psql.Select(viewColumns...).From(viewFrom)

	if filter.Status != "" {
		countQ = countQ.Where(squirrel.Eq{"a.status": filter.Status})
		dataQ = dataQ.Where(squirrel.Eq{"a.status": filter.Status})
	}
	if filter.JobID != uuid.Nil {
		countQ = countQ.Where(squirrel.Eq{"a.job_id": filter.JobID})
		dataQ = dataQ.Where(squirrel.Eq{"a.job_id": filter.JobID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		cond := squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"u.email": pattern},
			squirrel.ILike{"j.title": pattern},
		}
		countQ = countQ.Where(cond)
		dataQ = dataQ.Where(cond)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	_, limit, offset := filter.Normalize()
	query, args, err = dataQ.OrderBy("a.created_at DESC", "a.id").
		Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	views, err := collectApplicationViews(rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *PostgresStore) ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ApplicationView, error) {
	query, args, err := psql.Select(viewColumns...).From(viewFrom).
		Where(squirrel.Eq{"a.user_id": userID}).
		OrderBy("a.created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications by user: %w", err)
	}
	return collectApplicationViews(rows)
}

func (s *PostgresStore) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.Status, log *models.ActionLog) error {
	return s.runInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`,
			id, status, log.Timestamp)
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return insertActionLog(ctx, tx, log)
	})
}

func (s *PostgresStore) UpdateNotes(ctx context.Context, id uuid.UUID, fn func(current json.RawMessage) (json.RawMessage, error)) error {
	return s.runInTx(ctx, func(tx pgx.Tx) error {
		var current json.RawMessage
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(notes, '[]'::jsonb) FROM applications WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock application notes: %w", err)
		}

		updated, err := fn(current)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE applications SET notes = $2::jsonb, updated_at = NOW() WHERE id = $1`,
			id, string(updated)); err != nil {
			return fmt.Errorf("update application notes: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListActionLogs(ctx context.Context, applicationID uuid.UUID) ([]*models.ActionLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, seq, application_id, action, performed_by, timestamp
		 FROM action_logs WHERE application_id = $1 ORDER BY seq ASC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.ActionLog{}
	for rows.Next() {
		var l models.ActionLog
		if err := rows.Scan(&l.ID, &l.Seq, &l.ApplicationID, &l.Action, &l.PerformedBy, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scan action log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func insertActionLog(ctx context.Context, tx pgx.Tx, log *models.ActionLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	err := tx.QueryRow(ctx,
		`INSERT INTO action_logs (id, application_id, action, performed_by, timestamp)
		 VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
		log.ID, log.ApplicationID, log.Action, log.PerformedBy, log.Timestamp,
	).Scan(&log.Seq)
	if err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	if err := row.Scan(&a.ID, &a.JobID, &a.UserID, &a.Status, &a.Answers, &a.ResumeURL,
		&a.ResumePreviewURL, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanApplicationView(row rowScanner) (*models.ApplicationView, error) {
	var v models.ApplicationView
	if err := row.Scan(&v.ID, &v.JobID, &v.UserID, &v.Status, &v.Answers, &v.ResumeURL,
		&v.ResumePreviewURL, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
		&v.JobTitle, &v.JobDepartment, &v.JobLocation, &v.JobStatus, &v.JobQuestions,
		&v.CandidateName, &v.CandidateEmail, &v.Profile); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectApplicationViews(rows pgx.Rows) ([]*models.ApplicationView, error) {
	defer rows.Close()

	views := []*models.ApplicationView{}
	for rows.Next() {
		v, err := scanApplicationView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
