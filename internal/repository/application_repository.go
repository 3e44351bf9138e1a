package repository

import (
	"context"
	"errors"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/application"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists")
	// ErrStatusChanged means the stored status no longer matches the expected one.
	ErrStatusChanged = errors.New("application status changed concurrently")
)

type ApplicationRepository interface {
	Create(ctx context.Context, a application.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (application.Application, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]application.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to application.Status) (application.Application, error)
	// ScheduleInterview stores the interview and, when the application is still
	// applied, moves it to interview_scheduled.
	ScheduleInterview(ctx context.Context, iv application.Interview) (application.Application, error)
	// ListInterviewsByCandidate returns interviews across the candidate's
	// applications, latest scheduled time first.
	ListInterviewsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Interview, error)
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, candidate_id, status, applied_at, updated_at`

func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) error {
	n, err := r.db.Exec(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, status, applied_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (job_id, candidate_id) DO NOTHING`,
		a.ID, a.JobID, a.CandidateID, string(a.Status), a.AppliedAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationExists
	}
	return nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (application.Application, error) {
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *PostgresApplicationRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE candidate_id = $1 ORDER BY applied_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (r *PostgresApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]application.Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at ASC`, jobID)
	if err != nil {
		return nil, err
	}
	return collectApplications(rows)
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to application.Status) (application.Application, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE applications SET status = $3, updated_at = $4
		 WHERE id = $1 AND status = $2
		 RETURNING `+applicationColumns,
		id, string(from), string(to), time.Now().UTC(),
	)
	a, err := scanApplication(row)
	if errors.Is(err, ErrApplicationNotFound) {
		return application.Application{}, ErrStatusChanged
	}
	return a, err
}

func (r *PostgresApplicationRepository) ScheduleInterview(ctx context.Context, iv application.Interview) (application.Application, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return application.Application{}, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO interviews (id, application_id, scheduled_time, interviewer, notes, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		iv.ID, iv.ApplicationID, iv.ScheduledTime, iv.Interviewer, iv.Notes, iv.CreatedAt,
	)
	if err != nil {
		return application.Application{}, err
	}

	row := tx.QueryRow(ctx,
		`UPDATE applications
		 SET status = CASE WHEN status = $2 THEN $3 ELSE status END,
		     updated_at = $4
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		iv.ApplicationID, string(application.StatusApplied), string(application.StatusInterviewScheduled), iv.CreatedAt,
	)
	a, err := scanApplication(row)
	if err != nil {
		return application.Application{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) ListInterviewsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Interview, error) {
	rows, err := r.db.Query(ctx,
		`SELECT i.id, i.application_id, i.scheduled_time, i.interviewer, COALESCE(i.notes, ''), i.created_at,
		        j.title, c.name
		 FROM interviews i
		 JOIN applications a ON a.id = i.application_id
		 JOIN job_postings j ON j.id = a.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE a.candidate_id = $1
		 ORDER BY i.scheduled_time DESC`,
		candidateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Interview, 0)
	for rows.Next() {
		var iv application.Interview
		err := rows.Scan(
			&iv.ID, &iv.ApplicationID, &iv.ScheduledTime, &iv.Interviewer, &iv.Notes, &iv.CreatedAt,
			&iv.JobTitle, &iv.CompanyName,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func collectApplications(rows database.Rows) ([]application.Application, error) {
	defer rows.Close()

	out := make([]application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanApplication(row database.Row) (application.Application, error) {
	var a application.Application
	var status string
	if err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &status, &a.AppliedAt, &a.UpdatedAt); err != nil {
		if isNoRows(err) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	return a, nil
}
