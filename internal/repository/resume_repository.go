package repository

import (
	"context"
	"errors"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/resume"

	"github.com/google/uuid"
)

var ErrResumeNotFound = errors.New("resume not found")

type ResumeRepository interface {
	// Create inserts the resume and makes it the candidate's active resume
	// in one transaction.
	Create(ctx context.Context, r resume.Resume) error
	GetByID(ctx context.Context, id uuid.UUID) (resume.Resume, error)
	GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (resume.Resume, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, status resume.Status, reason string) error
	// ListStale returns resumes still queued or processing that were last
	// touched before cutoff.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]resume.Resume, error)
}

type PostgresResumeRepository struct {
	db database.DB
}

func NewPostgresResumeRepository(db database.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{db: db}
}

const resumeColumns = `id, candidate_id, storage_ref, file_name, content_type, size_bytes,
	uploaded_at, updated_at, status, stage, COALESCE(failure_reason, '')`

func (r *PostgresResumeRepository) Create(ctx context.Context, rs resume.Resume) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO resumes (id, candidate_id, storage_ref, file_name, content_type, size_bytes, uploaded_at, updated_at, status, stage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9)`,
		rs.ID, rs.CandidateID, rs.StorageRef, rs.FileName, rs.ContentType, rs.SizeBytes,
		rs.UploadedAt, string(rs.Status), string(rs.Stage),
	)
	if err != nil {
		return err
	}

	n, err := tx.Exec(ctx,
		`UPDATE candidate_profiles SET active_resume_id = $2, updated_at = $3 WHERE id = $1`,
		rs.CandidateID, rs.ID, rs.UploadedAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCandidateNotFound
	}

	return tx.Commit(ctx)
}

func (r *PostgresResumeRepository) GetByID(ctx context.Context, id uuid.UUID) (resume.Resume, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	return scanResume(row)
}

func (r *PostgresResumeRepository) GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (resume.Resume, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE candidate_id = $1 ORDER BY uploaded_at DESC LIMIT 1`,
		candidateID,
	)
	return scanResume(row)
}

func (r *PostgresResumeRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, status resume.Status, reason string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE resumes SET stage = $2, status = $3, failure_reason = NULLIF($4, ''), updated_at = $5 WHERE id = $1`,
		id, string(stage), string(status), reason, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func (r *PostgresResumeRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]resume.Resume, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes
		 WHERE status IN ($1, $2) AND updated_at < $3
		 ORDER BY updated_at ASC
		 LIMIT $4`,
		string(resume.StatusUploaded), string(resume.StatusProcessing), cutoff, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]resume.Resume, 0)
	for rows.Next() {
		rs, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanResume(row database.Row) (resume.Resume, error) {
	var rs resume.Resume
	var status, stage string
	err := row.Scan(
		&rs.ID, &rs.CandidateID, &rs.StorageRef, &rs.FileName, &rs.ContentType, &rs.SizeBytes,
		&rs.UploadedAt, &rs.UpdatedAt, &status, &stage, &rs.FailureReason,
	)
	if err != nil {
		if isNoRows(err) {
			return resume.Resume{}, ErrResumeNotFound
		}
		return resume.Resume{}, err
	}
	rs.Status = resume.Status(status)
	rs.Stage = domain.Stage(stage)
	return rs, nil
}
