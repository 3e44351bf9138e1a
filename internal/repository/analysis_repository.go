package repository

import (
	"context"
	"encoding/json"
	"errors"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/resume"

	"github.com/google/uuid"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrAnalysisExists   = errors.New("analysis already exists for resume")
)

type AnalysisRepository interface {
	Create(ctx context.Context, a resume.Analysis) error
	GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (resume.Analysis, error)
	GetLatestByCandidates(ctx context.Context, candidateIDs []uuid.UUID) (map[uuid.UUID]resume.Analysis, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]resume.HistoryEntry, error)
}

type PostgresAnalysisRepository struct {
	db database.DB
}

func NewPostgresAnalysisRepository(db database.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

const analysisColumns = `a.id, a.resume_id, a.candidate_id, a.created_at, a.summary, a.strengths, a.gaps,
	a.extracted_skills, a.experience_level, a.job_matches, a.processing_seconds`

func (r *PostgresAnalysisRepository) Create(ctx context.Context, a resume.Analysis) error {
	matches, err := json.Marshal(nonNilMatches(a.JobMatches))
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO analyses (id, resume_id, candidate_id, created_at, summary, strengths, gaps,
			extracted_skills, experience_level, job_matches, processing_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.ResumeID, a.CandidateID, a.CreatedAt, a.Summary,
		nonNilStrings(a.Strengths), nonNilStrings(a.Gaps), nonNilStrings(a.ExtractedSkills),
		a.ExperienceLevel, matches, a.ProcessingSecs,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAnalysisExists
		}
		return err
	}
	return nil
}

func (r *PostgresAnalysisRepository) GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (resume.Analysis, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses a
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC
		 LIMIT 1`,
		candidateID,
	)
	a, err := scanAnalysis(row)
	if err != nil {
		return resume.Analysis{}, err
	}
	return a, nil
}

func (r *PostgresAnalysisRepository) GetLatestByCandidates(ctx context.Context, candidateIDs []uuid.UUID) (map[uuid.UUID]resume.Analysis, error) {
	out := make(map[uuid.UUID]resume.Analysis, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT ON (a.candidate_id) `+analysisColumns+` FROM analyses a
		 WHERE a.candidate_id = ANY($1)
		 ORDER BY a.candidate_id, a.created_at DESC`,
		candidateIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out[a.CandidateID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresAnalysisRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]resume.HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+analysisColumns+`, rs.file_name
		 FROM analyses a
		 JOIN resumes rs ON rs.id = a.resume_id
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC
		 LIMIT $2`,
		candidateID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]resume.HistoryEntry, 0)
	for rows.Next() {
		var e resume.HistoryEntry
		var matches []byte
		a := &e.Analysis
		if err := rows.Scan(
			&a.ID, &a.ResumeID, &a.CandidateID, &a.CreatedAt, &a.Summary, &a.Strengths, &a.Gaps,
			&a.ExtractedSkills, &a.ExperienceLevel, &matches, &a.ProcessingSecs, &e.FileName,
		); err != nil {
			return nil, err
		}
		if err := decodeMatches(matches, a); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAnalysis(row database.Row) (resume.Analysis, error) {
	var a resume.Analysis
	var matches []byte
	err := row.Scan(
		&a.ID, &a.ResumeID, &a.CandidateID, &a.CreatedAt, &a.Summary, &a.Strengths, &a.Gaps,
		&a.ExtractedSkills, &a.ExperienceLevel, &matches, &a.ProcessingSecs,
	)
	if err != nil {
		if isNoRows(err) {
			return resume.Analysis{}, ErrAnalysisNotFound
		}
		return resume.Analysis{}, err
	}
	if err := decodeMatches(matches, &a); err != nil {
		return resume.Analysis{}, err
	}
	return a, nil
}

func decodeMatches(raw []byte, a *resume.Analysis) error {
	a.JobMatches = []resume.JobMatch{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &a.JobMatches)
}

func nonNilMatches(in []resume.JobMatch) []resume.JobMatch {
	if in == nil {
		return []resume.JobMatch{}
	}
	return in
}
