package repository

import (
	"context"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/match"

	"github.com/google/uuid"
)

type RecommendationRepository interface {
	Upsert(ctx context.Context, recs []match.Recommendation) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]match.Recommendation, error)
}

type PostgresRecommendationRepository struct {
	db database.DB
}

func NewPostgresRecommendationRepository(db database.DB) *PostgresRecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

func (r *PostgresRecommendationRepository) Upsert(ctx context.Context, recs []match.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, m := range recs {
		if m.CandidateID == uuid.Nil || m.JobID == uuid.Nil {
			continue
		}
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO recommendations (id, candidate_id, job_id, score, explanation, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (candidate_id, job_id) DO UPDATE SET
				score = EXCLUDED.score,
				explanation = EXCLUDED.explanation,
				created_at = EXCLUDED.created_at`,
			m.ID, m.CandidateID, m.JobID, m.Score, m.Explanation, m.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRecommendationRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, limit int) ([]match.Recommendation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT rc.id, rc.candidate_id, rc.job_id, j.title, c.name, rc.score, rc.explanation, rc.created_at
		 FROM recommendations rc
		 JOIN job_postings j ON j.id = rc.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE rc.candidate_id = $1 AND j.is_active
		 ORDER BY rc.score DESC, rc.created_at DESC
		 LIMIT $2`,
		candidateID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Recommendation, 0)
	for rows.Next() {
		var m match.Recommendation
		if err := rows.Scan(&m.ID, &m.CandidateID, &m.JobID, &m.JobTitle, &m.CompanyName, &m.Score, &m.Explanation, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
