package repository

import (
	"context"
	"errors"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/candidate"

	"github.com/google/uuid"
)

var ErrCandidateNotFound = errors.New("candidate profile not found")

type CandidateRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (candidate.Profile, error)
	GetByPrincipalID(ctx context.Context, principalID uuid.UUID) (candidate.Profile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]candidate.Profile, error)
	// MergeAnalysis unions skills into the profile and sets the experience
	// level and any contact fields that are still empty.
	MergeAnalysis(ctx context.Context, candidateID uuid.UUID, skills []string, experienceLevel string, contact ContactUpdate) (candidate.Profile, error)
	// UpdateDetails overwrites the owner-editable fields and returns the
	// stored profile.
	UpdateDetails(ctx context.Context, candidateID uuid.UUID, d ProfileDetails) (candidate.Profile, error)
}

type ProfileDetails struct {
	FullName        string
	Phone           string
	Location        string
	ExperienceLevel string
}

type ContactUpdate struct {
	Phone    string
	Location string
}

type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

const candidateColumns = `id, principal_id, full_name, COALESCE(phone, ''), COALESCE(location, ''),
	COALESCE(experience_level, ''), skills, active_resume_id, created_at, updated_at`

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (candidate.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidate_profiles WHERE id = $1`, id)
	return scanCandidate(row)
}

func (r *PostgresCandidateRepository) GetByPrincipalID(ctx context.Context, principalID uuid.UUID) (candidate.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidate_profiles WHERE principal_id = $1`, principalID)
	return scanCandidate(row)
}

func (r *PostgresCandidateRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]candidate.Profile, error) {
	out := make(map[uuid.UUID]candidate.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+candidateColumns+` FROM candidate_profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCandidateRepository) MergeAnalysis(ctx context.Context, candidateID uuid.UUID, skills []string, experienceLevel string, contact ContactUpdate) (candidate.Profile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return candidate.Profile{}, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	row := tx.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidate_profiles WHERE id = $1 FOR UPDATE`, candidateID)
	p, err := scanCandidate(row)
	if err != nil {
		return candidate.Profile{}, err
	}

	p.Skills = candidate.MergeSkills(p.Skills, skills)
	if experienceLevel != "" {
		p.ExperienceLevel = experienceLevel
	}
	if p.Phone == "" {
		p.Phone = contact.Phone
	}
	if p.Location == "" {
		p.Location = contact.Location
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx,
		`UPDATE candidate_profiles
		 SET skills = $2, experience_level = $3, phone = $4, location = $5, updated_at = $6
		 WHERE id = $1`,
		p.ID, nonNilStrings(p.Skills), p.ExperienceLevel, p.Phone, p.Location, p.UpdatedAt,
	)
	if err != nil {
		return candidate.Profile{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return candidate.Profile{}, err
	}
	return p, nil
}

func (r *PostgresCandidateRepository) UpdateDetails(ctx context.Context, candidateID uuid.UUID, d ProfileDetails) (candidate.Profile, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE candidate_profiles
		 SET full_name = $2, phone = $3, location = $4, experience_level = $5, updated_at = $6
		 WHERE id = $1
		 RETURNING `+candidateColumns,
		candidateID, d.FullName, d.Phone, d.Location, d.ExperienceLevel, time.Now().UTC(),
	)
	return scanCandidate(row)
}

func scanCandidate(row database.Row) (candidate.Profile, error) {
	var p candidate.Profile
	err := row.Scan(
		&p.ID, &p.PrincipalID, &p.FullName, &p.Phone, &p.Location,
		&p.ExperienceLevel, &p.Skills, &p.ActiveResumeID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return candidate.Profile{}, ErrCandidateNotFound
		}
		return candidate.Profile{}, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}
