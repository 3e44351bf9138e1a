package repository

import (
	"context"
	"errors"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/principal"

	"github.com/google/uuid"
)

var (
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrEmailTaken        = errors.New("email already registered")
)

type PrincipalRepository interface {
	// Create stores the principal and, when profile is non-nil, its candidate
	// profile in one transaction.
	Create(ctx context.Context, p principal.Principal, profile *candidate.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (principal.Principal, error)
	GetByEmail(ctx context.Context, email string) (principal.Principal, error)
}

type PostgresPrincipalRepository struct {
	db database.DB
}

func NewPostgresPrincipalRepository(db database.DB) *PostgresPrincipalRepository {
	return &PostgresPrincipalRepository{db: db}
}

func (r *PostgresPrincipalRepository) Create(ctx context.Context, p principal.Principal, profile *candidate.Profile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO principals (id, email, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Email, string(p.Role), p.PasswordHash, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	if profile != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO candidate_profiles (id, principal_id, full_name, phone, location, experience_level, skills, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
			profile.ID, profile.PrincipalID, profile.FullName, profile.Phone, profile.Location,
			profile.ExperienceLevel, nonNilStrings(profile.Skills), profile.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresPrincipalRepository) GetByID(ctx context.Context, id uuid.UUID) (principal.Principal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, role, password_hash, created_at FROM principals WHERE id = $1`, id)
	return scanPrincipal(row)
}

func (r *PostgresPrincipalRepository) GetByEmail(ctx context.Context, email string) (principal.Principal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, role, password_hash, created_at FROM principals WHERE email = $1`, email)
	return scanPrincipal(row)
}

func scanPrincipal(row database.Row) (principal.Principal, error) {
	var p principal.Principal
	var role string
	if err := row.Scan(&p.ID, &p.Email, &role, &p.PasswordHash, &p.CreatedAt); err != nil {
		if isNoRows(err) {
			return principal.Principal{}, ErrPrincipalNotFound
		}
		return principal.Principal{}, err
	}
	p.Role = principal.Role(role)
	return p, nil
}
