package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"jobmatch/internal/database"
	"jobmatch/internal/domain/job"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrCompanyNotFound = errors.New("company not found")
)

type JobListFilter struct {
	Search    string
	Location  string
	Type      string
	CompanyID uuid.UUID
	Limit     int
	Offset    int
}

type JobRepository interface {
	Create(ctx context.Context, j job.Posting) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error)
	ListActive(ctx context.Context) ([]job.Posting, error)
	List(ctx context.Context, f JobListFilter) ([]job.Posting, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CompanyRepository interface {
	Create(ctx context.Context, c job.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Company, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]job.Company, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `j.id, j.company_id, c.name, j.title, j.location, j.type, COALESCE(j.salary_range, ''),
	j.description, j.requirements, j.benefits, j.is_active, j.created_at`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Posting) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_postings (id, company_id, title, location, type, salary_range, description, requirements, benefits, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)`,
		j.ID, j.CompanyID, j.Title, j.Location, string(j.Type), j.SalaryRange, j.Description,
		nonNilStrings(j.Requirements), nonNilStrings(j.Benefits), j.IsActive, j.CreatedAt,
	)
	return err
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_postings j JOIN companies c ON c.id = j.company_id WHERE j.id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return job.Posting{}, ErrJobNotFound
		}
		return job.Posting{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) ListActive(ctx context.Context) ([]job.Posting, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings j JOIN companies c ON c.id = j.company_id
		 WHERE j.is_active
		 ORDER BY j.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *PostgresJobRepository) List(ctx context.Context, f JobListFilter) ([]job.Posting, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 50 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := []string{"j.is_active"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(j.title ILIKE ? OR j.description ILIKE ?)", "%"+s+"%")
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		add("j.location ILIKE ?", "%"+l+"%")
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		add("j.type = ?", t)
	}
	if f.CompanyID != uuid.Nil {
		add("j.company_id = ?", f.CompanyID)
	}

	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + jobColumns + ` FROM job_postings j JOIN companies c ON c.id = j.company_id
		 WHERE ` + strings.Join(where, " AND ") + `
		 ORDER BY j.created_at DESC
		 LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *PostgresJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func collectJobs(rows database.Rows) ([]job.Posting, error) {
	defer rows.Close()

	out := make([]job.Posting, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanJob(row database.Row) (job.Posting, error) {
	var j job.Posting
	var typ string
	err := row.Scan(
		&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Location, &typ, &j.SalaryRange,
		&j.Description, &j.Requirements, &j.Benefits, &j.IsActive, &j.CreatedAt,
	)
	if err != nil {
		return job.Posting{}, err
	}
	j.Type = job.EmploymentType(typ)
	return j, nil
}

type PostgresCompanyRepository struct {
	db database.DB
}

func NewPostgresCompanyRepository(db database.DB) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

func (r *PostgresCompanyRepository) Create(ctx context.Context, c job.Company) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO companies (id, owner_id, name, industry, location, website, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)`,
		c.ID, c.OwnerID, c.Name, c.Industry, c.Location, c.Website, c.CreatedAt,
	)
	return err
}

func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Company, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, COALESCE(industry, ''), COALESCE(location, ''), COALESCE(website, ''), created_at
		 FROM companies WHERE id = $1`, id)

	var c job.Company
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Industry, &c.Location, &c.Website, &c.CreatedAt); err != nil {
		if isNoRows(err) {
			return job.Company{}, ErrCompanyNotFound
		}
		return job.Company{}, err
	}
	return c, nil
}

func (r *PostgresCompanyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]job.Company, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, name, COALESCE(industry, ''), COALESCE(location, ''), COALESCE(website, ''), created_at
		 FROM companies WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Company, 0)
	for rows.Next() {
		var c job.Company
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Industry, &c.Location, &c.Website, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
