package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listCacheTTL = 30 * time.Second

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrCompanyRequired = errors.New("a company profile is required before posting a job")
	ErrInvalidInput    = errors.New("invalid input")
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CreateInput struct {
	CompanyID    uuid.UUID
	Title        string
	Location     string
	Type         job.EmploymentType
	SalaryRange  string
	Description  string
	Requirements []string
	Benefits     []string
}

type CompanyInput struct {
	Name     string
	Industry string
	Location string
	Website  string
}

type ListParams struct {
	Search    string
	Location  string
	Type      string
	CompanyID uuid.UUID
	Limit     int
	Offset    int
}

// Service manages companies and the job postings they publish.
type Service struct {
	jobs      repository.JobRepository
	companies repository.CompanyRepository
	cache     Cache
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(jobs repository.JobRepository, companies repository.CompanyRepository, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{jobs: jobs, companies: companies, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) CreateCompany(ctx context.Context, p principal.Principal, in CompanyInput) (job.Company, error) {
	if err := auth.Authorize(p, auth.ActionWrite, auth.Resource{Kind: auth.KindCompany, OwnerID: p.ID}); err != nil {
		return job.Company{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return job.Company{}, ErrInvalidInput
	}
	c := job.Company{
		ID:        uuid.New(),
		OwnerID:   p.ID,
		Name:      name,
		Industry:  strings.TrimSpace(in.Industry),
		Location:  strings.TrimSpace(in.Location),
		Website:   strings.TrimSpace(in.Website),
		CreatedAt: s.now().UTC(),
	}
	if err := s.companies.Create(ctx, c); err != nil {
		return job.Company{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return c, nil
}

func (s *Service) MyCompanies(ctx context.Context, p principal.Principal) ([]job.Company, error) {
	if err := auth.Authorize(p, auth.ActionRead, auth.Resource{Kind: auth.KindCompany, OwnerID: p.ID}); err != nil {
		return nil, err
	}
	out, err := s.companies.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return out, nil
}

// Create publishes a posting under one of the recruiter's companies. Without
// an explicit company the recruiter's first company is used.
func (s *Service) Create(ctx context.Context, p principal.Principal, in CreateInput) (job.Posting, error) {
	if p.ID == uuid.Nil {
		return job.Posting{}, auth.ErrUnauthorized
	}
	if !p.IsRecruiter() {
		return job.Posting{}, auth.ErrForbidden
	}

	company, err := s.companyFor(ctx, p, in.CompanyID)
	if err != nil {
		return job.Posting{}, err
	}

	title := strings.TrimSpace(in.Title)
	typ := in.Type
	if typ == "" {
		typ = job.TypeFullTime
	}
	if title == "" || !typ.Valid() {
		return job.Posting{}, ErrInvalidInput
	}

	j := job.Posting{
		ID:           uuid.New(),
		CompanyID:    company.ID,
		CompanyName:  company.Name,
		Title:        title,
		Location:     strings.TrimSpace(in.Location),
		Type:         typ,
		SalaryRange:  strings.TrimSpace(in.SalaryRange),
		Description:  strings.TrimSpace(in.Description),
		Requirements: cleanList(in.Requirements),
		Benefits:     cleanList(in.Benefits),
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return job.Posting{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	s.logger.Info("job posted", zap.String("job_id", j.ID.String()), zap.String("company_id", company.ID.String()))
	return j, nil
}

func (s *Service) companyFor(ctx context.Context, p principal.Principal, companyID uuid.UUID) (job.Company, error) {
	if companyID == uuid.Nil {
		owned, err := s.companies.ListByOwner(ctx, p.ID)
		if err != nil {
			return job.Company{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
		}
		if len(owned) == 0 {
			return job.Company{}, ErrCompanyRequired
		}
		return owned[0], nil
	}

	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return job.Company{}, ErrCompanyRequired
		}
		return job.Company{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	if err := auth.Authorize(p, auth.ActionWrite, auth.Resource{Kind: auth.KindCompany, OwnerID: c.OwnerID}); err != nil {
		return job.Company{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	if id == uuid.Nil {
		return job.Posting{}, ErrJobNotFound
	}
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return job.Posting{}, ErrJobNotFound
		}
		return job.Posting{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return j, nil
}

// List returns active postings, newest first. Filtered listings are cached
// briefly.
func (s *Service) List(ctx context.Context, params ListParams) ([]job.Posting, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}
	if params.Limit < 0 || params.Limit > 50 || params.Offset < 0 {
		return nil, ErrInvalidInput
	}

	key := listCacheKey(params)
	if s.cache != nil {
		var cached []job.Posting
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			s.logger.Debug("job list cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	out, err := s.jobs.List(ctx, repository.JobListFilter{
		Search:    params.Search,
		Location:  params.Location,
		Type:      params.Type,
		CompanyID: params.CompanyID,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, listCacheTTL); err != nil {
			s.logger.Debug("job list cache set", zap.Error(err))
		}
	}
	return out, nil
}

// Delete removes a posting. Only the recruiter owning its company may.
func (s *Service) Delete(ctx context.Context, p principal.Principal, id uuid.UUID) error {
	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.AuthorizeOwner(ctx, p, j, auth.KindJobPosting); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	s.logger.Info("job deleted", zap.String("job_id", id.String()))
	return nil
}

// AuthorizeOwner checks p owns the company that published j.
func (s *Service) AuthorizeOwner(ctx context.Context, p principal.Principal, j job.Posting, kind auth.ResourceKind) error {
	if p.ID == uuid.Nil {
		return auth.ErrUnauthorized
	}
	c, err := s.companies.GetByID(ctx, j.CompanyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return auth.ErrForbidden
		}
		return fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return auth.Authorize(p, auth.ActionWrite, auth.Resource{Kind: kind, OwnerID: c.OwnerID})
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalizeSearchValue(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func listCacheKey(p ListParams) string {
	in := struct {
		Search    string `json:"search"`
		Location  string `json:"location"`
		Type      string `json:"type"`
		CompanyID string `json:"company_id"`
		Limit     int    `json:"limit"`
		Offset    int    `json:"offset"`
	}{
		Search:    normalizeSearchValue(p.Search),
		Location:  normalizeSearchValue(p.Location),
		Type:      normalizeSearchValue(p.Type),
		CompanyID: p.CompanyID.String(),
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "jobs:list:" + hex.EncodeToString(sum[:])
}
