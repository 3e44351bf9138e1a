package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/domain/application"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/matching"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateApplication = errors.New("already applied to this job")
	ErrJobInactive          = errors.New("job is no longer accepting applications")
	ErrJobNotFound          = errors.New("job not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrInvalidTransition    = errors.New("invalid application status transition")
	ErrInvalidInput         = errors.New("invalid input")
)

// Applicant is an application as the recruiter sees it.
type Applicant struct {
	Application     application.Application `json:"application"`
	CandidateName   string                  `json:"candidate_name"`
	ExperienceLevel string                  `json:"experience_level,omitempty"`
	Skills          []string                `json:"skills"`
	MatchScore      int                     `json:"match_score"`
	MatchedSkills   []string                `json:"matched_skills"`
}

type InterviewInput struct {
	ApplicationID uuid.UUID
	ScheduledTime time.Time
	Interviewer   string
	Notes         string
}

// Service tracks candidates' applications through the hiring flow.
type Service struct {
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	companies    repository.CompanyRepository
	candidates   repository.CandidateRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	applications repository.ApplicationRepository,
	jobs repository.JobRepository,
	companies repository.CompanyRepository,
	candidates repository.CandidateRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		applications: applications,
		jobs:         jobs,
		companies:    companies,
		candidates:   candidates,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) Apply(ctx context.Context, p principal.Principal, jobID uuid.UUID) (application.Application, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionWrite)
	if err != nil {
		return application.Application{}, err
	}

	j, err := s.job(ctx, jobID)
	if err != nil {
		return application.Application{}, err
	}
	if !j.IsActive {
		return application.Application{}, ErrJobInactive
	}

	now := s.now().UTC()
	a := application.Application{
		ID:          uuid.New(),
		JobID:       j.ID,
		CandidateID: profile.ID,
		Status:      application.StatusApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.applications.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrApplicationExists) {
			return application.Application{}, ErrDuplicateApplication
		}
		return application.Application{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}

	s.logger.Info("application created",
		zap.String("application_id", a.ID.String()),
		zap.String("job_id", j.ID.String()),
		zap.String("candidate_id", profile.ID.String()),
	)
	return a, nil
}

func (s *Service) ListForCandidate(ctx context.Context, p principal.Principal) ([]application.Application, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return nil, err
	}
	out, err := s.applications.ListByCandidate(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return out, nil
}

// ListInterviews returns the candidate's interviews, latest first.
func (s *Service) ListInterviews(ctx context.Context, p principal.Principal) ([]application.Interview, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return nil, err
	}
	out, err := s.applications.ListInterviewsByCandidate(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return out, nil
}

// ListForJob returns the job's applicants with their current match score.
// Only the recruiter owning the job's company may list them.
func (s *Service) ListForJob(ctx context.Context, p principal.Principal, jobID uuid.UUID) ([]Applicant, error) {
	if p.ID == uuid.Nil {
		return nil, auth.ErrUnauthorized
	}
	j, err := s.ownedJob(ctx, p, jobID, auth.KindJobApplications)
	if err != nil {
		return nil, err
	}

	apps, err := s.applications.ListByJob(ctx, j.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.CandidateID)
	}
	profiles, err := s.candidates.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}

	out := make([]Applicant, 0, len(apps))
	for _, a := range apps {
		profile := profiles[a.CandidateID]
		res := matching.Score(matching.Candidate{
			ID:              profile.ID,
			Skills:          profile.Skills,
			ExperienceLevel: profile.ExperienceLevel,
		}, j)
		skills := profile.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, Applicant{
			Application:     a,
			CandidateName:   profile.FullName,
			ExperienceLevel: profile.ExperienceLevel,
			Skills:          skills,
			MatchScore:      res.Score,
			MatchedSkills:   res.MatchedSkills,
		})
	}
	return out, nil
}

// Transition moves an application to a new status on behalf of the owning
// recruiter.
func (s *Service) Transition(ctx context.Context, p principal.Principal, applicationID uuid.UUID, to application.Status) (application.Application, error) {
	if p.ID == uuid.Nil {
		return application.Application{}, auth.ErrUnauthorized
	}
	if !to.Valid() {
		return application.Application{}, ErrInvalidInput
	}

	a, err := s.application(ctx, applicationID)
	if err != nil {
		return application.Application{}, err
	}
	if _, err := s.ownedJob(ctx, p, a.JobID, auth.KindJobApplications); err != nil {
		return application.Application{}, err
	}
	if !application.CanTransition(a.Status, to) {
		return application.Application{}, ErrInvalidTransition
	}

	updated, err := s.applications.UpdateStatus(ctx, a.ID, a.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return application.Application{}, ErrInvalidTransition
		}
		return application.Application{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	s.logger.Info("application status changed",
		zap.String("application_id", a.ID.String()),
		zap.String("from", string(a.Status)),
		zap.String("to", string(to)),
	)
	return updated, nil
}

// ScheduleInterview books an interview for an open application. An applied
// application moves to interview_scheduled.
func (s *Service) ScheduleInterview(ctx context.Context, p principal.Principal, in InterviewInput) (application.Interview, error) {
	if p.ID == uuid.Nil {
		return application.Interview{}, auth.ErrUnauthorized
	}
	interviewer := strings.TrimSpace(in.Interviewer)
	if in.ScheduledTime.IsZero() || interviewer == "" {
		return application.Interview{}, ErrInvalidInput
	}

	a, err := s.application(ctx, in.ApplicationID)
	if err != nil {
		return application.Interview{}, err
	}
	if _, err := s.ownedJob(ctx, p, a.JobID, auth.KindJobApplications); err != nil {
		return application.Interview{}, err
	}
	if a.Status != application.StatusApplied && a.Status != application.StatusInterviewScheduled {
		return application.Interview{}, ErrInvalidTransition
	}

	iv := application.Interview{
		ID:            uuid.New(),
		ApplicationID: a.ID,
		ScheduledTime: in.ScheduledTime.UTC(),
		Interviewer:   interviewer,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     s.now().UTC(),
	}
	if _, err := s.applications.ScheduleInterview(ctx, iv); err != nil {
		return application.Interview{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return iv, nil
}

func (s *Service) job(ctx context.Context, id uuid.UUID) (job.Posting, error) {
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

func (s *Service) application(ctx context.Context, id uuid.UUID) (application.Application, error) {
	a, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return application.Application{}, ErrApplicationNotFound
		}
		return application.Application{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return a, nil
}

func (s *Service) ownedJob(ctx context.Context, p principal.Principal, jobID uuid.UUID, kind auth.ResourceKind) (job.Posting, error) {
	j, err := s.job(ctx, jobID)
	if err != nil {
		return job.Posting{}, err
	}
	c, err := s.companies.GetByID(ctx, j.CompanyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return job.Posting{}, auth.ErrForbidden
		}
		return job.Posting{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	if err := auth.Authorize(p, auth.ActionWrite, auth.Resource{Kind: kind, OwnerID: c.OwnerID}); err != nil {
		return job.Posting{}, err
	}
	return j, nil
}
