package analysis

import (
	"context"
	"errors"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/auth"
	resumeuc "jobmatch/internal/usecase/resume"

	"github.com/google/uuid"
)

const defaultHistoryLimit = 20

var ErrNoResume = errors.New("no resume uploaded")

// Service is the candidate-facing entry point to the pipeline.
type Service struct {
	pipeline   *Pipeline
	candidates repository.CandidateRepository
	resumes    repository.ResumeRepository
	analyses   repository.AnalysisRepository
}

func NewService(pipeline *Pipeline, candidates repository.CandidateRepository, resumes repository.ResumeRepository, analyses repository.AnalysisRepository) *Service {
	return &Service{pipeline: pipeline, candidates: candidates, resumes: resumes, analyses: analyses}
}

func (s *Service) Analyze(ctx context.Context, p principal.Principal, doc resumeuc.Document) (resume.Resume, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionWrite)
	if err != nil {
		return resume.Resume{}, err
	}
	return s.pipeline.Submit(ctx, profile.ID, doc)
}

// Status reports the live run when there is one and otherwise the state
// stored on the latest resume.
func (s *Service) Status(ctx context.Context, p principal.Principal) (domain.RunState, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return domain.RunState{}, err
	}
	if state, ok := s.pipeline.Registry().Get(profile.ID); ok && state.ResumeID != uuid.Nil {
		return state, nil
	}

	r, err := s.resumes.GetLatestByCandidate(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrResumeNotFound) {
			return domain.RunState{}, ErrNoResume
		}
		return domain.RunState{}, err
	}
	state := domain.RunState{
		ResumeID:    r.ID,
		CandidateID: r.CandidateID,
		Stage:       r.Stage,
		Progress:    r.Stage.Progress(),
		StartedAt:   r.UploadedAt,
		UpdatedAt:   r.UpdatedAt,
		Error:       r.FailureReason,
	}
	if r.Stage.Terminal() {
		state.Elapsed = r.UpdatedAt.Sub(r.UploadedAt).Seconds()
	}
	return state, nil
}

func (s *Service) Cancel(ctx context.Context, p principal.Principal) error {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionWrite)
	if err != nil {
		return err
	}
	return s.pipeline.Cancel(profile.ID)
}

// Latest returns the newest analysis; found is false when there is none.
func (s *Service) Latest(ctx context.Context, p principal.Principal) (a resume.Analysis, found bool, err error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return resume.Analysis{}, false, err
	}
	a, err = s.analyses.GetLatestByCandidate(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return resume.Analysis{}, false, nil
		}
		return resume.Analysis{}, false, err
	}
	return a, true, nil
}

func (s *Service) History(ctx context.Context, p principal.Principal, limit int) ([]resume.HistoryEntry, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	return s.analyses.ListByCandidate(ctx, profile.ID, limit)
}
