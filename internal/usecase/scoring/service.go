package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/matching"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	matchCacheTTL            = time.Hour
	maxInsights              = 3
	defaultRecommendationCap = 20
)

var ErrJobNotFound = errors.New("job not found")

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// JobMatch is a candidate's fit for one posting. HasResume is false until
// the candidate has a completed analysis.
type JobMatch struct {
	HasResume bool     `json:"has_resume"`
	Score     int      `json:"match_score"`
	Matched   []string `json:"matched_skills"`
	Missing   []string `json:"missing_skills"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

type Service struct {
	jobs            repository.JobRepository
	candidates      repository.CandidateRepository
	analyses        repository.AnalysisRepository
	recommendations repository.RecommendationRepository
	cache           Cache
	logger          *zap.Logger
}

func NewService(
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	analyses repository.AnalysisRepository,
	recommendations repository.RecommendationRepository,
	cache Cache,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		jobs:            jobs,
		candidates:      candidates,
		analyses:        analyses,
		recommendations: recommendations,
		cache:           cache,
		logger:          logger,
	}
}

func cacheKey(analysisID, jobID uuid.UUID) string {
	return "match:" + analysisID.String() + ":" + jobID.String()
}

// MatchForJob scores the candidate's current skills against one posting.
// Results are cached per analysis, so a new analysis never sees a stale score.
func (s *Service) MatchForJob(ctx context.Context, p principal.Principal, jobID uuid.UUID) (JobMatch, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return JobMatch{}, err
	}

	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return JobMatch{}, ErrJobNotFound
		}
		return JobMatch{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}

	a, err := s.analyses.GetLatestByCandidate(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return JobMatch{HasResume: false, Matched: []string{}, Missing: []string{}, Strengths: []string{}, Gaps: []string{}}, nil
		}
		return JobMatch{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}

	key := cacheKey(a.ID, j.ID)
	if s.cache != nil {
		var cached JobMatch
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	res := matching.Score(matching.Candidate{
		ID:              profile.ID,
		Skills:          profile.Skills,
		ExperienceLevel: profile.ExperienceLevel,
	}, j)
	out := JobMatch{
		HasResume: true,
		Score:     res.Score,
		Matched:   res.MatchedSkills,
		Missing:   res.MissingSkills,
		Strengths: head(a.Strengths, maxInsights),
		Gaps:      head(a.Gaps, maxInsights),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, matchCacheTTL); err != nil {
			s.logger.Debug("match cache set", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// Recommendations lists the candidate's stored recommendations, best first.
func (s *Service) Recommendations(ctx context.Context, p principal.Principal, limit int) ([]match.Recommendation, error) {
	profile, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = defaultRecommendationCap
	}
	out, err := s.recommendations.ListByCandidate(ctx, profile.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	return out, nil
}

func head(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	if s == nil {
		return []string{}
	}
	return s
}
