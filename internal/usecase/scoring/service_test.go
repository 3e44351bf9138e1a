package scoring

import (
	"context"
	"testing"
	"time"

	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	repository.JobRepository
	byID map[uuid.UUID]job.Posting
}

func (f *fakeJobs) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	j, ok := f.byID[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	return j, nil
}

type fakeCandidates struct {
	repository.CandidateRepository
	profile candidate.Profile
}

func (f *fakeCandidates) GetByPrincipalID(ctx context.Context, id uuid.UUID) (candidate.Profile, error) {
	if id != f.profile.PrincipalID {
		return candidate.Profile{}, repository.ErrCandidateNotFound
	}
	return f.profile, nil
}

type fakeAnalyses struct {
	repository.AnalysisRepository
	latest *resume.Analysis
}

func (f *fakeAnalyses) GetLatestByCandidate(ctx context.Context, id uuid.UUID) (resume.Analysis, error) {
	if f.latest == nil || f.latest.CandidateID != id {
		return resume.Analysis{}, repository.ErrAnalysisNotFound
	}
	return *f.latest, nil
}

type fakeRecommendations struct {
	repository.RecommendationRepository
	recs      []match.Recommendation
	lastLimit int
}

func (f *fakeRecommendations) ListByCandidate(ctx context.Context, id uuid.UUID, limit int) ([]match.Recommendation, error) {
	f.lastLimit = limit
	return f.recs, nil
}

type countingCache struct {
	data map[string]JobMatch
	gets int
	sets int
}

func (c *countingCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	c.gets++
	v, ok := c.data[key]
	if ok {
		*(out.(*JobMatch)) = v
	}
	return ok, nil
}

func (c *countingCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	c.data[key] = value.(JobMatch)
	return nil
}

type fixture struct {
	svc      *Service
	owner    principal.Principal
	profile  candidate.Profile
	job      job.Posting
	analyses *fakeAnalyses
	cache    *countingCache
	recs     *fakeRecommendations
}

func newFixture() *fixture {
	owner := principal.Principal{ID: uuid.New(), Role: principal.RoleCandidate}
	profile := candidate.Profile{ID: uuid.New(), PrincipalID: owner.ID, Skills: []string{"golang", "PostgreSQL"}}
	j := job.Posting{ID: uuid.New(), Title: "Backend", Requirements: []string{"Go", "Postgres", "Kafka"}, IsActive: true}

	f := &fixture{
		owner:    owner,
		profile:  profile,
		job:      j,
		analyses: &fakeAnalyses{},
		cache:    &countingCache{data: map[string]JobMatch{}},
		recs:     &fakeRecommendations{},
	}
	f.svc = NewService(
		&fakeJobs{byID: map[uuid.UUID]job.Posting{j.ID: j}},
		&fakeCandidates{profile: profile},
		f.analyses,
		f.recs,
		f.cache,
		nil,
	)
	return f
}

func TestMatchForJob_NoResume(t *testing.T) {
	f := newFixture()
	m, err := f.svc.MatchForJob(context.Background(), f.owner, f.job.ID)
	require.NoError(t, err)
	assert.False(t, m.HasResume)
	assert.Zero(t, m.Score)
	assert.Empty(t, m.Matched)
	assert.NotNil(t, m.Missing)
}

func TestMatchForJob_ScoresAndCaches(t *testing.T) {
	f := newFixture()
	f.analyses.latest = &resume.Analysis{
		ID:          uuid.New(),
		CandidateID: f.profile.ID,
		Strengths:   []string{"a", "b", "c", "d"},
	}
	ctx := context.Background()

	m, err := f.svc.MatchForJob(ctx, f.owner, f.job.ID)
	require.NoError(t, err)
	assert.True(t, m.HasResume)
	assert.Equal(t, 67, m.Score)
	assert.Equal(t, []string{"Go", "Postgres"}, m.Matched)
	assert.Equal(t, []string{"Kafka"}, m.Missing)
	assert.Equal(t, []string{"a", "b", "c"}, m.Strengths)
	assert.Equal(t, []string{}, m.Gaps)
	assert.Equal(t, 1, f.cache.sets)

	again, err := f.svc.MatchForJob(ctx, f.owner, f.job.ID)
	require.NoError(t, err)
	assert.Equal(t, m, again)
	assert.Equal(t, 1, f.cache.sets)
	assert.Contains(t, f.cache.data, cacheKey(f.analyses.latest.ID, f.job.ID))
}

func TestMatchForJob_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.MatchForJob(ctx, f.owner, uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = f.svc.MatchForJob(ctx, principal.Principal{ID: uuid.New(), Role: principal.RoleRecruiter}, f.job.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = f.svc.MatchForJob(ctx, principal.Principal{}, f.job.ID)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestRecommendations(t *testing.T) {
	f := newFixture()
	f.recs.recs = []match.Recommendation{{JobID: f.job.ID, Score: 67}}

	out, err := f.svc.Recommendations(context.Background(), f.owner, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, defaultRecommendationCap, f.recs.lastLimit)
}
