package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/infrastructure/reasoning"
	"jobmatch/internal/pkg/workerpool"
	resumeuc "jobmatch/internal/usecase/resume"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	pipeline   *Pipeline
	service    *Service
	resumes    *fakeResumes
	analyses   *fakeAnalyses
	candidates *fakeCandidates
	recs       *fakeRecommendations
	ingestor   *fakeIngestor
	reasoner   *fakeReasoner
	locker     *fakeLocker
	notifier   *recordingNotifier
	profile    candidate.Profile
	owner      principal.Principal
	jobs       []job.Posting
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	owner := principal.Principal{ID: uuid.New(), Role: principal.RoleCandidate}
	profile := candidate.Profile{ID: uuid.New(), PrincipalID: owner.ID, Skills: []string{"SQL"}}
	now := time.Now().UTC()
	jobs := []job.Posting{
		{ID: uuid.New(), Title: "Backend", CompanyName: "Acme", Requirements: []string{"Go", "PostgreSQL", "Kafka"}, IsActive: true, CreatedAt: now},
		{ID: uuid.New(), Title: "Frontend", CompanyName: "Acme", Requirements: []string{"React", "TypeScript", "CSS", "HTML", "Figma"}, IsActive: true, CreatedAt: now},
		{ID: uuid.New(), Title: "Data", CompanyName: "Beta", Requirements: []string{"SQL"}, IsActive: true, CreatedAt: now},
	}

	h := &harness{
		resumes:    newFakeResumes(),
		analyses:   &fakeAnalyses{},
		candidates: &fakeCandidates{profiles: map[uuid.UUID]candidate.Profile{profile.ID: profile}},
		recs:       &fakeRecommendations{},
		ingestor: &fakeIngestor{extract: func(ctx context.Context, attempt int) (resume.ExtractedProfile, error) {
			return resume.ExtractedProfile{
				RawText:         "Go and PostgreSQL engineer",
				CandidateSkills: []string{"Go", "PostgreSQL"},
				ExperienceHint:  "4 years",
				Contact:         resume.ContactInfo{Phone: "+1 555 0100 200"},
			}, nil
		}},
		reasoner: &fakeReasoner{analyze: func(ctx context.Context, req reasoning.Request) (reasoning.Insight, error) {
			return reasoning.Insight{Summary: "ok", Strengths: []string{"Go"}, Gaps: []string{"Kafka"}, Skills: []string{"golang", "Docker"}}, nil
		}},
		locker:   &fakeLocker{held: map[string]string{}},
		notifier: &recordingNotifier{},
		profile:  profile,
		owner:    owner,
		jobs:     jobs,
	}

	pool := workerpool.New(2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Close()
	})

	h.pipeline = NewPipeline(Repositories{
		Resumes:         h.resumes,
		Analyses:        h.analyses,
		Candidates:      h.candidates,
		Jobs:            &fakeJobs{active: jobs},
		Recommendations: h.recs,
	}, h.ingestor, h.reasoner, pool, h.locker, h.notifier, nil, Options{
		TopN:              2,
		Attempts:          3,
		AttemptTimeout:    time.Second,
		BaseBackoff:       time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		RecommendMinScore: 20,
	}, nil)
	h.service = NewService(h.pipeline, h.candidates, h.resumes, h.analyses)
	return h
}

func (h *harness) submit(t *testing.T) resume.Resume {
	t.Helper()
	r, err := h.service.Analyze(context.Background(), h.owner, resumeuc.Document{
		Content: strings.NewReader("cv"), ContentType: resume.ContentTypeText, FileName: "cv.txt", SizeBytes: 2,
	})
	require.NoError(t, err)
	return r
}

func (h *harness) waitFor(t *testing.T, stage domain.Stage) domain.RunState {
	t.Helper()
	var state domain.RunState
	require.Eventually(t, func() bool {
		s, ok := h.pipeline.Registry().Get(h.profile.ID)
		state = s
		if !ok || s.Stage != stage {
			return false
		}
		// terminal runs release the lock last
		return !stage.Terminal() || h.locker.count() == 0
	}, 2*time.Second, 5*time.Millisecond)
	return state
}

func TestPipeline_CompletesRun(t *testing.T) {
	h := newHarness(t)
	r := h.submit(t)

	state := h.waitFor(t, domain.StageComplete)
	assert.Equal(t, r.ID, state.ResumeID)
	assert.Equal(t, 100, state.Progress)

	stored := h.analyses.all()
	require.Len(t, stored, 1)
	a := stored[0]
	assert.Equal(t, r.ID, a.ResumeID)
	assert.Equal(t, "ok", a.Summary)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, a.ExtractedSkills)
	assert.Equal(t, candidate.LevelMid, a.ExperienceLevel)
	assert.GreaterOrEqual(t, a.ProcessingSecs, 0.0)

	// SQL from the prior profile counts: Data scores 100, Backend 67.
	require.Len(t, a.JobMatches, 2)
	assert.Equal(t, resume.JobMatch{JobID: h.jobs[2].ID, Score: 100}, a.JobMatches[0])
	assert.Equal(t, resume.JobMatch{JobID: h.jobs[0].ID, Score: 67}, a.JobMatches[1])

	profile := h.candidates.get(h.profile.ID)
	assert.Equal(t, []string{"Docker", "Go", "PostgreSQL", "SQL"}, profile.Skills)
	assert.Equal(t, candidate.LevelMid, profile.ExperienceLevel)
	assert.Equal(t, "+1 555 0100 200", profile.Phone)

	recs := h.recs.all()
	require.Len(t, recs, 2)
	assert.Equal(t, "Match based on skills: SQL", recs[0].Explanation)
	assert.Equal(t, "Match based on skills: Go, PostgreSQL", recs[1].Explanation)

	got := h.resumes.stages(r.ID)
	require.Len(t, got, 4)
	assert.Equal(t, domain.StageComplete, got[3].Stage)
	assert.Equal(t, resume.StatusAnalyzed, got[3].Status)

	assert.Equal(t, []domain.Stage{domain.StageExtracting, domain.StageAnalyzing, domain.StageMatching, domain.StageComplete}, h.notifier.stages())
	assert.Zero(t, h.locker.count())
}

func TestPipeline_SecondSubmitWhileRunning(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.ingestor.extract = func(ctx context.Context, attempt int) (resume.ExtractedProfile, error) {
		<-release
		return resume.ExtractedProfile{RawText: "x"}, nil
	}

	h.submit(t)
	h.waitFor(t, domain.StageExtracting)

	_, err := h.service.Analyze(context.Background(), h.owner, resumeuc.Document{Content: strings.NewReader("cv"), FileName: "cv.txt"})
	assert.ErrorIs(t, err, ErrAnalysisInProgress)
	assert.Equal(t, 1, h.ingestor.submitted)

	close(release)
	h.waitFor(t, domain.StageComplete)

	h.submit(t)
	h.waitFor(t, domain.StageComplete)
	assert.Len(t, h.analyses.all(), 2)
}

func TestPipeline_LockHeldElsewhere(t *testing.T) {
	h := newHarness(t)
	h.locker.held[lockKey(h.profile.ID)] = "other-replica"

	_, err := h.service.Analyze(context.Background(), h.owner, resumeuc.Document{Content: strings.NewReader("cv"), FileName: "cv.txt"})
	assert.ErrorIs(t, err, ErrAnalysisInProgress)
	assert.Zero(t, h.ingestor.submitted)

	_, ok := h.pipeline.Registry().Get(h.profile.ID)
	assert.False(t, ok)
}

func TestPipeline_PermanentExtractionFailure(t *testing.T) {
	h := newHarness(t)
	h.ingestor.extract = func(ctx context.Context, attempt int) (resume.ExtractedProfile, error) {
		return resume.ExtractedProfile{}, resume.Permanent(errors.New("corrupt pdf"))
	}

	r := h.submit(t)
	state := h.waitFor(t, domain.StageFailed)

	assert.Contains(t, state.Error, "corrupt pdf")
	assert.Equal(t, 1, h.ingestor.extractAttempts())
	assert.Empty(t, h.analyses.all())
	assert.Zero(t, h.reasoner.count())

	got := h.resumes.stages(r.ID)
	last := got[len(got)-1]
	assert.Equal(t, domain.StageFailed, last.Stage)
	assert.Equal(t, resume.StatusFailed, last.Status)
	assert.Contains(t, last.Reason, "extraction failed")
	assert.Zero(t, h.locker.count())
}

func TestPipeline_TransientExtractionRetried(t *testing.T) {
	h := newHarness(t)
	h.ingestor.extract = func(ctx context.Context, attempt int) (resume.ExtractedProfile, error) {
		if attempt < 3 {
			return resume.ExtractedProfile{}, resume.Transient(errors.New("storage timeout"))
		}
		return resume.ExtractedProfile{RawText: "Go", CandidateSkills: []string{"Go"}}, nil
	}

	h.submit(t)
	h.waitFor(t, domain.StageComplete)
	assert.Equal(t, 3, h.ingestor.extractAttempts())
	assert.Len(t, h.analyses.all(), 1)
}

func TestPipeline_TransientExtractionExhausted(t *testing.T) {
	h := newHarness(t)
	h.ingestor.extract = func(ctx context.Context, attempt int) (resume.ExtractedProfile, error) {
		return resume.ExtractedProfile{}, resume.Transient(errors.New("flaky"))
	}

	r := h.submit(t)
	state := h.waitFor(t, domain.StageFailed)

	assert.Equal(t, 3, h.ingestor.extractAttempts())
	assert.Empty(t, h.analyses.all())
	assert.Zero(t, h.reasoner.count())
	assert.Empty(t, h.recs.all())

	got := h.resumes.stages(r.ID)
	last := got[len(got)-1]
	assert.Equal(t, domain.StageFailed, last.Stage)
	assert.Equal(t, resume.StatusFailed, last.Status)
	assert.Equal(t, "after 3 attempts: extraction failed (transient): flaky", last.Reason)
	assert.Equal(t, 1, strings.Count(state.Error, "extraction failed"))
}

func TestExtractionReason(t *testing.T) {
	assert.Equal(t, "extraction failed (permanent): bad", extractionReason(resume.Permanent(errors.New("bad"))))
	assert.Equal(t, "extraction failed: disk gone", extractionReason(errors.New("disk gone")))
}

func TestPipeline_ReasoningRetriesExhausted(t *testing.T) {
	h := newHarness(t)
	h.reasoner.analyze = func(ctx context.Context, req reasoning.Request) (reasoning.Insight, error) {
		return reasoning.Insight{}, errors.New("model overloaded")
	}

	h.submit(t)
	state := h.waitFor(t, domain.StageFailed)

	assert.Equal(t, 3, h.reasoner.count())
	assert.Contains(t, state.Error, "reasoning failed")
	assert.Contains(t, state.Error, "after 3 attempts")
	assert.Empty(t, h.analyses.all())
}

func TestPipeline_ReasoningAttemptTimeout(t *testing.T) {
	h := newHarness(t)
	h.pipeline.opts.AttemptTimeout = 10 * time.Millisecond
	h.reasoner.analyze = func(ctx context.Context, req reasoning.Request) (reasoning.Insight, error) {
		if h.reasoner.count() == 1 {
			<-ctx.Done()
			return reasoning.Insight{}, ctx.Err()
		}
		return reasoning.Insight{Summary: "second try"}, nil
	}

	h.submit(t)
	h.waitFor(t, domain.StageComplete)
	assert.Equal(t, 2, h.reasoner.count())
	require.Len(t, h.analyses.all(), 1)
	assert.Equal(t, "second try", h.analyses.all()[0].Summary)
}

func TestPipeline_MarketContextPassedToReasoner(t *testing.T) {
	h := newHarness(t)
	var got reasoning.Request
	h.reasoner.analyze = func(ctx context.Context, req reasoning.Request) (reasoning.Insight, error) {
		got = req
		return reasoning.Insight{Summary: "ok"}, nil
	}

	h.submit(t)
	h.waitFor(t, domain.StageComplete)
	require.Len(t, got.Market, 3)
	assert.Equal(t, "Backend", got.Market[0].Title)
	assert.Equal(t, "4 years", got.ExperienceHint)
}

func TestPipeline_CancelWhileExtracting(t *testing.T) {
	h := newHarness(t)
	h.ingestor.extract = func(ctx context.Context, attempt int) (resume.ExtractedProfile, error) {
		<-ctx.Done()
		return resume.ExtractedProfile{}, resume.Transient(ctx.Err())
	}

	r := h.submit(t)
	h.waitFor(t, domain.StageExtracting)

	require.NoError(t, h.service.Cancel(context.Background(), h.owner))
	state := h.waitFor(t, domain.StageFailed)
	assert.Equal(t, ReasonCancelled, state.Error)

	got := h.resumes.stages(r.ID)
	assert.Equal(t, ReasonCancelled, got[len(got)-1].Reason)
	assert.Empty(t, h.analyses.all())

	assert.ErrorIs(t, h.service.Cancel(context.Background(), h.owner), ErrNoActiveRun)
}

func TestPipeline_CancelAfterAnalyzingIsRefused(t *testing.T) {
	g := NewRegistry()
	id := uuid.New()
	require.True(t, g.reserve(id, "t"))
	g.attach(id, uuid.New(), func() {})
	for _, s := range []domain.Stage{domain.StageExtracting, domain.StageAnalyzing, domain.StageMatching} {
		_, ok := g.advance(id, s, "")
		require.True(t, ok)
	}
	assert.ErrorIs(t, g.cancel(id), ErrNotCancellable)
	assert.ErrorIs(t, g.cancel(uuid.New()), ErrNoActiveRun)
}

func TestPipeline_QueueFull(t *testing.T) {
	h := newHarness(t)
	h.pipeline.pool = rejectingPool{}

	_, err := h.service.Analyze(context.Background(), h.owner, resumeuc.Document{Content: strings.NewReader("cv"), FileName: "cv.txt"})
	assert.ErrorIs(t, err, ErrBusy)

	state, ok := h.pipeline.Registry().Get(h.profile.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StageFailed, state.Stage)
	assert.Zero(t, h.locker.count())
}

func TestPipeline_RecruiterCannotSubmit(t *testing.T) {
	h := newHarness(t)
	recruiter := principal.Principal{ID: uuid.New(), Role: principal.RoleRecruiter}

	_, err := h.service.Analyze(context.Background(), recruiter, resumeuc.Document{})
	assert.Error(t, err)
	assert.Zero(t, h.ingestor.submitted)
}

func TestService_StatusFallsBackToStoredResume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Status(ctx, h.owner)
	assert.ErrorIs(t, err, ErrNoResume)

	uploaded := time.Now().Add(-time.Minute).UTC()
	h.resumes.latest[h.profile.ID] = resume.Resume{
		ID: uuid.New(), CandidateID: h.profile.ID, Stage: domain.StageFailed, Status: resume.StatusFailed,
		FailureReason: "processing timed out", UploadedAt: uploaded, UpdatedAt: uploaded.Add(30 * time.Second),
	}
	state, err := h.service.Status(ctx, h.owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StageFailed, state.Stage)
	assert.Equal(t, "processing timed out", state.Error)
	assert.InDelta(t, 30.0, state.Elapsed, 0.001)
}

func TestService_Latest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, found, err := h.service.Latest(ctx, h.owner)
	require.NoError(t, err)
	assert.False(t, found)

	h.submit(t)
	h.waitFor(t, domain.StageComplete)

	a, found, err := h.service.Latest(ctx, h.owner)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ok", a.Summary)
}

func TestExplain(t *testing.T) {
	assert.Equal(t, "Match based on skills: general fit", Explain(nil))
	assert.Equal(t, "Match based on skills: Go, SQL", Explain([]string{"Go", "SQL"}))
}

type rejectingPool struct{}

func (rejectingPool) TrySubmit(workerpool.Task) error { return workerpool.ErrQueueFull }
