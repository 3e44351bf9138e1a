package analysis

import (
	"context"
	"sync"
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/infrastructure/reasoning"
	"jobmatch/internal/repository"
	resumeuc "jobmatch/internal/usecase/resume"

	"github.com/google/uuid"
)

type stageUpdate struct {
	Stage  domain.Stage
	Status resume.Status
	Reason string
}

type fakeResumes struct {
	repository.ResumeRepository
	mu      sync.Mutex
	updates map[uuid.UUID][]stageUpdate
	latest  map[uuid.UUID]resume.Resume
}

func newFakeResumes() *fakeResumes {
	return &fakeResumes{updates: map[uuid.UUID][]stageUpdate{}, latest: map[uuid.UUID]resume.Resume{}}
}

func (f *fakeResumes) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, status resume.Status, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = append(f.updates[id], stageUpdate{Stage: stage, Status: status, Reason: reason})
	return nil
}

func (f *fakeResumes) GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (resume.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.latest[candidateID]
	if !ok {
		return resume.Resume{}, repository.ErrResumeNotFound
	}
	return r, nil
}

func (f *fakeResumes) stages(id uuid.UUID) []stageUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stageUpdate(nil), f.updates[id]...)
}

type fakeAnalyses struct {
	repository.AnalysisRepository
	mu      sync.Mutex
	created []resume.Analysis
}

func (f *fakeAnalyses) Create(ctx context.Context, a resume.Analysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.created {
		if existing.ResumeID == a.ResumeID {
			return repository.ErrAnalysisExists
		}
	}
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAnalyses) GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (resume.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.created) - 1; i >= 0; i-- {
		if f.created[i].CandidateID == candidateID {
			return f.created[i], nil
		}
	}
	return resume.Analysis{}, repository.ErrAnalysisNotFound
}

func (f *fakeAnalyses) all() []resume.Analysis {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]resume.Analysis(nil), f.created...)
}

type fakeCandidates struct {
	repository.CandidateRepository
	mu       sync.Mutex
	profiles map[uuid.UUID]candidate.Profile
}

func (f *fakeCandidates) GetByID(ctx context.Context, id uuid.UUID) (candidate.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return candidate.Profile{}, repository.ErrCandidateNotFound
	}
	return p, nil
}

func (f *fakeCandidates) GetByPrincipalID(ctx context.Context, principalID uuid.UUID) (candidate.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.PrincipalID == principalID {
			return p, nil
		}
	}
	return candidate.Profile{}, repository.ErrCandidateNotFound
}

func (f *fakeCandidates) MergeAnalysis(ctx context.Context, candidateID uuid.UUID, skills []string, level string, contact repository.ContactUpdate) (candidate.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[candidateID]
	p.Skills = candidate.MergeSkills(p.Skills, skills)
	p.ExperienceLevel = level
	if p.Phone == "" {
		p.Phone = contact.Phone
	}
	f.profiles[candidateID] = p
	return p, nil
}

func (f *fakeCandidates) get(id uuid.UUID) candidate.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id]
}

type fakeJobs struct {
	repository.JobRepository
	active []job.Posting
}

func (f *fakeJobs) ListActive(ctx context.Context) ([]job.Posting, error) {
	return f.active, nil
}

type fakeRecommendations struct {
	repository.RecommendationRepository
	mu   sync.Mutex
	recs []match.Recommendation
}

func (f *fakeRecommendations) Upsert(ctx context.Context, recs []match.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, recs...)
	return nil
}

func (f *fakeRecommendations) all() []match.Recommendation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]match.Recommendation(nil), f.recs...)
}

type fakeIngestor struct {
	mu        sync.Mutex
	extract   func(ctx context.Context, attempt int) (resume.ExtractedProfile, error)
	attempts  int
	submitted int
	submitErr error
}

func (f *fakeIngestor) Submit(ctx context.Context, candidateID uuid.UUID, doc resumeuc.Document) (resume.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return resume.Resume{}, f.submitErr
	}
	f.submitted++
	now := time.Now().UTC()
	return resume.Resume{
		ID:          uuid.New(),
		CandidateID: candidateID,
		StorageRef:  "ref",
		FileName:    doc.FileName,
		ContentType: resume.ContentTypeText,
		UploadedAt:  now,
		UpdatedAt:   now,
		Status:      resume.StatusUploaded,
		Stage:       domain.StageUploaded,
	}, nil
}

func (f *fakeIngestor) Extract(ctx context.Context, r resume.Resume) (resume.ExtractedProfile, error) {
	f.mu.Lock()
	f.attempts++
	attempt := f.attempts
	fn := f.extract
	f.mu.Unlock()
	return fn(ctx, attempt)
}

func (f *fakeIngestor) extractAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

type fakeReasoner struct {
	mu      sync.Mutex
	calls   int
	analyze func(ctx context.Context, req reasoning.Request) (reasoning.Insight, error)
}

func (f *fakeReasoner) Analyze(ctx context.Context, req reasoning.Request) (reasoning.Insight, error) {
	f.mu.Lock()
	f.calls++
	fn := f.analyze
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakeReasoner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	released int
}

func (f *fakeLocker) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = token
	return true, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == token {
		delete(f.held, key)
		f.released++
	}
	return nil
}

func (f *fakeLocker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.StageEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, evt domain.StageEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) stages() []domain.Stage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Stage, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Stage)
	}
	return out
}
