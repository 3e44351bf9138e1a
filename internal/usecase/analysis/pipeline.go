package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/matching"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/infrastructure/reasoning"
	"jobmatch/internal/logger"
	"jobmatch/internal/pkg/retry"
	"jobmatch/internal/pkg/workerpool"
	"jobmatch/internal/repository"
	resumeuc "jobmatch/internal/usecase/resume"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ReasonCancelled = "cancelled"
	maxReasonLen    = 500
)

var (
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrNotCancellable     = errors.New("analysis can no longer be cancelled")
	ErrNoActiveRun        = errors.New("no analysis in progress")
	ErrBusy               = errors.New("analysis queue is full")
)

type Ingestor interface {
	Submit(ctx context.Context, candidateID uuid.UUID, doc resumeuc.Document) (resume.Resume, error)
	Extract(ctx context.Context, r resume.Resume) (resume.ExtractedProfile, error)
}

type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type Notifier interface {
	Notify(ctx context.Context, evt domain.StageEvent)
}

// Notifiers fans an event out to every non-nil notifier in order.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, evt domain.StageEvent) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(ctx, evt)
		}
	}
}

type Submitter interface {
	TrySubmit(t workerpool.Task) error
}

type Options struct {
	TopN              int
	Attempts          int
	AttemptTimeout    time.Duration
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
	LockTTL           time.Duration
	RecommendMinScore int
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 10
	}
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = 60 * time.Second
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 15 * time.Minute
	}
	return o
}

type Repositories struct {
	Resumes         repository.ResumeRepository
	Analyses        repository.AnalysisRepository
	Candidates      repository.CandidateRepository
	Jobs            repository.JobRepository
	Recommendations repository.RecommendationRepository
}

// Pipeline runs résumé analyses on a worker pool: extract, analyze, match,
// complete. Each candidate has at most one run in flight.
type Pipeline struct {
	repos    Repositories
	ingestor Ingestor
	reasoner reasoning.Reasoner
	pool     Submitter
	locker   Locker
	notifier Notifier
	registry *Registry
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewPipeline(
	repos Repositories,
	ingestor Ingestor,
	reasoner reasoning.Reasoner,
	pool Submitter,
	locker Locker,
	notifier Notifier,
	registry *Registry,
	opts Options,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Pipeline{
		repos:    repos,
		ingestor: ingestor,
		reasoner: reasoner,
		pool:     pool,
		locker:   locker,
		notifier: notifier,
		registry: registry,
		opts:     opts.withDefaults(),
		logger:   logger.With(zap.String("pipeline", "analysis")),
		now:      time.Now,
	}
}

func (p *Pipeline) Registry() *Registry { return p.registry }

func lockKey(candidateID uuid.UUID) string {
	return "analysis:lock:" + candidateID.String()
}

// Submit stores the document and queues its analysis. It fails with
// ErrAnalysisInProgress while the candidate has a run in flight.
func (p *Pipeline) Submit(ctx context.Context, candidateID uuid.UUID, doc resumeuc.Document) (resume.Resume, error) {
	token := uuid.NewString()
	if !p.registry.reserve(candidateID, token) {
		return resume.Resume{}, ErrAnalysisInProgress
	}
	if p.locker != nil {
		ok, err := p.locker.AcquireLock(ctx, lockKey(candidateID), token, p.opts.LockTTL)
		switch {
		case err != nil:
			p.logger.Warn("run lock unavailable, using local guard", zap.String("candidate_id", candidateID.String()), zap.Error(err))
		case !ok:
			p.registry.release(candidateID)
			return resume.Resume{}, ErrAnalysisInProgress
		}
	}

	r, err := p.ingestor.Submit(ctx, candidateID, doc)
	if err != nil {
		p.registry.release(candidateID)
		p.unlock(candidateID)
		return resume.Resume{}, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p.registry.attach(candidateID, r.ID, cancel)

	err = p.pool.TrySubmit(func(poolCtx context.Context) {
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()
		p.run(runCtx, r)
	})
	if err != nil {
		cancel()
		p.fail(context.WithoutCancel(ctx), r, "analysis queue is full")
		return resume.Resume{}, fmt.Errorf("%w: %v", ErrBusy, err)
	}

	p.logger.Info("analysis queued", zap.String("resume_id", r.ID.String()), zap.String("candidate_id", candidateID.String()))
	return r, nil
}

// Cancel stops the candidate's run while it is still extracting or analyzing.
func (p *Pipeline) Cancel(candidateID uuid.UUID) error {
	return p.registry.cancel(candidateID)
}

func (p *Pipeline) run(ctx context.Context, r resume.Resume) {
	started := p.now()
	log := p.logger.With(zap.String("resume_id", r.ID.String()), zap.String("candidate_id", r.CandidateID.String()))

	if !p.advance(ctx, r, domain.StageExtracting) {
		p.fail(ctx, r, ReasonCancelled)
		return
	}
	extracted, err := retry.Do(ctx, p.policy(ctx, log, domain.StageExtracting, func(err error) bool {
		return !resume.IsPermanent(err)
	}), func(ctx context.Context, _ int) (resume.ExtractedProfile, error) {
		return p.ingestor.Extract(ctx, r)
	})
	if err != nil {
		p.fail(ctx, r, extractionReason(err))
		return
	}

	if !p.advance(ctx, r, domain.StageAnalyzing) {
		p.fail(ctx, r, ReasonCancelled)
		return
	}

	var (
		profile candidate.Profile
		jobs    []job.Posting
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = p.repos.Candidates.GetByID(gctx, r.CandidateID)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = p.repos.Jobs.ListActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		p.fail(ctx, r, "load context: "+err.Error())
		return
	}

	req := reasoning.Request{
		RawText:         extracted.RawText,
		CandidateSkills: extracted.CandidateSkills,
		ExperienceHint:  extracted.ExperienceHint,
		Market:          marketOf(jobs),
	}
	insight, err := retry.Do(ctx, p.policy(ctx, log, domain.StageAnalyzing, nil), func(ctx context.Context, _ int) (reasoning.Insight, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.opts.AttemptTimeout)
		defer cancel()
		return p.reasoner.Analyze(attemptCtx, req)
	})
	if err != nil {
		p.fail(ctx, r, "reasoning failed: "+err.Error())
		return
	}

	if ctx.Err() != nil || !p.advance(ctx, r, domain.StageMatching) {
		p.fail(ctx, r, ReasonCancelled)
		return
	}

	// persistence must not be torn by shutdown once matching has begun
	ctx = context.WithoutCancel(ctx)

	skills := mergeSkillNames(extracted.CandidateSkills, insight.Skills)
	level := experienceLevel(insight.ExperienceLevel, extracted.ExperienceHint)
	allSkills := candidate.MergeSkills(profile.Skills, skills)

	top := matching.Top(matching.Rank(matching.Candidate{
		ID:              r.CandidateID,
		Skills:          allSkills,
		ExperienceLevel: level,
	}, jobs), p.opts.TopN)

	a := resume.Analysis{
		ID:              uuid.New(),
		ResumeID:        r.ID,
		CandidateID:     r.CandidateID,
		CreatedAt:       p.now().UTC(),
		Summary:         insight.Summary,
		Strengths:       nonNil(insight.Strengths),
		Gaps:            nonNil(insight.Gaps),
		ExtractedSkills: skills,
		ExperienceLevel: level,
		JobMatches:      jobMatches(top),
		ProcessingSecs:  p.now().Sub(started).Seconds(),
	}
	if err := p.repos.Analyses.Create(ctx, a); err != nil && !errors.Is(err, repository.ErrAnalysisExists) {
		p.fail(ctx, r, "store analysis: "+err.Error())
		return
	}

	contact := repository.ContactUpdate{Phone: extracted.Contact.Phone, Location: extracted.Contact.Location}
	if _, err := p.repos.Candidates.MergeAnalysis(ctx, r.CandidateID, skills, level, contact); err != nil {
		log.Warn("merge analysis into profile", zap.Error(err))
	}

	if recs := p.recommendations(r.CandidateID, top, jobs); len(recs) > 0 {
		if err := p.repos.Recommendations.Upsert(ctx, recs); err != nil {
			log.Warn("refresh recommendations", zap.Error(err))
		}
	}

	p.advance(ctx, r, domain.StageComplete)
	p.unlock(r.CandidateID)
	log.Info("analysis complete",
		zap.Int("skills", len(skills)),
		zap.Int("matches", len(top)),
		zap.Duration("duration", p.now().Sub(started)),
	)
}

func (p *Pipeline) policy(ctx context.Context, log *zap.Logger, stage domain.Stage, retryable func(error) bool) retry.Policy {
	return retry.Policy{
		Attempts:  p.opts.Attempts,
		BaseDelay: p.opts.BaseBackoff,
		MaxDelay:  p.opts.MaxBackoff,
		Retryable: func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			return retryable == nil || retryable(err)
		},
		OnRetry: func(attempt int, wait time.Duration, err error) {
			log.Warn("stage attempt failed",
				zap.String("stage", string(stage)),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(err),
			)
		},
	}
}

// advance records a stage change in the registry, the resume row and the
// notifier. It reports false when the registry refused the transition.
func (p *Pipeline) advance(ctx context.Context, r resume.Resume, to domain.Stage) bool {
	state, ok := p.registry.advance(r.CandidateID, to, "")
	if !ok {
		return false
	}
	status := resume.StatusProcessing
	if to == domain.StageComplete {
		status = resume.StatusAnalyzed
	}
	if err := p.repos.Resumes.UpdateStage(context.WithoutCancel(ctx), r.ID, to, status, ""); err != nil {
		p.logger.Warn("update resume stage", zap.String("resume_id", r.ID.String()), zap.String("stage", string(to)), zap.Error(err))
	}
	p.notify(ctx, "stage_changed", state)
	return true
}

func (p *Pipeline) fail(ctx context.Context, r resume.Resume, reason string) {
	if p.registry.wasCancelled(r.CandidateID) {
		reason = ReasonCancelled
	}
	reason = logger.Truncate(reason, maxReasonLen)
	ctx = context.WithoutCancel(ctx)

	state, ok := p.registry.advance(r.CandidateID, domain.StageFailed, reason)
	if err := p.repos.Resumes.UpdateStage(ctx, r.ID, domain.StageFailed, resume.StatusFailed, reason); err != nil {
		p.logger.Warn("mark resume failed", zap.String("resume_id", r.ID.String()), zap.Error(err))
	}
	if ok {
		p.notify(ctx, "analysis_failed", state)
	}
	p.unlock(r.CandidateID)
	p.logger.Warn("analysis failed", zap.String("resume_id", r.ID.String()), zap.String("reason", reason))
}

func (p *Pipeline) unlock(candidateID uuid.UUID) {
	if p.locker == nil {
		return
	}
	token := p.registry.lockToken(candidateID)
	if token == "" {
		return
	}
	if err := p.locker.ReleaseLock(context.Background(), lockKey(candidateID), token); err != nil {
		p.logger.Warn("release run lock", zap.String("candidate_id", candidateID.String()), zap.Error(err))
	}
}

func (p *Pipeline) notify(ctx context.Context, typ string, s domain.RunState) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ctx, domain.StageEvent{
		Type:        typ,
		ResumeID:    s.ResumeID,
		CandidateID: s.CandidateID,
		Stage:       s.Stage,
		Progress:    s.Progress,
		Error:       s.Error,
		Timestamp:   s.UpdatedAt.Format(time.RFC3339),
	})
}

func (p *Pipeline) recommendations(candidateID uuid.UUID, top []matching.Result, jobs []job.Posting) []match.Recommendation {
	byID := make(map[uuid.UUID]job.Posting, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	now := p.now().UTC()
	out := make([]match.Recommendation, 0, len(top))
	for _, res := range top {
		if res.Score <= p.opts.RecommendMinScore {
			continue
		}
		j := byID[res.JobID]
		out = append(out, match.Recommendation{
			ID:          uuid.New(),
			CandidateID: candidateID,
			JobID:       res.JobID,
			JobTitle:    j.Title,
			CompanyName: j.CompanyName,
			Score:       res.Score,
			Explanation: Explain(res.MatchedSkills),
			CreatedAt:   now,
		})
	}
	return out
}

// Explain renders the recommendation text for a set of matched skills.
func Explain(matched []string) string {
	if len(matched) == 0 {
		return "Match based on skills: general fit"
	}
	return "Match based on skills: " + strings.Join(matched, ", ")
}

func marketOf(jobs []job.Posting) []reasoning.MarketJob {
	out := make([]reasoning.MarketJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, reasoning.MarketJob{Title: j.Title, Requirements: j.Requirements})
	}
	return out
}

func jobMatches(results []matching.Result) []resume.JobMatch {
	out := make([]resume.JobMatch, 0, len(results))
	for _, r := range results {
		out = append(out, resume.JobMatch{JobID: r.JobID, Score: r.Score})
	}
	return out
}

// mergeSkillNames unions skill lists, treating aliases as one skill and
// keeping the first spelling seen.
func mergeSkillNames(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := matching.Normalize(s)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// extractionReason avoids repeating the prefix an ExtractionError already
// carries.
func extractionReason(err error) string {
	if errors.Is(err, resume.ErrExtractionFailed) {
		return err.Error()
	}
	return resume.ErrExtractionFailed.Error() + ": " + err.Error()
}

func experienceLevel(fromInsight, hint string) string {
	if fromInsight != "" {
		return fromInsight
	}
	if l := candidate.LevelForYears(candidate.YearsFromHint(hint)); l != "" {
		return l
	}
	return candidate.LevelMid
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
