package analysis

import (
	"context"
	"sync"
	"time"

	"jobmatch/internal/domain"

	"github.com/google/uuid"
)

type run struct {
	state     domain.RunState
	cancel    context.CancelFunc
	cancelled bool
	lockToken string
}

func (r *run) snapshot(now time.Time) domain.RunState {
	s := r.state
	end := now
	if s.Stage.Terminal() {
		end = s.UpdatedAt
	}
	if !s.StartedAt.IsZero() {
		s.Elapsed = end.Sub(s.StartedAt).Seconds()
	}
	return s
}

// Registry holds the latest run of every candidate in memory. A candidate has
// at most one non-terminal run.
type Registry struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*run
	now  func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{runs: make(map[uuid.UUID]*run), now: time.Now}
}

// reserve claims the candidate's slot before a resume exists. It fails while
// another run is in flight.
func (g *Registry) reserve(candidateID uuid.UUID, lockToken string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.runs[candidateID]; ok && !r.state.Stage.Terminal() {
		return false
	}
	now := g.now().UTC()
	g.runs[candidateID] = &run{
		state: domain.RunState{
			CandidateID: candidateID,
			Stage:       domain.StageUploaded,
			Progress:    domain.StageUploaded.Progress(),
			StartedAt:   now,
			UpdatedAt:   now,
		},
		lockToken: lockToken,
	}
	return true
}

// release drops a reservation that never got a resume.
func (g *Registry) release(candidateID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.runs[candidateID]; ok && r.state.ResumeID == uuid.Nil {
		delete(g.runs, candidateID)
	}
}

func (g *Registry) attach(candidateID, resumeID uuid.UUID, cancel context.CancelFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runs[candidateID]
	if !ok {
		return
	}
	r.state.ResumeID = resumeID
	r.cancel = cancel
}

// advance moves the run forward. It reports false if the run is gone or the
// transition is not allowed, which happens after a cancel.
func (g *Registry) advance(candidateID uuid.UUID, to domain.Stage, reason string) (domain.RunState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runs[candidateID]
	if !ok || !domain.CanAdvance(r.state.Stage, to) {
		return domain.RunState{}, false
	}
	if r.cancelled && to != domain.StageFailed {
		return domain.RunState{}, false
	}
	now := g.now().UTC()
	r.state.Stage = to
	r.state.Progress = to.Progress()
	r.state.UpdatedAt = now
	if to == domain.StageFailed {
		r.state.Error = reason
	}
	if to.Terminal() {
		r.cancel = nil
	}
	return r.snapshot(now), true
}

// cancel cancels the candidate's run if it is in a cancellable stage.
func (g *Registry) cancel(candidateID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runs[candidateID]
	if !ok || r.state.Stage.Terminal() {
		return ErrNoActiveRun
	}
	if !r.state.Stage.Cancellable() || r.cancel == nil {
		return ErrNotCancellable
	}
	r.cancelled = true
	r.cancel()
	return nil
}

func (g *Registry) wasCancelled(candidateID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runs[candidateID]
	return ok && r.cancelled
}

func (g *Registry) lockToken(candidateID uuid.UUID) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.runs[candidateID]; ok {
		return r.lockToken
	}
	return ""
}

// Get returns the candidate's latest run.
func (g *Registry) Get(candidateID uuid.UUID) (domain.RunState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runs[candidateID]
	if !ok {
		return domain.RunState{}, false
	}
	return r.snapshot(g.now().UTC()), true
}

// ActiveResume reports whether resumeID belongs to a non-terminal run.
func (g *Registry) ActiveResume(resumeID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.runs {
		if r.state.ResumeID == resumeID && !r.state.Stage.Terminal() {
			return true
		}
	}
	return false
}
