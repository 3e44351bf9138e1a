package scheduler

import (
	"context"
	"fmt"
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ReasonTimedOut = "processing timed out"
	sweepBatch     = 100
)

type ActiveRuns interface {
	ActiveResume(resumeID uuid.UUID) bool
}

// Reaper fails resumes left queued or processing past staleAfter, which
// happens when a server stops mid-run. Runs this process still owns are left
// alone.
type Reaper struct {
	resumes    repository.ResumeRepository
	active     ActiveRuns
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewReaper(resumes repository.ResumeRepository, active ActiveRuns, staleAfter time.Duration, logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &Reaper{
		resumes:    resumes,
		active:     active,
		staleAfter: staleAfter,
		logger:     logger.With(zap.String("job", "stale_reaper")),
		now:        time.Now,
	}
}

// Sweep marks stale resumes failed and reports how many it changed.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().UTC().Add(-r.staleAfter)
	stale, err := r.resumes.ListStale(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list stale resumes: %w", err)
	}

	reaped := 0
	for _, rs := range stale {
		if r.active != nil && r.active.ActiveResume(rs.ID) {
			continue
		}
		if err := r.resumes.UpdateStage(ctx, rs.ID, domain.StageFailed, resume.StatusFailed, ReasonTimedOut); err != nil {
			r.logger.Warn("mark stale resume failed", zap.String("resume_id", rs.ID.String()), zap.Error(err))
			continue
		}
		reaped++
		r.logger.Info("stale resume failed",
			zap.String("resume_id", rs.ID.String()),
			zap.String("stage", string(rs.Stage)),
			zap.Time("updated_at", rs.UpdatedAt),
		)
	}
	return reaped, nil
}
