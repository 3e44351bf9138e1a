package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/auth"

	"go.uber.org/zap"
)

var ErrInvalidInput = errors.New("invalid profile input")

// Update holds the owner-editable fields. Nil fields keep their stored value.
type Update struct {
	FullName        *string
	Phone           *string
	Location        *string
	ExperienceLevel *string
}

type Service struct {
	candidates repository.CandidateRepository
	logger     *zap.Logger
}

func NewService(candidates repository.CandidateRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{candidates: candidates, logger: logger}
}

func (s *Service) Get(ctx context.Context, p principal.Principal) (candidate.Profile, error) {
	return auth.CandidateOf(ctx, s.candidates, p, auth.ActionRead)
}

func (s *Service) Update(ctx context.Context, p principal.Principal, in Update) (candidate.Profile, error) {
	current, err := auth.CandidateOf(ctx, s.candidates, p, auth.ActionWrite)
	if err != nil {
		return candidate.Profile{}, err
	}
	if in.FullName == nil && in.Phone == nil && in.Location == nil && in.ExperienceLevel == nil {
		return candidate.Profile{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	d := repository.ProfileDetails{
		FullName:        current.FullName,
		Phone:           current.Phone,
		Location:        current.Location,
		ExperienceLevel: current.ExperienceLevel,
	}
	if in.FullName != nil {
		d.FullName = strings.TrimSpace(*in.FullName)
		if d.FullName == "" {
			return candidate.Profile{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
		}
	}
	if in.Phone != nil {
		d.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Location != nil {
		d.Location = strings.TrimSpace(*in.Location)
	}
	if in.ExperienceLevel != nil {
		level := strings.TrimSpace(*in.ExperienceLevel)
		if !candidate.ValidLevel(level) {
			return candidate.Profile{}, fmt.Errorf("%w: unknown experience level %q", ErrInvalidInput, level)
		}
		d.ExperienceLevel = level
	}

	updated, err := s.candidates.UpdateDetails(ctx, current.ID, d)
	if err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			return candidate.Profile{}, auth.ErrForbidden
		}
		return candidate.Profile{}, fmt.Errorf("%w: %v", auth.ErrInternal, err)
	}
	s.logger.Info("candidate profile updated", zap.String("candidate_id", current.ID.String()))
	return updated, nil
}
