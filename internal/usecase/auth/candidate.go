package auth

import (
	"context"
	"errors"
	"fmt"

	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
)

type ProfileFinder interface {
	GetByPrincipalID(ctx context.Context, principalID uuid.UUID) (candidate.Profile, error)
}

// CandidateOf returns the profile owned by p after checking p may act on it.
func CandidateOf(ctx context.Context, profiles ProfileFinder, p principal.Principal, action Action) (candidate.Profile, error) {
	if !p.IsCandidate() {
		if p.ID == uuid.Nil {
			return candidate.Profile{}, ErrUnauthorized
		}
		return candidate.Profile{}, ErrForbidden
	}
	profile, err := profiles.GetByPrincipalID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			return candidate.Profile{}, ErrForbidden
		}
		return candidate.Profile{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := Authorize(p, action, Resource{Kind: KindCandidateProfile, OwnerID: profile.PrincipalID}); err != nil {
		return candidate.Profile{}, err
	}
	return profile, nil
}
