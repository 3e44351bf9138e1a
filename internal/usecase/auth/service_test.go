package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/pkg/jwt"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrincipals struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]principal.Principal
	profiles map[uuid.UUID]candidate.Profile
	err      error
}

func newFakePrincipals() *fakePrincipals {
	return &fakePrincipals{byID: map[uuid.UUID]principal.Principal{}, profiles: map[uuid.UUID]candidate.Profile{}}
}

func (f *fakePrincipals) Create(ctx context.Context, p principal.Principal, profile *candidate.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Email == p.Email {
			return repository.ErrEmailTaken
		}
	}
	f.byID[p.ID] = p
	if profile != nil {
		f.profiles[p.ID] = *profile
	}
	return nil
}

func (f *fakePrincipals) GetByID(ctx context.Context, id uuid.UUID) (principal.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return principal.Principal{}, repository.ErrPrincipalNotFound
	}
	return p, nil
}

func (f *fakePrincipals) GetByEmail(ctx context.Context, email string) (principal.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return principal.Principal{}, f.err
	}
	for _, p := range f.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return principal.Principal{}, repository.ErrPrincipalNotFound
}

func newTestService() (*Service, *fakePrincipals) {
	repo := newFakePrincipals()
	return NewService(repo, jwt.NewHMACService("test-secret", time.Hour, "jobmatch")), repo
}

func TestRegister_CandidateGetsProfile(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Register(context.Background(), RegisterInput{
		Email: " Ada@Example.com ", Password: "password123", Role: principal.RoleCandidate, FullName: "Ada Lovelace",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", p.Email)
	assert.Empty(t, p.PasswordHash)
	profile, ok := repo.profiles[p.ID]
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.NotNil(t, profile.Skills)
}

func TestRegister_RecruiterHasNoProfile(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Register(context.Background(), RegisterInput{Email: "r@example.com", Password: "password123", Role: principal.RoleRecruiter})
	require.NoError(t, err)
	_, ok := repo.profiles[p.ID]
	assert.False(t, ok)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"bad email":      {Email: "not-an-email", Password: "password123", Role: principal.RoleCandidate},
		"short password": {Email: "a@example.com", Password: "short", Role: principal.RoleCandidate},
		"unknown role":   {Email: "a@example.com", Password: "password123", Role: "admin"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	in := RegisterInput{Email: "a@example.com", Password: "password123", Role: principal.RoleCandidate}

	_, err := svc.Register(ctx, in)
	require.NoError(t, err)
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
}

func TestIssueTokenAndCurrentPrincipal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password123", Role: principal.RoleRecruiter})
	require.NoError(t, err)

	token, err := svc.IssueToken(ctx, "A@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := svc.CurrentPrincipal(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, p.ID)
	assert.Equal(t, principal.RoleRecruiter, p.Role)
	assert.Empty(t, p.PasswordHash)
}

func TestIssueToken_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password123", Role: principal.RoleCandidate})
	require.NoError(t, err)

	_, err = svc.IssueToken(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.IssueToken(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.IssueToken(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueToken_RepositoryFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.err = errors.New("db down")

	_, err := svc.IssueToken(context.Background(), "a@example.com", "password123")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCurrentPrincipal_Unauthorized(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CurrentPrincipal(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CurrentPrincipal(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)

	other := jwt.NewHMACService("other-secret", time.Hour, "jobmatch")
	forged, err := other.GenerateAccessToken(uuid.New(), "candidate")
	require.NoError(t, err)
	_, err = svc.CurrentPrincipal(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	unknown, err := svc.tokens.GenerateAccessToken(uuid.New(), "candidate")
	require.NoError(t, err)
	_, err = svc.CurrentPrincipal(ctx, unknown)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorize(t *testing.T) {
	cand := principal.Principal{ID: uuid.New(), Role: principal.RoleCandidate}
	rec := principal.Principal{ID: uuid.New(), Role: principal.RoleRecruiter}
	otherID := uuid.New()

	assert.NoError(t, Authorize(cand, ActionRead, Resource{Kind: KindResume, OwnerID: cand.ID}))
	assert.ErrorIs(t, Authorize(cand, ActionRead, Resource{Kind: KindResume, OwnerID: otherID}), ErrForbidden)
	assert.ErrorIs(t, Authorize(rec, ActionRead, Resource{Kind: KindCandidateProfile, OwnerID: rec.ID}), ErrForbidden)

	assert.NoError(t, Authorize(rec, ActionWrite, Resource{Kind: KindJobPosting, OwnerID: rec.ID}))
	assert.ErrorIs(t, Authorize(rec, ActionWrite, Resource{Kind: KindJobPosting, OwnerID: otherID}), ErrForbidden)
	assert.NoError(t, Authorize(cand, ActionRead, Resource{Kind: KindJobPosting, OwnerID: otherID}))
	assert.ErrorIs(t, Authorize(cand, ActionWrite, Resource{Kind: KindJobPosting, OwnerID: cand.ID}), ErrForbidden)

	assert.NoError(t, Authorize(rec, ActionRead, Resource{Kind: KindJobApplications, OwnerID: rec.ID}))
	assert.ErrorIs(t, Authorize(rec, ActionRead, Resource{Kind: KindJobApplications, OwnerID: otherID}), ErrForbidden)
	assert.ErrorIs(t, Authorize(cand, ActionRead, Resource{Kind: KindJobApplications, OwnerID: cand.ID}), ErrForbidden)

	assert.ErrorIs(t, Authorize(principal.Principal{}, ActionRead, Resource{Kind: KindResume}), ErrUnauthorized)
	assert.ErrorIs(t, Authorize(cand, ActionRead, Resource{Kind: "unknown", OwnerID: cand.ID}), ErrForbidden)
}
