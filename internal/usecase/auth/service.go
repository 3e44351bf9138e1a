package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/pkg/jwt"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInternal               = errors.New("internal error")
)

type RegisterInput struct {
	Email    string
	Password string
	Role     principal.Role
	FullName string
}

type Service struct {
	principals repository.PrincipalRepository
	tokens     jwt.Service
	now        func() time.Time
}

func NewService(principals repository.PrincipalRepository, tokens jwt.Service) *Service {
	return &Service{principals: principals, tokens: tokens, now: time.Now}
}

// Register creates a principal. Candidates also get an empty profile.
func (s *Service) Register(ctx context.Context, in RegisterInput) (principal.Principal, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !isValidPassword(in.Password) || !in.Role.Valid() {
		return principal.Principal{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return principal.Principal{}, fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}

	now := s.now().UTC()
	p := principal.Principal{
		ID:           uuid.New(),
		Email:        email,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}

	var profile *candidate.Profile
	if p.IsCandidate() {
		profile = &candidate.Profile{
			ID:          uuid.New(),
			PrincipalID: p.ID,
			FullName:    strings.TrimSpace(in.FullName),
			Skills:      []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if err := s.principals.Create(ctx, p, profile); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return principal.Principal{}, ErrEmailAlreadyRegistered
		}
		return principal.Principal{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return sanitize(p), nil
}

// IssueToken checks the credentials and returns a signed access token.
func (s *Service) IssueToken(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	p, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(p.ID, string(p.Role))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return token, nil
}

// CurrentPrincipal resolves a bearer token. Missing, invalid and expired
// tokens, and tokens of deleted principals, all yield ErrUnauthorized.
func (s *Service) CurrentPrincipal(ctx context.Context, token string) (principal.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return principal.Principal{}, ErrUnauthorized
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return principal.Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return principal.Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, jwt.ErrTokenInvalid)
	}

	p, err := s.principals.GetByID(ctx, claims.PrincipalID)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return principal.Principal{}, ErrUnauthorized
		}
		return principal.Principal{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if string(p.Role) != claims.Role {
		return principal.Principal{}, ErrUnauthorized
	}
	return sanitize(p), nil
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ""
	}
	return email
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}

func sanitize(p principal.Principal) principal.Principal {
	p.PasswordHash = ""
	return p
}
