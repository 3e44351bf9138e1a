package handler

import (
	"errors"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	auth     *auth.Service
	profiles auth.ProfileFinder
}

func NewAuthHandler(svc *auth.Service, profiles auth.ProfileFinder) *AuthHandler {
	return &AuthHandler{auth: svc, profiles: profiles}
}

// RegisterRoutes mounts the public routes. Me needs the auth middleware and
// is mounted by the caller.
func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/token", h.Token)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.auth.Register(c.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     principal.Role(req.Role),
		FullName: req.FullName,
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "registered", principalResponse(p))
}

func (h *AuthHandler) Token(c fiber.Ctx) error {
	var req dto.TokenRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	access, err := h.auth.IssueToken(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TokenResponse{Access: access})
}

func (h *AuthHandler) Me(c fiber.Ctx) error {
	p := middleware.PrincipalFrom(c)
	out := dto.MeResponse{Principal: principalResponse(p)}
	if p.IsCandidate() {
		profile, err := auth.CandidateOf(c.Context(), h.profiles, p, auth.ActionRead)
		if err != nil {
			return mapAccessError(err)
		}
		out.Profile = profile
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func principalResponse(p principal.Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{ID: p.ID, Email: p.Email, Role: string(p.Role), CreatedAt: p.CreatedAt}
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, auth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusConflict, "Email already registered", nil, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, err)
	case errors.Is(err, auth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return mapAccessError(err)
	}
}
