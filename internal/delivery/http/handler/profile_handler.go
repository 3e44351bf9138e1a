package handler

import (
	"errors"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	profiles *profile.Service
}

func NewProfileHandler(svc *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: svc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/me", h.Get)
	r.Patch("/me", h.Update)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	p, err := h.profiles.Get(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return mapAccessError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	p, err := h.profiles.Update(c.Context(), middleware.PrincipalFrom(c), profile.Update{
		FullName:        req.FullName,
		Phone:           req.Phone,
		Location:        req.Location,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		if errors.Is(err, profile.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		return mapAccessError(err)
	}
	return response.Success(c, fiber.StatusOK, "profile updated", p)
}
