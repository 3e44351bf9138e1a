package handler

import (
	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase/jobs"

	"github.com/gofiber/fiber/v3"
)

type CompanyHandler struct {
	jobs *jobs.Service
}

func NewCompanyHandler(j *jobs.Service) *CompanyHandler {
	return &CompanyHandler{jobs: j}
}

func (h *CompanyHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.Create)
	r.Get("/mine", h.Mine)
}

func (h *CompanyHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCompanyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	co, err := h.jobs.CreateCompany(c.Context(), middleware.PrincipalFrom(c), jobs.CompanyInput{
		Name:     req.Name,
		Industry: req.Industry,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "created", co)
}

func (h *CompanyHandler) Mine(c fiber.Ctx) error {
	out, err := h.jobs.MyCompanies(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
