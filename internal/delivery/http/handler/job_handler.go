package handler

import (
	"errors"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase/jobs"
	"jobmatch/internal/usecase/scoring"
	"jobmatch/internal/usecase/tracker"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobHandler struct {
	jobs    *jobs.Service
	scoring *scoring.Service
	tracker *tracker.Service
}

func NewJobHandler(j *jobs.Service, s *scoring.Service, t *tracker.Service) *JobHandler {
	return &JobHandler{jobs: j, scoring: s, tracker: t}
}

// RegisterRoutes mounts the job routes on an authenticated group.
func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.List)
	r.Post("/", middleware.RequireRole(principal.RoleRecruiter), h.Create)
	r.Get("/:id", h.Get)
	r.Delete("/:id", middleware.RequireRole(principal.RoleRecruiter), h.Delete)
	r.Get("/:id/match", h.Match)
	r.Get("/:id/applications", h.Applications)
}

func (h *JobHandler) List(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 20)
	if err != nil {
		return err
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return err
	}
	var companyID uuid.UUID
	if s := c.Query("company_id"); s != "" {
		if companyID, err = uuid.Parse(s); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid company_id", nil, err)
		}
	}

	out, err := h.jobs.List(c.Context(), jobs.ListParams{
		Search:    c.Query("search"),
		Location:  c.Query("location"),
		Type:      c.Query("type"),
		CompanyID: companyID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobHandler) Get(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	j, err := h.jobs.Get(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, j)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	in := jobs.CreateInput{
		Title:        req.Title,
		Location:     req.Location,
		Type:         job.EmploymentType(req.Type),
		SalaryRange:  req.SalaryRange,
		Description:  req.Description,
		Requirements: req.Requirements,
		Benefits:     req.Benefits,
	}
	if req.CompanyID != nil {
		in.CompanyID = *req.CompanyID
	}

	j, err := h.jobs.Create(c.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "created", j)
}

func (h *JobHandler) Delete(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.jobs.Delete(c.Context(), middleware.PrincipalFrom(c), id); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "deleted", nil)
}

func (h *JobHandler) Match(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.scoring.MatchForJob(c.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		if errors.Is(err, scoring.ErrJobNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
		}
		return mapAccessError(err)
	}

	out := dto.JobMatchResponse{
		HasResume:     m.HasResume,
		MatchScore:    m.Score,
		MatchedSkills: m.Matched,
		MissingSkills: m.Missing,
		Strengths:     m.Strengths,
		Gaps:          m.Gaps,
	}
	if !m.HasResume {
		out.Message = "Please upload your resume first to see match scores"
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *JobHandler) Applications(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.tracker.ListForJob(c.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return mapTrackerError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapJobUsecaseError(err error) error {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, jobs.ErrCompanyRequired):
		return middleware.NewAppError(fiber.StatusBadRequest, "You must have a company profile before posting a job", nil, err)
	case errors.Is(err, jobs.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return mapAccessError(err)
	}
}
