package handler

import (
	"errors"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain/application"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase/tracker"

	"github.com/gofiber/fiber/v3"
)

type ApplicationHandler struct {
	tracker *tracker.Service
}

func NewApplicationHandler(t *tracker.Service) *ApplicationHandler {
	return &ApplicationHandler{tracker: t}
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	var req dto.ApplyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	a, err := h.tracker.Apply(c.Context(), middleware.PrincipalFrom(c), req.JobID)
	if err != nil {
		return mapTrackerError(err)
	}
	return response.Success(c, fiber.StatusCreated, "applied", a)
}

func (h *ApplicationHandler) ListMine(c fiber.Ctx) error {
	out, err := h.tracker.ListForCandidate(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return mapTrackerError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ApplicationHandler) ListInterviews(c fiber.Ctx) error {
	out, err := h.tracker.ListInterviews(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return mapTrackerError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ApplicationHandler) Transition(c fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	a, err := h.tracker.Transition(c.Context(), middleware.PrincipalFrom(c), id, application.Status(req.Status))
	if err != nil {
		return mapTrackerError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}

func (h *ApplicationHandler) ScheduleInterview(c fiber.Ctx) error {
	var req dto.ScheduleInterviewRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	iv, err := h.tracker.ScheduleInterview(c.Context(), middleware.PrincipalFrom(c), tracker.InterviewInput{
		ApplicationID: req.ApplicationID,
		ScheduledTime: req.ScheduledTime,
		Interviewer:   req.Interviewer,
		Notes:         req.Notes,
	})
	if err != nil {
		return mapTrackerError(err)
	}
	return response.Success(c, fiber.StatusCreated, "scheduled", iv)
}

func mapTrackerError(err error) error {
	switch {
	case errors.Is(err, tracker.ErrDuplicateApplication):
		return middleware.NewAppError(fiber.StatusConflict, "Already applied to this job", nil, err)
	case errors.Is(err, tracker.ErrJobInactive):
		return middleware.NewAppError(fiber.StatusConflict, "Job is no longer accepting applications", nil, err)
	case errors.Is(err, tracker.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, tracker.ErrApplicationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", nil, err)
	case errors.Is(err, tracker.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	case errors.Is(err, tracker.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return mapAccessError(err)
	}
}
