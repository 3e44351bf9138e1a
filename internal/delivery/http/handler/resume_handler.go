package handler

import (
	"errors"
	"time"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase/analysis"
	resumeuc "jobmatch/internal/usecase/resume"
	"jobmatch/internal/usecase/scoring"

	"github.com/gofiber/fiber/v3"
)

const resumeField = "resume"

// ResumeHandler serves the candidate's résumé analysis endpoints.
type ResumeHandler struct {
	analysis *analysis.Service
	scoring  *scoring.Service
}

func NewResumeHandler(a *analysis.Service, s *scoring.Service) *ResumeHandler {
	return &ResumeHandler{analysis: a, scoring: s}
}

func (h *ResumeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/resume/analyze", h.Analyze)
	r.Get("/resume/status", h.Status)
	r.Post("/resume/cancel", h.Cancel)
	r.Get("/profile/analysis", h.LatestAnalysis)
	r.Get("/analysis-history", h.History)
	r.Get("/recommendations", h.Recommendations)
}

func (h *ResumeHandler) Analyze(c fiber.Ctx) error {
	fh, err := c.FormFile(resumeField)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing resume file", nil, err)
	}
	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable resume file", nil, err)
	}
	defer f.Close()

	r, err := h.analysis.Analyze(c.Context(), middleware.PrincipalFrom(c), resumeuc.Document{
		Content:     f,
		ContentType: fh.Header.Get("Content-Type"),
		FileName:    fh.Filename,
		SizeBytes:   fh.Size,
	})
	if err != nil {
		return mapAnalysisError(err)
	}

	return response.Success(c, fiber.StatusAccepted, "accepted", dto.AnalyzeResponse{
		Status:   string(r.Stage),
		Message:  "Resume received, analysis started",
		ResumeID: r.ID,
	})
}

func (h *ResumeHandler) Status(c fiber.Ctx) error {
	state, err := h.analysis.Status(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return mapAnalysisError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, state)
}

func (h *ResumeHandler) Cancel(c fiber.Ctx) error {
	if err := h.analysis.Cancel(c.Context(), middleware.PrincipalFrom(c)); err != nil {
		return mapAnalysisError(err)
	}
	return response.Success(c, fiber.StatusOK, "cancelled", nil)
}

func (h *ResumeHandler) LatestAnalysis(c fiber.Ctx) error {
	a, found, err := h.analysis.Latest(c.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return mapAnalysisError(err)
	}
	out := dto.LatestAnalysisResponse{HasAnalysis: found}
	if found {
		out.Data = a
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ResumeHandler) History(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return err
	}
	entries, err := h.analysis.History(c.Context(), middleware.PrincipalFrom(c), limit)
	if err != nil {
		return mapAnalysisError(err)
	}

	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryResponse{
			ID:              e.Analysis.ID,
			ResumeID:        e.Analysis.ResumeID,
			FileName:        e.FileName,
			Summary:         e.Analysis.Summary,
			ExtractedSkills: e.Analysis.ExtractedSkills,
			ExperienceLevel: e.Analysis.ExperienceLevel,
			ProcessingTime:  e.Analysis.ProcessingSecs,
			CreatedAt:       e.Analysis.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ResumeHandler) Recommendations(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return err
	}
	recs, err := h.scoring.Recommendations(c.Context(), middleware.PrincipalFrom(c), limit)
	if err != nil {
		return mapAccessError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, recs)
}

func mapAnalysisError(err error) error {
	switch {
	case errors.Is(err, resumeuc.ErrTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "Resume exceeds the upload limit", nil, err)
	case errors.Is(err, resumeuc.ErrUnsupportedFormat):
		return middleware.NewAppError(fiber.StatusUnsupportedMediaType, "Unsupported resume format", nil, err)
	case errors.Is(err, resumeuc.ErrEmptyDocument):
		return middleware.NewAppError(fiber.StatusBadRequest, "Resume is empty", nil, err)
	case errors.Is(err, analysis.ErrAnalysisInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "An analysis is already in progress", nil, err)
	case errors.Is(err, analysis.ErrBusy):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Analysis queue is full, try again shortly", nil, err)
	case errors.Is(err, analysis.ErrNotCancellable):
		return middleware.NewAppError(fiber.StatusConflict, "Analysis can no longer be cancelled", nil, err)
	case errors.Is(err, analysis.ErrNoActiveRun):
		return middleware.NewAppError(fiber.StatusConflict, "No analysis in progress", nil, err)
	case errors.Is(err, analysis.ErrNoResume):
		return middleware.NewAppError(fiber.StatusNotFound, "No resume uploaded yet", nil, err)
	default:
		return mapAccessError(err)
	}
}
