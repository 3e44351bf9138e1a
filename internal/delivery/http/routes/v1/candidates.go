package v1

import (
	"jobmatch/internal/delivery/http/handler"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain/principal"

	"github.com/gofiber/fiber/v3"
)

func RegisterCandidates(
	r fiber.Router,
	profileHandler *handler.ProfileHandler,
	resumeHandler *handler.ResumeHandler,
	applicationHandler *handler.ApplicationHandler,
) {
	if r == nil {
		return
	}

	candidates := r.Group("", middleware.RequireRole(principal.RoleCandidate))
	if profileHandler != nil {
		profileHandler.RegisterRoutes(candidates)
	}
	if resumeHandler != nil {
		resumeHandler.RegisterRoutes(candidates)
	}
	if applicationHandler != nil {
		candidates.Post("/applications", applicationHandler.Apply)
		candidates.Get("/applications", applicationHandler.ListMine)
		candidates.Get("/interviews", applicationHandler.ListInterviews)
	}
}
