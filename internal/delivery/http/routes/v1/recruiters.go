package v1

import (
	"jobmatch/internal/delivery/http/handler"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain/principal"

	"github.com/gofiber/fiber/v3"
)

// RegisterRecruiters mounts the recruiter-only routes. Ownership of the
// underlying job is checked by the usecases.
func RegisterRecruiters(r fiber.Router, companyHandler *handler.CompanyHandler, applicationHandler *handler.ApplicationHandler) {
	if r == nil {
		return
	}

	recruiter := middleware.RequireRole(principal.RoleRecruiter)
	if companyHandler != nil {
		companyHandler.RegisterRoutes(r.Group("/companies", recruiter))
	}
	if applicationHandler != nil {
		r.Patch("/applications/:id/status", recruiter, applicationHandler.Transition)
		r.Post("/interviews", recruiter, applicationHandler.ScheduleInterview)
	}
}
