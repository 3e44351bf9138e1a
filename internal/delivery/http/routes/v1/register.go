package v1

import (
	"jobmatch/internal/delivery/http/handler"
	"jobmatch/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	AuthMW      *middleware.AuthMiddleware
	Auth        *handler.AuthHandler
	Resume      *handler.ResumeHandler
	Job         *handler.JobHandler
	Application *handler.ApplicationHandler
	Company     *handler.CompanyHandler
	Profile     *handler.ProfileHandler
}

func Register(r fiber.Router, h Handlers) {
	if r == nil || h.AuthMW == nil {
		return
	}

	authGroup := r.Group("/auth")
	if h.Auth != nil {
		h.Auth.RegisterRoutes(authGroup)
		authGroup.Get("/me", h.AuthMW.Middleware(), h.Auth.Me)
	}

	protected := r.Group("", h.AuthMW.Middleware())

	RegisterCandidates(protected.Group("/candidates"), h.Profile, h.Resume, h.Application)
	RegisterJobs(protected.Group("/jobs"), h.Job)
	RegisterRecruiters(protected, h.Company, h.Application)
}
