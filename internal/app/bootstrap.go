package app

import (
	"context"
	"fmt"
	"strings"

	"jobmatch/internal/config"
	"jobmatch/internal/delivery/http/handler"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/delivery/http/routes"
	v1 "jobmatch/internal/delivery/http/routes/v1"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/usecase/auth"
	"jobmatch/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bodyLimitSlack leaves room for multipart framing around the largest upload.
const bodyLimitSlack = 1 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: int(c.Config.Pipeline.MaxUploadBytes) + bodyLimitSlack,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and HTTP app. The returned cleanup closes
// every dependency the container opened.
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	health := handler.NewHealthHandler(c.DB, map[string]handler.Pinger{"redis": c.Cache})

	resolver := func(ctx context.Context, p principal.Principal) (uuid.UUID, error) {
		profile, err := auth.CandidateOf(ctx, c.Candidates, p, auth.ActionRead)
		if err != nil {
			return uuid.Nil, err
		}
		return profile.ID, nil
	}
	progress := ws.NewHandler(c.Hub, c.Auth, resolver, c.Logger.Named("ws"))

	api := v1.Handlers{
		AuthMW:      middleware.NewAuthMiddleware(c.Auth),
		Auth:        handler.NewAuthHandler(c.Auth, c.Candidates),
		Resume:      handler.NewResumeHandler(c.Analysis, c.Scoring),
		Job:         handler.NewJobHandler(c.Jobs, c.Scoring, c.Tracker),
		Application: handler.NewApplicationHandler(c.Tracker),
		Company:     handler.NewCompanyHandler(c.Jobs),
		Profile:     handler.NewProfileHandler(c.Profiles),
	}

	routes.NewRegistry(health, api, progress.HandleProgressWS).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
