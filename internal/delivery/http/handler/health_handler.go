package handler

import (
	"context"
	"sync"
	"time"

	"jobmatch/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness plus the state of each dependency. Only the
// database is required; the others are reported as degraded.
type HealthHandler struct {
	db       Pinger
	optional map[string]Pinger
}

func NewHealthHandler(db Pinger, optional map[string]Pinger) *HealthHandler {
	return &HealthHandler{db: db, optional: optional}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]string, len(h.optional)+1)
	)
	set := func(name, state string) {
		mu.Lock()
		checks[name] = state
		mu.Unlock()
	}

	var g errgroup.Group
	for name, p := range h.optional {
		g.Go(func() error {
			if err := p.Ping(ctx); err != nil {
				set(name, "degraded")
				return nil
			}
			set(name, "ok")
			return nil
		})
	}
	g.Go(func() error {
		if h.db == nil {
			return nil
		}
		if err := h.db.Ping(ctx); err != nil {
			set("database", "down")
			return err
		}
		set("database", "ok")
		return nil
	})

	if err := g.Wait(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "unhealthy", checks)
	}
	return response.Success(c, fiber.StatusOK, "healthy", checks)
}
