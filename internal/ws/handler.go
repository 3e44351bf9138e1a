package ws

import (
	"context"
	"net/http"

	"jobmatch/internal/domain/principal"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Authenticator interface {
	CurrentPrincipal(ctx context.Context, token string) (principal.Principal, error)
}

// CandidateResolver maps a candidate principal to its profile id.
type CandidateResolver func(ctx context.Context, p principal.Principal) (uuid.UUID, error)

type Handler struct {
	hub      *Hub
	auth     Authenticator
	resolver CandidateResolver
	logger   *zap.Logger
}

func NewHandler(hub *Hub, auth Authenticator, resolver CandidateResolver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, auth: auth, resolver: resolver, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleProgressWS streams stage events for the candidate named by the
// ?token= query parameter.
func (h *Handler) HandleProgressWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil || h.auth == nil || h.resolver == nil {
		return fiber.ErrServiceUnavailable
	}

	ctx := c.Context()
	p, err := h.auth.CurrentPrincipal(ctx, c.Query("token"))
	if err != nil {
		return fiber.ErrUnauthorized
	}
	if !p.IsCandidate() {
		return fiber.ErrForbidden
	}
	candidateID, err := h.resolver(ctx, p)
	if err != nil {
		return fiber.ErrNotFound
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("ws upgrade", zap.Error(err))
			return
		}

		client := NewClient(h.hub, wsConn, candidateID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
