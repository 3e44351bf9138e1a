package ws

import (
	"context"
	"encoding/json"

	"jobmatch/internal/domain"

	"go.uber.org/zap"
)

// Notifier pushes pipeline stage events to the candidate's open sockets.
type Notifier struct {
	hub    *Hub
	logger *zap.Logger
}

func NewNotifier(hub *Hub, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{hub: hub, logger: logger}
}

func (n *Notifier) Notify(_ context.Context, evt domain.StageEvent) {
	if n == nil || n.hub == nil {
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		n.logger.Warn("marshal stage event", zap.Error(err))
		return
	}
	n.hub.Publish(evt.CandidateID, b)
}
