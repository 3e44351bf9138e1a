// Package messaging publishes pipeline stage events to an AMQP topic exchange.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"jobmatch/internal/domain"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const defaultExchange = "resume_updates"

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends every StageEvent to the exchange with routing key
// "resume.<candidate id>".
type Publisher struct {
	exchange string
	logger   *zap.Logger

	mu      sync.Mutex
	conn    io.Closer
	channel channel
}

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("amqp url is required")
	}
	if exchange = strings.TrimSpace(exchange); exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return newPublisher(conn, ch, exchange, logger), nil
}

func newPublisher(conn io.Closer, ch channel, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{exchange: exchange, logger: logger, conn: conn, channel: ch}
}

func RoutingKey(evt domain.StageEvent) string {
	return "resume." + evt.CandidateID.String()
}

func (p *Publisher) Notify(_ context.Context, evt domain.StageEvent) {
	if err := p.Publish(evt); err != nil {
		p.logger.Warn("publish stage event",
			zap.String("resume_id", evt.ResumeID.String()),
			zap.String("stage", string(evt.Stage)),
			zap.Error(err),
		)
	}
}

func (p *Publisher) Publish(evt domain.StageEvent) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return errors.New("amqp publisher closed")
	}
	return p.channel.Publish(
		p.exchange,
		RoutingKey(evt),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
		p.channel = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
