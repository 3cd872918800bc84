package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/config"
)

// Conn is the subset of *nats.Conn used for broadcasting.
//
//go:generate mockery --name Conn --output mocks --outpkg mocks --filename mock_conn.go --with-expecter
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher is a Handler that broadcasts events as JSON on
// <prefix>.<type>.
type NATSPublisher struct {
	conn   Conn
	prefix string
}

// NewNATSPublisher creates a NATSPublisher.
func NewNATSPublisher(conn Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(t Type) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

func (p *NATSPublisher) Handle(_ context.Context, e *Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.Type, err)
	}
	if err := p.conn.Publish(p.Subject(e.Type), data); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.Type, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// ConnectNATS dials the configured server with reconnect handling.
func ConnectNATS(cfg *config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	logger.Info("Connected to NATS",
		zap.String("url", nc.ConnectedUrl()),
		zap.String("subject_prefix", cfg.SubjectPrefix),
	)
	return nc, nil
}
