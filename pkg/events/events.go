// Package events carries domain events from services to side-effect handlers
// such as the activity notifier and the NATS broadcaster.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
)

// Type names a domain event. It doubles as the NATS subject suffix.
type Type string

const (
	PostCreated   Type = "post.created"
	UserFollowed  Type = "user.followed"
	TipSent       Type = "tip.sent"
	PostUnlocked  Type = "post.unlocked"
	StreamStarted Type = "stream.started"
	TokenLaunched Type = "token.launched"
)

// Payload keys shared by publishers and handlers.
const (
	KeyActorHandle    = "actor_handle"
	KeyCaption        = "caption"
	KeyAmountLamports = "amount_lamports"
	KeyTitle          = "title"
	KeyTokenName      = "token_name"
	KeyMintAddress    = "mint_address"
	KeyStreamID       = "stream_id"
	KeyTokenID        = "token_id"
)

// Event is emitted after a successful write.
type Event struct {
	Type         Type           `json:"type"`
	ActorID      string         `json:"actor_id"`
	TargetUserID string         `json:"target_user_id,omitempty"`
	PostID       string         `json:"post_id,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// New creates an Event stamped with the current time.
func New(typ Type, actorID string) *Event {
	return &Event{
		Type:       typ,
		ActorID:    actorID,
		Payload:    map[string]any{},
		OccurredAt: time.Now().UTC(),
	}
}

// With sets a payload value and returns e for chaining.
func (e *Event) With(key string, value any) *Event {
	if e.Payload == nil {
		e.Payload = map[string]any{}
	}
	e.Payload[key] = value
	return e
}

// String returns a payload value as a string, or "" when absent.
func (e *Event) String(key string) string {
	v, ok := e.Payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Handler reacts to an event.
type Handler interface {
	Handle(ctx context.Context, e *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e *Event) error

func (f HandlerFunc) Handle(ctx context.Context, e *Event) error { return f(ctx, e) }

// Bus accepts events from services. Publishing never fails the caller.
type Bus interface {
	Publish(ctx context.Context, e *Event)
}

// Discard is a Bus that drops every event.
var Discard Bus = discard{}

type discard struct{}

func (discard) Publish(context.Context, *Event) {}

// Dispatcher delivers events synchronously to every subscribed handler in
// subscription order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher with the given handlers.
func NewDispatcher(logger *zap.Logger, handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Subscribe appends h to the handler list.
func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Dispatch runs every handler and joins their errors. A failing handler does
// not stop the others.
func (d *Dispatcher) Dispatch(ctx context.Context, e *Event) error {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h.Handle(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish dispatches e and logs handler failures.
func (d *Dispatcher) Publish(ctx context.Context, e *Event) {
	err := d.Dispatch(ctx, e)
	metrics.EventsPublished.WithLabelValues(string(e.Type), metrics.Status(err)).Inc()
	if err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", string(e.Type)),
			zap.String("actor_id", e.ActorID),
			zap.Error(err),
		)
	}
}
