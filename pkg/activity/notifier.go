package activity

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	"github.com/goonhub/goonhub/pkg/events"
)

// Store is the persistence the notifier needs.
//
//go:generate mockery --name Store --output mocks --outpkg mocks --filename mock_store.go --with-expecter
type Store interface {
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
	CreateActivity(ctx context.Context, a *Activity) (*Activity, error)
	CreateActivities(ctx context.Context, as []*Activity) error
}

// Notifier turns domain events into activity records.
//
// Pairwise events (follow, tip, unlock) are owned by the recipient only; the
// actor is kept in metadata so it never sees notices about its own actions.
// New posts fan out one record per follower. Stream and token launches are
// global.
type Notifier struct {
	store     Store
	maxFanout int
	logger    *zap.Logger
}

// NewNotifier creates a Notifier. maxFanout <= 0 disables the cap.
func NewNotifier(store Store, maxFanout int, logger *zap.Logger) *Notifier {
	return &Notifier{store: store, maxFanout: maxFanout, logger: logger}
}

var _ events.Handler = (*Notifier)(nil)

func (n *Notifier) Handle(ctx context.Context, e *events.Event) error {
	switch e.Type {
	case events.PostCreated:
		return n.fanOutPost(ctx, e)
	case events.UserFollowed:
		a := New(TypeNewFollower, "New follower", fmt.Sprintf("%s started following you", actorName(e)))
		return n.createPairwise(ctx, e, a)
	case events.TipSent:
		a := New(TypeTipReceived, "Tip received",
			fmt.Sprintf("%s sent you %s SOL", actorName(e), formatSOL(e.String(events.KeyAmountLamports))))
		a.Metadata = map[string]any{events.KeyAmountLamports: e.Payload[events.KeyAmountLamports]}
		return n.createPairwise(ctx, e, a)
	case events.PostUnlocked:
		a := New(TypePostUnlocked, "Post unlocked", fmt.Sprintf("%s unlocked your post", actorName(e)))
		a.PostID = StringPtr(e.PostID)
		a.Metadata = map[string]any{events.KeyAmountLamports: e.Payload[events.KeyAmountLamports]}
		return n.createPairwise(ctx, e, a)
	case events.StreamStarted:
		a := New(TypeStreamLive, "Live now", fmt.Sprintf("%s is live: %s", actorName(e), e.String(events.KeyTitle)))
		a.Metadata = map[string]any{events.KeyStreamID: e.String(events.KeyStreamID), "creator_id": e.ActorID}
		return n.create(ctx, a)
	case events.TokenLaunched:
		a := New(TypeTokenLaunched, "Token launched",
			fmt.Sprintf("%s launched %s", actorName(e), e.String(events.KeyTokenName)))
		a.Metadata = map[string]any{
			events.KeyTokenID:     e.String(events.KeyTokenID),
			events.KeyMintAddress: e.String(events.KeyMintAddress),
			"creator_id":          e.ActorID,
		}
		return n.create(ctx, a)
	default:
		return nil
	}
}

func (n *Notifier) fanOutPost(ctx context.Context, e *events.Event) error {
	followers, err := n.store.ListFollowerIDs(ctx, e.ActorID)
	if err != nil {
		return fmt.Errorf("failed to list followers of %s: %w", e.ActorID, err)
	}
	if len(followers) == 0 {
		return nil
	}
	if n.maxFanout > 0 && len(followers) > n.maxFanout {
		n.logger.Warn("activity fan-out truncated",
			zap.String("creator_id", e.ActorID),
			zap.Int("followers", len(followers)),
			zap.Int("max_fanout", n.maxFanout),
		)
		metrics.FanoutTruncated.Inc()
		followers = followers[:n.maxFanout]
	}

	desc := fmt.Sprintf("%s posted something new", actorName(e))
	if caption := e.String(events.KeyCaption); caption != "" {
		desc = fmt.Sprintf("%s: %s", actorName(e), caption)
	}
	batch := make([]*Activity, 0, len(followers))
	for _, followerID := range followers {
		a := New(TypeNewPost, "New post", desc)
		a.UserID = StringPtr(followerID)
		a.PostID = StringPtr(e.PostID)
		a.Metadata = map[string]any{"creator_id": e.ActorID}
		batch = append(batch, a)
	}
	if err := n.store.CreateActivities(ctx, batch); err != nil {
		return fmt.Errorf("failed to write %d new_post activities: %w", len(batch), err)
	}
	metrics.ActivitiesCreated.WithLabelValues(string(TypeNewPost)).Add(float64(len(batch)))
	return nil
}

func (n *Notifier) createPairwise(ctx context.Context, e *events.Event, a *Activity) error {
	if e.TargetUserID == "" || e.TargetUserID == e.ActorID {
		return nil
	}
	a.UserID = StringPtr(e.TargetUserID)
	if a.Metadata == nil {
		a.Metadata = map[string]any{}
	}
	a.Metadata[KeyActorID] = e.ActorID
	return n.create(ctx, a)
}

func (n *Notifier) create(ctx context.Context, a *Activity) error {
	if _, err := n.store.CreateActivity(ctx, a); err != nil {
		return fmt.Errorf("failed to write %s activity: %w", a.Type, err)
	}
	metrics.ActivitiesCreated.WithLabelValues(string(a.Type)).Inc()
	return nil
}

func actorName(e *events.Event) string {
	if h := e.String(events.KeyActorHandle); h != "" {
		return "@" + h
	}
	return "Someone"
}

func formatSOL(lamports string) string {
	d, err := decimal.NewFromString(lamports)
	if err != nil {
		return "0"
	}
	return d.Shift(-9).String()
}
