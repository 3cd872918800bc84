package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goonhub/goonhub/pkg/chat"
	"github.com/goonhub/goonhub/pkg/post"
	"github.com/goonhub/goonhub/pkg/user"
)

type seedPost struct {
	caption string
	media   string
	price   int64
	vis     post.Visibility
	tags    []string
}

type seedCreator struct {
	id     string
	handle string
	bio    string
	avatar string
	prompt string
	price  int64
	posts  []seedPost
}

var demoCreators = []seedCreator{
	{
		id:     "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
		handle: "sarah_creates",
		bio:    "Digital artist and cosplayer. Exclusive sets every Friday.",
		avatar: "https://images.goonhub.app/avatars/sarah.jpg",
		prompt: "You are Sarah, a playful cosplayer who loves anime and talking to fans about upcoming shoots.",
		price:  1_000_000,
		posts: []seedPost{
			{caption: "New cosplay set dropping soon", media: "https://images.goonhub.app/posts/sarah-1.jpg", vis: post.VisibilityPublic, tags: []string{"cosplay", "anime"}},
			{caption: "Behind the scenes, unlock for the full set", media: "https://images.goonhub.app/posts/sarah-2.jpg", price: 500_000_000, vis: post.VisibilityGoonGated, tags: []string{"cosplay", "exclusive"}},
		},
	},
	{
		id:     "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
		handle: "luna_nights",
		bio:    "Night owl, gamer and streamer.",
		avatar: "https://images.goonhub.app/avatars/luna.jpg",
		prompt: "You are Luna, a laid back gamer who streams late at night and loves chatting about games.",
		posts: []seedPost{
			{caption: "Stream schedule for this week", media: "https://images.goonhub.app/posts/luna-1.jpg", vis: post.VisibilityPublic, tags: []string{"gaming"}},
			{caption: "Subscriber only outtakes", media: "https://images.goonhub.app/posts/luna-2.jpg", price: 250_000_000, vis: post.VisibilitySubscribers, tags: []string{"gaming", "exclusive"}},
		},
	},
	{
		id:     "HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH",
		handle: "fitness_mia",
		bio:    "Personal trainer. Workouts, meal plans and motivation.",
		avatar: "https://images.goonhub.app/avatars/mia.jpg",
		posts: []seedPost{
			{caption: "Morning routine", media: "https://images.goonhub.app/posts/mia-1.jpg", vis: post.VisibilityPublic, tags: []string{"fitness"}},
		},
	},
}

// Seed inserts demo creators with their posts and personas. Creators that
// already exist are skipped, so Seed may run on every start.
func Seed(ctx context.Context, s Store) (int, error) {
	created := 0
	for _, c := range demoCreators {
		_, err := s.GetUserByHandle(ctx, c.handle)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return created, fmt.Errorf("failed to look up %s: %w", c.handle, err)
		}

		if err := seedCreatorData(ctx, s, c); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func seedCreatorData(ctx context.Context, s Store, c seedCreator) error {
	u, err := user.New(c.id, c.handle)
	if err != nil {
		return fmt.Errorf("failed to build seed user %s: %w", c.handle, err)
	}
	u.Bio = c.bio
	u.AvatarURL = c.avatar
	u.IsCreator = true
	u.AgeVerified = true
	u.SolanaAddress = c.id

	if _, err := s.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("failed to seed user %s: %w", c.handle, err)
	}

	for _, sp := range c.posts {
		p, err := post.New(post.Draft{
			CreatorID:     u.ID,
			MediaURL:      sp.media,
			ThumbURL:      sp.media,
			Caption:       sp.caption,
			PriceLamports: sp.price,
			Visibility:    sp.vis,
			Tags:          sp.tags,
		})
		if err != nil {
			return fmt.Errorf("failed to build seed post: %w", err)
		}
		if _, err := s.CreatePost(ctx, p); err != nil {
			return fmt.Errorf("failed to seed post for %s: %w", c.handle, err)
		}
	}

	if c.prompt != "" {
		persona, err := chat.NewPersona(u.ID, c.prompt, c.price, true)
		if err != nil {
			return fmt.Errorf("failed to build seed persona: %w", err)
		}
		if _, err := s.UpsertPersona(ctx, persona); err != nil {
			return fmt.Errorf("failed to seed persona for %s: %w", c.handle, err)
		}
	}
	return nil
}
