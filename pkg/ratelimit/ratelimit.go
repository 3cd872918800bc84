// Package ratelimit throttles expensive endpoints per client.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may proceed.
//
//go:generate mockery --name Limiter --output mocks --outpkg mocks --filename mock_limiter.go --with-expecter
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Unlimited allows every request.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
