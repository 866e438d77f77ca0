package ratelimit

import (
	"context"
	"fmt"

	"github.com/hostline/hostline/internal/config"
)

// CheckoutLimiter throttles the public checkout endpoints per client. It is
// a no-op when redis is not configured or the limiter is disabled.
type CheckoutLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewCheckoutLimiter(cfg config.Config, bucket *TokenBucket) *CheckoutLimiter {
	if !cfg.Checkout.RateLimitEnabled || bucket == nil {
		return nil
	}
	return &CheckoutLimiter{
		bucket: bucket,
		rate:   cfg.Checkout.RateLimitPerSec,
		burst:  cfg.Checkout.RateLimitBurst,
	}
}

func (l *CheckoutLimiter) Allow(ctx context.Context, clientKey string) (Result, error) {
	if l == nil {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf("checkout:%s", clientKey), l.rate, l.burst)
}
