package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hostline/hostline/internal/clock"
	"github.com/hostline/hostline/internal/coupon/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Validate implements domain.Service. It checks the coupon's constraints
// against the given subtotal and returns the discount it would grant.
// Nothing is redeemed here.
func (s *Service) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID snowflake.ID) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, domain.ErrCouponInvalid
	}

	item, err := s.repo.FindRedeemable(ctx, s.db, code, s.clock.Now())
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, domain.ErrCouponInvalid
	}

	if item.MinOrderAmount != nil && subtotal.LessThan(*item.MinOrderAmount) {
		return decimal.Zero, &domain.MinimumNotMetError{Minimum: *item.MinOrderAmount}
	}

	if item.PerUserLimit > 0 {
		used, err := s.repo.CountUserRedemptions(ctx, s.db, code, userID, 0)
		if err != nil {
			return decimal.Zero, err
		}
		if used >= int64(item.PerUserLimit) {
			return decimal.Zero, domain.ErrCouponPerUserLimit
		}
	}

	return item.DiscountFor(subtotal), nil
}

// Redeem implements domain.Service. It must be called with the order
// creation transaction handle so the per-user count, the capped increment
// and the order insert commit or roll back together. The in-flight order
// already carries the code by the time Redeem runs, so its ID is excluded
// from the per-user count.
func (s *Service) Redeem(ctx context.Context, tx *gorm.DB, code string, userID snowflake.ID, orderID snowflake.ID) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrCouponInvalid
	}

	item, err := s.repo.FindRedeemable(ctx, tx, code, s.clock.Now())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrCouponInvalid
	}

	if item.PerUserLimit > 0 {
		used, err := s.repo.CountUserRedemptions(ctx, tx, code, userID, orderID)
		if err != nil {
			return err
		}
		if used >= int64(item.PerUserLimit) {
			return domain.ErrCouponPerUserLimit
		}
	}

	ok, err := s.repo.IncrementUsage(ctx, tx, code)
	if err != nil {
		return err
	}
	if !ok {
		// Another checkout took the last remaining use between our read
		// and the conditional update.
		s.log.Info("coupon usage cap reached at commit time", zap.String("code", code))
		return domain.ErrCouponExhausted
	}

	return nil
}
