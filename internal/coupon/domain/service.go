package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service validates and redeems coupon codes. Validate is read-only; Redeem
// is the only writer of used_count and must run inside the order creation
// transaction.
type Service interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID snowflake.ID) (decimal.Decimal, error)

	// Redeem runs inside the order creation transaction. orderID is the
	// order being written; it already carries the code, so the per-user
	// count must not see it.
	Redeem(ctx context.Context, tx *gorm.DB, code string, userID snowflake.ID, orderID snowflake.ID) error
}

var (
	ErrCouponInvalid      = errors.New("coupon_invalid")
	ErrCouponExhausted    = errors.New("coupon_exhausted")
	ErrCouponPerUserLimit = errors.New("coupon_per_user_limit")
)

// MinimumNotMetError reports a cart subtotal below the coupon's minimum so
// the caller can display the required amount.
type MinimumNotMetError struct {
	Minimum decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("coupon_minimum_not_met: minimum order amount is %s", e.Minimum.StringFixed(2))
}
