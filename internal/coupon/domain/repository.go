package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindRedeemable returns the coupon when it is active, inside its
	// validity window and under its usage cap at the given instant.
	FindRedeemable(ctx context.Context, db *gorm.DB, code string, now time.Time) (*Coupon, error)

	// IncrementUsage applies the capped used_count increment and reports
	// whether a row was affected. The row count is the correctness check.
	IncrementUsage(ctx context.Context, db *gorm.DB, code string) (bool, error)

	// CountUserRedemptions counts the user's live orders carrying the code,
	// skipping excludeOrderID so an order does not count against itself.
	CountUserRedemptions(ctx context.Context, db *gorm.DB, code string, userID snowflake.ID, excludeOrderID snowflake.ID) (int64, error)
}
