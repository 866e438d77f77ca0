package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hostline/hostline/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindRedeemable(ctx context.Context, db *gorm.DB, code string, now time.Time) (*domain.Coupon, error) {
	var item domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM coupons
		 WHERE code = ?
		   AND active = ?
		   AND (valid_from IS NULL OR valid_from <= ?)
		   AND (valid_until IS NULL OR valid_until >= ?)
		   AND (usage_limit IS NULL OR used_count < usage_limit)
		 LIMIT 1`,
		code,
		true,
		now,
		now,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) IncrementUsage(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET used_count = used_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE code = ?
		   AND active = ?
		   AND (usage_limit IS NULL OR used_count < usage_limit)`,
		code,
		true,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountUserRedemptions(ctx context.Context, db *gorm.DB, code string, userID snowflake.ID, excludeOrderID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM orders
		 WHERE user_id = ?
		   AND coupon_code = ?
		   AND id <> ?
		   AND status NOT IN ('cancelled', 'refunded')`,
		userID,
		code,
		excludeOrderID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
