// Package domain contains the coupon model and redemption contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a redeemable discount code. used_count never exceeds usage_limit;
// the increment is guarded by a conditional update, not a prior read.
type Coupon struct {
	ID             snowflake.ID     `json:"id" gorm:"primaryKey"`
	Code           string           `json:"code" gorm:"type:text;not null;uniqueIndex:ux_coupons_code"`
	DiscountType   DiscountType     `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue  decimal.Decimal  `json:"discount_value" gorm:"type:decimal(12,2);not null"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(12,2)"`
	MaxDiscount    *decimal.Decimal `json:"max_discount" gorm:"type:decimal(12,2)"`
	UsageLimit     *int             `json:"usage_limit" gorm:""`
	UsedCount      int              `json:"used_count" gorm:"not null;default:0"`
	PerUserLimit   int              `json:"per_user_limit" gorm:"not null;default:0"`
	ValidFrom      *time.Time       `json:"valid_from" gorm:""`
	ValidUntil     *time.Time       `json:"valid_until" gorm:""`
	Active         bool             `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Coupon) TableName() string { return "coupons" }

// DiscountFor computes the discount this coupon grants against an unrounded
// subtotal. Percentage discounts are capped at max_discount when set; fixed
// discounts never exceed the subtotal.
func (c Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount
}
