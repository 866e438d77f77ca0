// Package seed bootstraps a demo catalog so a fresh install can take
// checkouts immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsureDemoCatalog seeds starter plans, TLDs and a welcome coupon. It is
// idempotent; existing rows are left untouched.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePlansTx(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureTLDsTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureCouponsTx(ctx, tx, node)
	})
}

func ensurePlansTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.Plan{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	annualStarter := decimal.RequireFromString("59.90")
	annualBusiness := decimal.RequireFromString("119.90")
	plans := []catalogdomain.Plan{
		{
			ID:           node.Generate(),
			Type:         catalogdomain.ProductHosting,
			Name:         "Starter Hosting",
			PriceMonthly: decimal.RequireFromString("5.99"),
			PriceAnnual:  &annualStarter,
			SetupFee:     decimal.Zero,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           node.Generate(),
			Type:         catalogdomain.ProductHosting,
			Name:         "Business Hosting",
			PriceMonthly: decimal.RequireFromString("11.99"),
			PriceAnnual:  &annualBusiness,
			SetupFee:     decimal.Zero,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           node.Generate(),
			Type:         catalogdomain.ProductVPS,
			Name:         "VPS 2G",
			PriceMonthly: decimal.RequireFromString("14.99"),
			SetupFee:     decimal.RequireFromString("9.99"),
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	return tx.WithContext(ctx).Create(&plans).Error
}

func ensureTLDsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&catalogdomain.TLD{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	tlds := []catalogdomain.TLD{
		{
			ID:            node.Generate(),
			Name:          "com",
			PriceRegister: decimal.RequireFromString("12.99"),
			PriceTransfer: decimal.RequireFromString("11.99"),
			PriceRenew:    decimal.RequireFromString("13.99"),
			MinYears:      1,
			MaxYears:      10,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            node.Generate(),
			Name:          "net",
			PriceRegister: decimal.RequireFromString("14.99"),
			PriceTransfer: decimal.RequireFromString("13.99"),
			PriceRenew:    decimal.RequireFromString("15.99"),
			MinYears:      1,
			MaxYears:      10,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	return tx.WithContext(ctx).Create(&tlds).Error
}

func ensureCouponsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var existing coupondomain.Coupon
	err := tx.WithContext(ctx).Where("code = ?", "SAVE10").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	limit := 100
	coupon := coupondomain.Coupon{
		ID:            node.Generate(),
		Code:          "SAVE10",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    &limit,
		PerUserLimit:  1,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return tx.WithContext(ctx).Create(&coupon).Error
}
