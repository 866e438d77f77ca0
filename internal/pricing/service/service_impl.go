package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	"github.com/hostline/hostline/internal/config"
	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	"github.com/hostline/hostline/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	CatalogSvc catalogdomain.Service
	CouponSvc  coupondomain.Service
}

type Service struct {
	log        *zap.Logger
	billing    config.BillingConfig
	catalogSvc catalogdomain.Service
	couponSvc  coupondomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:        p.Log.Named("pricing.service"),
		billing:    p.Cfg.Billing,
		catalogSvc: p.CatalogSvc,
		couponSvc:  p.CouponSvc,
	}
}

// Price implements domain.Service.
func (s *Service) Price(ctx context.Context, items []domain.CartItem) ([]domain.PricedItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	priced := make([]domain.PricedItem, 0, len(items))
	for _, item := range items {
		p, err := s.priceItem(ctx, item)
		if err != nil {
			return nil, err
		}
		priced = append(priced, p)
	}
	return priced, nil
}

// Quote implements domain.Service. Discount and tax are computed from the
// unrounded subtotal; the three monetary outputs are rounded in a single
// final pass so per-line rounding error cannot compound.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	priced, err := s.Price(ctx, req.Items)
	if err != nil {
		return domain.Quote{}, err
	}

	subtotal := decimal.Zero
	for _, p := range priced {
		subtotal = subtotal.Add(p.LineTotal)
	}

	discount := decimal.Zero
	if req.CouponCode != "" {
		discount, err = s.couponSvc.Validate(ctx, req.CouponCode, subtotal, req.UserID)
		if err != nil {
			return domain.Quote{}, err
		}
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(s.billing.TaxRate).Div(decimal.NewFromInt(100))
	total := taxable.Add(tax)

	return domain.Quote{
		Items:    priced,
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Tax:      tax.Round(2),
		Total:    total.Round(2),
	}, nil
}

func (s *Service) priceItem(ctx context.Context, item domain.CartItem) (domain.PricedItem, error) {
	if !item.ProductType.Valid() {
		return domain.PricedItem{}, domain.ErrUnknownProductType
	}
	if item.Quantity < 0 {
		return domain.PricedItem{}, domain.ErrInvalidQuantity
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	productID, err := snowflake.ParseString(item.ProductID)
	if err != nil {
		return domain.PricedItem{}, domain.ErrInvalidProductID
	}

	if item.ProductType == catalogdomain.ProductDomain {
		return s.priceDomainItem(ctx, item, productID)
	}
	return s.pricePlanItem(ctx, item, productID)
}

func (s *Service) pricePlanItem(ctx context.Context, item domain.CartItem, productID snowflake.ID) (domain.PricedItem, error) {
	months := item.BillingCycle.Months()
	if months == 0 {
		return domain.PricedItem{}, domain.ErrInvalidBillingCycle
	}

	plan, err := s.catalogSvc.GetPlan(ctx, item.ProductType, productID)
	if err != nil {
		return domain.PricedItem{}, err
	}

	var unit decimal.Decimal
	if override := plan.CyclePrice(item.BillingCycle); override != nil {
		unit = *override
	} else {
		// Absent overrides are common in the catalog: fall back to the
		// monthly price times the cycle length, unless policy disables it.
		if !s.billing.CycleFallback {
			return domain.PricedItem{}, domain.ErrCycleNotOffered
		}
		unit = plan.PriceMonthly.Mul(decimal.NewFromInt(int64(months)))
	}

	qty := decimal.NewFromInt(int64(item.Quantity))
	lineTotal := unit.Mul(qty).Add(plan.SetupFee)

	return domain.PricedItem{
		ProductType:  item.ProductType,
		ProductID:    plan.ID,
		Description:  fmt.Sprintf("%s (%s)", plan.Name, item.BillingCycle),
		BillingCycle: item.BillingCycle,
		Quantity:     item.Quantity,
		UnitPrice:    unit,
		SetupFee:     plan.SetupFee,
		LineTotal:    lineTotal,
	}, nil
}

func (s *Service) priceDomainItem(ctx context.Context, item domain.CartItem, tldID snowflake.ID) (domain.PricedItem, error) {
	if item.DomainName == "" {
		return domain.PricedItem{}, domain.ErrMissingDomainName
	}

	tld, err := s.catalogSvc.GetTLD(ctx, tldID)
	if err != nil {
		return domain.PricedItem{}, err
	}

	years := item.Years
	if years == 0 {
		years = 1
	}
	if years < tld.MinYears || years > tld.MaxYears {
		return domain.PricedItem{}, &domain.YearsOutOfRangeError{
			Years:    years,
			MinYears: tld.MinYears,
			MaxYears: tld.MaxYears,
		}
	}

	var perYear decimal.Decimal
	switch item.Action {
	case catalogdomain.ActionRegister:
		perYear = tld.PriceRegister
	case catalogdomain.ActionTransfer:
		perYear = tld.PriceTransfer
	default:
		return domain.PricedItem{}, domain.ErrInvalidDomainAction
	}

	unit := perYear.Mul(decimal.NewFromInt(int64(years)))
	qty := decimal.NewFromInt(int64(item.Quantity))

	return domain.PricedItem{
		ProductType:  item.ProductType,
		ProductID:    tld.ID,
		Description:  fmt.Sprintf("%s %s (%d yr)", item.DomainName, item.Action, years),
		BillingCycle: catalogdomain.CycleAnnual,
		Quantity:     item.Quantity,
		DomainName:   item.DomainName,
		Action:       item.Action,
		Years:        years,
		UnitPrice:    unit,
		SetupFee:     decimal.Zero,
		LineTotal:    unit.Mul(qty),
	}, nil
}
