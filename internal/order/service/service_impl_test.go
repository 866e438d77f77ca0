package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	catalogrepo "github.com/hostline/hostline/internal/catalog/repository"
	catalogsvc "github.com/hostline/hostline/internal/catalog/service"
	"github.com/hostline/hostline/internal/clock"
	"github.com/hostline/hostline/internal/config"
	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	couponrepo "github.com/hostline/hostline/internal/coupon/repository"
	couponsvc "github.com/hostline/hostline/internal/coupon/service"
	"github.com/hostline/hostline/internal/gateway/adapters"
	"github.com/hostline/hostline/internal/gateway/adapters/offline"
	"github.com/hostline/hostline/internal/order/domain"
	"github.com/hostline/hostline/internal/order/repository"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
	pricingsvc "github.com/hostline/hostline/internal/pricing/service"
	"github.com/hostline/hostline/internal/provisioning"
	provisioningdomain "github.com/hostline/hostline/internal/provisioning/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type orderFixture struct {
	svc    domain.Service
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	plan   catalogdomain.Plan
	vps    catalogdomain.Plan
	tld    catalogdomain.TLD
	userID snowflake.ID
}

// couponStub lets a test force the redemption outcome inside the order
// transaction independently of the earlier validation.
type couponStub struct {
	discount  decimal.Decimal
	redeemErr error
}

func (s *couponStub) Validate(ctx context.Context, code string, subtotal decimal.Decimal, userID snowflake.ID) (decimal.Decimal, error) {
	return s.discount, nil
}

func (s *couponStub) Redeem(ctx context.Context, tx *gorm.DB, code string, userID snowflake.ID, orderID snowflake.ID) error {
	return s.redeemErr
}

func setupOrders(t *testing.T, couponOverride coupondomain.Service) *orderFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	return setupOrdersAt(t, couponOverride, dsn, 1)
}

func setupOrdersAt(t *testing.T, couponOverride coupondomain.Service, dsn string, conns int) *orderFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Plan{},
		&catalogdomain.TLD{},
		&coupondomain.Coupon{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Invoice{},
		&domain.Transaction{},
		&provisioningdomain.UserService{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	now := fake.Now()
	plan := catalogdomain.Plan{
		ID:           node.Generate(),
		Type:         catalogdomain.ProductHosting,
		Name:         "Starter Hosting",
		PriceMonthly: decimal.RequireFromString("5.99"),
		SetupFee:     decimal.Zero,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	vps := catalogdomain.Plan{
		ID:           node.Generate(),
		Type:         catalogdomain.ProductVPS,
		Name:         "VPS 2G",
		PriceMonthly: decimal.RequireFromString("14.99"),
		SetupFee:     decimal.RequireFromString("9.99"),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tld := catalogdomain.TLD{
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
	}
	require.NoError(t, db.Create(&plan).Error)
	require.NoError(t, db.Create(&vps).Error)
	require.NoError(t, db.Create(&tld).Error)

	cfg := config.Config{
		Billing: config.BillingConfig{
			Currency:       "USD",
			TaxRate:        decimal.Zero,
			InvoiceDueDays: 7,
			CycleFallback:  true,
		},
	}

	catSvc := catalogsvc.NewService(catalogsvc.ServiceParam{
		DB:   db,
		Log:  log,
		Repo: catalogrepo.Provide(),
	})
	var cpnSvc coupondomain.Service
	if couponOverride != nil {
		cpnSvc = couponOverride
	} else {
		cpnSvc = couponsvc.NewService(couponsvc.ServiceParam{
			DB:    db,
			Log:   log,
			Clock: fake,
			Repo:  couponrepo.Provide(),
		})
	}
	prcSvc := pricingsvc.NewService(pricingsvc.ServiceParam{
		Log:        log,
		Cfg:        cfg,
		CatalogSvc: catSvc,
		CouponSvc:  cpnSvc,
	})
	prov := provisioning.NewProvisioner(provisioning.ProvisionerParam{
		Log:   log,
		GenID: node,
	})
	registry := adapters.NewRegistry(offline.New())

	svc := NewService(ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Cfg:         cfg,
		Repo:        repository.Provide(),
		PricingSvc:  prcSvc,
		CouponSvc:   cpnSvc,
		Provisioner: prov,
		Gateways:    registry,
	})

	return &orderFixture{
		svc:    svc,
		db:     db,
		node:   node,
		clock:  fake,
		plan:   plan,
		vps:    vps,
		tld:    tld,
		userID: node.Generate(),
	}
}

func (f *orderFixture) hostingCart() []pricingdomain.CartItem {
	return []pricingdomain.CartItem{{
		ProductType:  catalogdomain.ProductHosting,
		ProductID:    f.plan.ID.String(),
		BillingCycle: catalogdomain.CycleMonthly,
		Quantity:     1,
	}}
}

func (f *orderFixture) mixedCart() []pricingdomain.CartItem {
	return []pricingdomain.CartItem{
		{
			ProductType:  catalogdomain.ProductHosting,
			ProductID:    f.plan.ID.String(),
			BillingCycle: catalogdomain.CycleAnnual,
			Quantity:     1,
		},
		{
			ProductType:  catalogdomain.ProductVPS,
			ProductID:    f.vps.ID.String(),
			BillingCycle: catalogdomain.CycleMonthly,
			Quantity:     2,
		},
		{
			ProductType: catalogdomain.ProductDomain,
			ProductID:   f.tld.ID.String(),
			DomainName:  "example.com",
			Action:      catalogdomain.ActionRegister,
			Years:       1,
			Quantity:    1,
		},
	}
}

func TestCreateOrder(t *testing.T) {
	f := setupOrders(t, nil)

	resp, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.mixedCart(),
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-1",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-20260310-[A-Z2-9]{6}$`, resp.OrderNumber)
	assert.Regexp(t, `^INV-20260310-[A-Z2-9]{6}$`, resp.InvoiceNumber)
	assert.Equal(t, "USD", resp.Currency)
	require.NotNil(t, resp.Intent)
	assert.NotEmpty(t, resp.Intent.IntentID)

	var order domain.Order
	require.NoError(t, f.db.Where("order_number = ?", resp.OrderNumber).First(&order).Error)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)

	var items []domain.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&items).Error)
	require.Len(t, items, 3)

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal)
	}
	assert.True(t, sum.Equal(order.Subtotal), "line totals %s, subtotal %s", sum, order.Subtotal)

	var invoice domain.Invoice
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Equal(t, domain.InvoiceStatusUnpaid, invoice.Status)
	assert.True(t, invoice.Total.Equal(order.Total))
	assert.WithinDuration(t, f.clock.Now().AddDate(0, 0, 7), invoice.DueDate, time.Second)
}

func TestCreateOrderRequiresIdempotencyKey(t *testing.T) {
	f := setupOrders(t, nil)

	_, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:        f.userID,
		Items:         f.hostingCart(),
		PaymentMethod: "offline",
	})
	assert.ErrorIs(t, err, domain.ErrMissingIdempotencyKey)
}

func TestCreateOrderRejectsUnknownGateway(t *testing.T) {
	f := setupOrders(t, nil)

	_, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		PaymentMethod:  "carrier-pigeon",
		IdempotencyKey: "chk-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()

	req := domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-replay",
	}

	first, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.True(t, first.Total.Equal(second.Total))

	var count int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "replay must not write a second order")
}

func TestCreateOrderRedeemsCoupon(t *testing.T) {
	f := setupOrders(t, nil)
	limit := 5
	coupon := coupondomain.Coupon{
		ID:            f.node.Generate(),
		Code:          "SAVE10",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    &limit,
		Active:        true,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&coupon).Error)

	resp, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		CouponCode:     "SAVE10",
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-coupon",
	})
	require.NoError(t, err)
	assert.True(t, resp.Discount.Equal(decimal.RequireFromString("0.60")), "discount %s", resp.Discount)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("5.39")), "total %s", resp.Total)

	var stored coupondomain.Coupon
	require.NoError(t, f.db.Where("code = ?", "SAVE10").First(&stored).Error)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestCreateOrderConcurrentSingleUseCoupon(t *testing.T) {
	// A file-backed database with several connections lets the checkouts
	// genuinely interleave instead of serializing on a single conn. The
	// pool holds twice the checkout count: each open transaction pins a
	// conn while its in-transaction re-pricing reads borrow another.
	dsn := fmt.Sprintf("file:%s/orders.db?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", t.TempDir())
	f := setupOrdersAt(t, nil, dsn, 8)

	limit := 1
	coupon := coupondomain.Coupon{
		ID:            f.node.Generate(),
		Code:          "LAST1",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    &limit,
		Active:        true,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&coupon).Error)

	const checkouts = 4
	errs := make(chan error, checkouts)
	for i := 0; i < checkouts; i++ {
		go func(i int) {
			_, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
				UserID:         f.node.Generate(),
				Items:          f.hostingCart(),
				CouponCode:     "LAST1",
				PaymentMethod:  "offline",
				IdempotencyKey: fmt.Sprintf("chk-race-%d", i),
			})
			errs <- err
		}(i)
	}

	var won, lost int
	for i := 0; i < checkouts; i++ {
		err := <-errs
		switch {
		case err == nil:
			won++
		case errors.Is(err, coupondomain.ErrCouponExhausted) || errors.Is(err, coupondomain.ErrCouponInvalid):
			lost++
		default:
			t.Fatalf("unexpected create error: %v", err)
		}
	}
	assert.Equal(t, 1, won, "exactly one checkout takes the last use")
	assert.Equal(t, checkouts-1, lost)

	var stored coupondomain.Coupon
	require.NoError(t, f.db.Where("code = ?", "LAST1").First(&stored).Error)
	assert.Equal(t, 1, stored.UsedCount, "used_count never exceeds the cap")

	var orders int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders, "losing checkouts roll back entirely")
}

func TestCreateOrderFirstUseOfPerUserLimitCoupon(t *testing.T) {
	f := setupOrders(t, nil)
	limit := 100
	coupon := coupondomain.Coupon{
		ID:            f.node.Generate(),
		Code:          "SAVE10",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    &limit,
		PerUserLimit:  1,
		Active:        true,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&coupon).Error)

	resp, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		CouponCode:     "SAVE10",
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-limit-1",
	})
	require.NoError(t, err, "a fresh user's first redemption must succeed")
	assert.True(t, resp.Discount.Equal(decimal.RequireFromString("0.60")), "discount %s", resp.Discount)

	// The committed order now occupies the user's only slot.
	_, err = f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		CouponCode:     "SAVE10",
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-limit-2",
	})
	assert.ErrorIs(t, err, coupondomain.ErrCouponPerUserLimit)
}

func TestCreateOrderRollsBackWhenRedeemFails(t *testing.T) {
	stub := &couponStub{
		discount:  decimal.NewFromInt(1),
		redeemErr: coupondomain.ErrCouponExhausted,
	}
	f := setupOrders(t, stub)

	_, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		CouponCode:     "SAVE10",
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-exhausted",
	})
	require.ErrorIs(t, err, coupondomain.ErrCouponExhausted)

	// The losing checkout leaves nothing behind: no order, no items,
	// no invoice.
	var orders, items, invoices int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&domain.OrderItem{}).Count(&items).Error)
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Zero(t, invoices)
}

func TestGetByNumberOwnership(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.hostingCart(),
		PaymentMethod:  "offline",
		IdempotencyKey: "chk-owner",
	})
	require.NoError(t, err)

	order, err := f.svc.GetByNumber(ctx, resp.OrderNumber, f.userID)
	require.NoError(t, err)
	assert.Equal(t, resp.OrderNumber, order.OrderNumber)

	_, err = f.svc.GetByNumber(ctx, resp.OrderNumber, f.node.Generate())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound, "another user's order stays invisible")

	_, err = f.svc.GetByNumber(ctx, "ORD-20260310-ZZZZZZ", f.userID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
