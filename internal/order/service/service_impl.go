package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hostline/hostline/internal/clock"
	"github.com/hostline/hostline/internal/config"
	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	"github.com/hostline/hostline/internal/gateway/adapters"
	gatewaydomain "github.com/hostline/hostline/internal/gateway/domain"
	"github.com/hostline/hostline/internal/order/domain"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
	"github.com/hostline/hostline/internal/provisioning"
	"github.com/hostline/hostline/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxNumberRetries bounds regeneration when an order or invoice number
// collides with an existing row.
const maxNumberRetries = 3

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Repo        domain.Repository
	PricingSvc  pricingdomain.Service
	CouponSvc   coupondomain.Service
	Provisioner *provisioning.Provisioner
	Gateways    *adapters.Registry
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	billing     config.BillingConfig
	repo        domain.Repository
	pricingSvc  pricingdomain.Service
	couponSvc   coupondomain.Service
	provisioner *provisioning.Provisioner
	gateways    *adapters.Registry
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		billing:     p.Cfg.Billing,
		repo:        p.Repo,
		pricingSvc:  p.PricingSvc,
		couponSvc:   p.CouponSvc,
		provisioner: p.Provisioner,
		gateways:    p.Gateways,
	}
}

// Create implements domain.Service. The cart is re-priced against current
// catalog state and the coupon re-validated against the fresh subtotal; the
// order, its items, the invoice and the coupon redemption commit in one
// transaction or not at all.
func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		return domain.CreateOrderResponse{}, domain.ErrMissingIdempotencyKey
	}

	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	adapter, err := s.gateways.Get(method)
	if err != nil {
		return domain.CreateOrderResponse{}, domain.ErrInvalidPaymentMethod
	}

	// Duplicate submits of the same cart collapse onto the first order.
	existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, req.UserID, key)
	if err != nil {
		return domain.CreateOrderResponse{}, err
	}
	if existing != nil {
		return s.replay(ctx, adapter, existing)
	}

	var order *domain.Order
	for attempt := 0; ; attempt++ {
		order, err = s.writeOrder(ctx, req, key, method)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.CreateOrderResponse{}, err
		}

		// A duplicate key here is either a racing submit with the same
		// idempotency key or a number collision.
		raced, findErr := s.repo.FindByIdempotencyKey(ctx, s.db, req.UserID, key)
		if findErr != nil {
			return domain.CreateOrderResponse{}, findErr
		}
		if raced != nil {
			return s.replay(ctx, adapter, raced)
		}
		if attempt+1 >= maxNumberRetries {
			return domain.CreateOrderResponse{}, domain.ErrNumberRetriesExhausted
		}
		s.log.Warn("order number collision, regenerating", zap.Int("attempt", attempt+1))
	}

	resp := domain.CreateOrderResponse{
		OrderNumber: order.OrderNumber,
		Subtotal:    order.Subtotal,
		Discount:    order.Discount,
		Tax:         order.Tax,
		Total:       order.Total,
		Currency:    order.Currency,
	}

	invoice, err := s.repo.FindInvoiceByOrderID(ctx, s.db, order.ID)
	if err != nil {
		return domain.CreateOrderResponse{}, err
	}
	if invoice != nil {
		resp.InvoiceNumber = invoice.InvoiceNumber
	}

	// Intent creation happens after commit. If the gateway is down the
	// order stays pending/unpaid and the client retries confirmation later.
	intent, err := adapter.CreateIntent(ctx, gatewaydomain.IntentRequest{
		Amount:   order.Total,
		Currency: order.Currency,
		Metadata: map[string]string{"order_number": order.OrderNumber},
	})
	if err != nil {
		s.log.Warn("payment intent creation failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return resp, nil
	}
	resp.Intent = &intent

	return resp, nil
}

// writeOrder re-prices the cart and persists the order, its items, the
// invoice and the coupon redemption in one transaction. Re-pricing happens
// inside the transaction so the committed amounts reflect the catalog state
// at commit time, not at request time.
func (s *Service) writeOrder(ctx context.Context, req domain.CreateOrderRequest, key, method string) (*domain.Order, error) {
	now := s.clock.Now()

	var order *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.pricingSvc.Quote(ctx, pricingdomain.QuoteRequest{
			Items:      req.Items,
			CouponCode: req.CouponCode,
			UserID:     req.UserID,
		})
		if err != nil {
			return err
		}

		order = s.buildOrder(req, key, method, quote, now)
		items := s.buildItems(order, quote, now)
		invoice := s.buildInvoice(order, req, now)

		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		if err := s.repo.InsertInvoice(ctx, tx, invoice); err != nil {
			return err
		}
		if order.CouponCode != nil {
			if err := s.couponSvc.Redeem(ctx, tx, *order.CouponCode, req.UserID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) buildOrder(req domain.CreateOrderRequest, key, method string, quote pricingdomain.Quote, now time.Time) *domain.Order {
	order := &domain.Order{
		ID:             s.genID.Generate(),
		OrderNumber:    orderNumber(now),
		UserID:         req.UserID,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		Subtotal:       quote.Subtotal,
		Discount:       quote.Discount,
		Tax:            quote.Tax,
		Total:          quote.Total,
		Currency:       s.billing.Currency,
		PaymentMethod:  method,
		IdempotencyKey: &key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		order.CouponCode = &code
	}
	return order
}

func (s *Service) buildItems(order *domain.Order, quote pricingdomain.Quote, now time.Time) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(quote.Items))
	for _, p := range quote.Items {
		item := domain.OrderItem{
			ID:           s.genID.Generate(),
			OrderID:      order.ID,
			ProductType:  p.ProductType,
			ProductID:    p.ProductID,
			Description:  p.Description,
			BillingCycle: p.BillingCycle,
			Quantity:     p.Quantity,
			UnitPrice:    p.UnitPrice,
			SetupFee:     p.SetupFee,
			LineTotal:    p.LineTotal.Round(2),
			CreatedAt:    now,
		}
		if p.DomainName != "" {
			name := p.DomainName
			action := p.Action
			years := p.Years
			item.DomainName = &name
			item.DomainAction = &action
			item.Years = &years
		}
		items = append(items, item)
	}
	return items
}

func (s *Service) buildInvoice(order *domain.Order, req domain.CreateOrderRequest, now time.Time) *domain.Invoice {
	return &domain.Invoice{
		ID:            s.genID.Generate(),
		InvoiceNumber: invoiceNumber(now),
		OrderID:       order.ID,
		UserID:        req.UserID,
		Status:        domain.InvoiceStatusUnpaid,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Tax:           order.Tax,
		Total:         order.Total,
		Currency:      order.Currency,
		DueDate:       now.AddDate(0, 0, s.billing.InvoiceDueDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// replay returns the response for an order that was already created with
// this idempotency key instead of writing a duplicate.
func (s *Service) replay(ctx context.Context, adapter gatewaydomain.Adapter, order *domain.Order) (domain.CreateOrderResponse, error) {
	resp := domain.CreateOrderResponse{
		OrderNumber: order.OrderNumber,
		Subtotal:    order.Subtotal,
		Discount:    order.Discount,
		Tax:         order.Tax,
		Total:       order.Total,
		Currency:    order.Currency,
	}

	invoice, err := s.repo.FindInvoiceByOrderID(ctx, s.db, order.ID)
	if err != nil {
		return domain.CreateOrderResponse{}, err
	}
	if invoice != nil {
		resp.InvoiceNumber = invoice.InvoiceNumber
	}

	if order.Status == domain.OrderStatusPending && order.PaymentStatus == domain.PaymentStatusUnpaid {
		intent, err := adapter.CreateIntent(ctx, gatewaydomain.IntentRequest{
			Amount:   order.Total,
			Currency: order.Currency,
			Metadata: map[string]string{"order_number": order.OrderNumber},
		})
		if err == nil {
			resp.Intent = &intent
		}
	}

	return resp, nil
}

// GetByNumber implements domain.Service.
func (s *Service) GetByNumber(ctx context.Context, orderNumber string, userID snowflake.ID) (domain.Order, error) {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(orderNumber))
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil || order.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *order, nil
}
