package service

import (
	"context"
	"testing"
	"time"

	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	"github.com/hostline/hostline/internal/order/domain"
	provisioningdomain "github.com/hostline/hostline/internal/provisioning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, f *orderFixture, key string) domain.CreateOrderResponse {
	t.Helper()

	resp, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		UserID:         f.userID,
		Items:          f.mixedCart(),
		PaymentMethod:  "offline",
		IdempotencyKey: key,
	})
	require.NoError(t, err)
	return resp
}

func TestConfirmPaymentCompletesOrder(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-confirm")

	err := f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.userID,
		PaymentReference: "pay-123",
	})
	require.NoError(t, err)

	var order domain.Order
	require.NoError(t, f.db.Where("order_number = ?", resp.OrderNumber).First(&order).Error)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaymentID)
	assert.Equal(t, "pay-123", *order.PaymentID)

	var invoice domain.Invoice
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	require.NotNil(t, invoice.PaidDate)

	var txns []domain.Transaction
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.TransactionTypePayment, txns[0].Type)
	assert.True(t, txns[0].Amount.Equal(order.Total))
}

func TestConfirmPaymentProvisionsServices(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-provision")

	require.NoError(t, f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.userID,
		PaymentReference: "pay-200",
	}))

	var services []provisioningdomain.UserService
	require.NoError(t, f.db.Order("id").Find(&services).Error)

	// The mixed cart has three items; the domain registration is handled
	// by the registrar workflow and gets no user_services row.
	require.Len(t, services, 2)

	now := f.clock.Now()
	for _, svc := range services {
		assert.Equal(t, provisioningdomain.ServiceStatusActive, svc.Status)
		assert.NotEqual(t, catalogdomain.ProductDomain, svc.ServiceType)

		months := 1
		if svc.BillingCycle == catalogdomain.CycleAnnual {
			months = 12
		}
		assert.WithinDuration(t, now.AddDate(0, months, 0), svc.NextDueDate, time.Second)
		assert.WithinDuration(t, now.AddDate(0, months, 0), svc.ExpiryDate, time.Second)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-idem")

	req := domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.userID,
		PaymentReference: "pay-300",
	}
	require.NoError(t, f.svc.ConfirmPayment(ctx, req))
	require.NoError(t, f.svc.ConfirmPayment(ctx, req), "repeat confirmation is a no-op")

	var txns, services int64
	require.NoError(t, f.db.Model(&domain.Transaction{}).Count(&txns).Error)
	require.NoError(t, f.db.Model(&provisioningdomain.UserService{}).Count(&services).Error)
	assert.EqualValues(t, 1, txns, "exactly one payment ledger entry")
	assert.EqualValues(t, 2, services, "no double provisioning")
}

func TestConfirmPaymentRequiresReference(t *testing.T) {
	f := setupOrders(t, nil)
	resp := createOrder(t, f, "chk-noref")

	err := f.svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderNumber: resp.OrderNumber,
		UserID:      f.userID,
	})
	assert.ErrorIs(t, err, domain.ErrMissingPaymentRef)
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	f := setupOrders(t, nil)

	err := f.svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderNumber:      "ORD-20260310-ZZZZZZ",
		UserID:           f.userID,
		PaymentReference: "pay-1",
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestConfirmPaymentWrongUser(t *testing.T) {
	f := setupOrders(t, nil)
	resp := createOrder(t, f, "chk-wronguser")

	err := f.svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.node.Generate(),
		PaymentReference: "pay-1",
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelPendingOrder(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-cancel")

	require.NoError(t, f.svc.Cancel(ctx, resp.OrderNumber, f.userID))

	var order domain.Order
	require.NoError(t, f.db.Where("order_number = ?", resp.OrderNumber).First(&order).Error)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)

	var invoice domain.Invoice
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Equal(t, domain.InvoiceStatusCancelled, invoice.Status)

	err := f.svc.Cancel(ctx, resp.OrderNumber, f.userID)
	assert.ErrorIs(t, err, domain.ErrOrderNotPending)
}

func TestConfirmAfterCancelLosesTheRace(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-race")

	require.NoError(t, f.svc.Cancel(ctx, resp.OrderNumber, f.userID))

	err := f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.userID,
		PaymentReference: "pay-late",
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotPending)

	// The cancelled order must stay unpaid and unprovisioned.
	var order domain.Order
	require.NoError(t, f.db.Where("order_number = ?", resp.OrderNumber).First(&order).Error)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)

	var services int64
	require.NoError(t, f.db.Model(&provisioningdomain.UserService{}).Count(&services).Error)
	assert.Zero(t, services)
}

func TestCancelAfterConfirmFails(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-paid-cancel")

	require.NoError(t, f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.userID,
		PaymentReference: "pay-400",
	}))

	err := f.svc.Cancel(ctx, resp.OrderNumber, f.userID)
	assert.ErrorIs(t, err, domain.ErrOrderNotPending)
}

func TestRefundCompletedOrder(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-refund")

	require.NoError(t, f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		OrderNumber:      resp.OrderNumber,
		UserID:           f.userID,
		PaymentReference: "pay-500",
	}))

	require.NoError(t, f.svc.Refund(ctx, resp.OrderNumber, "chargeback"))

	var order domain.Order
	require.NoError(t, f.db.Where("order_number = ?", resp.OrderNumber).First(&order).Error)
	assert.Equal(t, domain.OrderStatusRefunded, order.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, order.PaymentStatus)

	var invoice domain.Invoice
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Equal(t, domain.InvoiceStatusRefunded, invoice.Status)

	// The payment entry is untouched; the refund is a distinct
	// reversing entry.
	var txns []domain.Transaction
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("id").Find(&txns).Error)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.TransactionTypePayment, txns[0].Type)
	assert.Equal(t, domain.TransactionTypeRefund, txns[1].Type)
	assert.True(t, txns[1].Amount.Equal(order.Total))

	var services []provisioningdomain.UserService
	require.NoError(t, f.db.Find(&services).Error)
	require.NotEmpty(t, services)
	for _, svc := range services {
		assert.Equal(t, provisioningdomain.ServiceStatusSuspended, svc.Status)
	}
}

func TestRefundRequiresCompletedOrder(t *testing.T) {
	f := setupOrders(t, nil)
	ctx := context.Background()
	resp := createOrder(t, f, "chk-refund-pending")

	err := f.svc.Refund(ctx, resp.OrderNumber, "too early")
	assert.ErrorIs(t, err, domain.ErrOrderNotCompleted)

	err = f.svc.Refund(ctx, "ORD-20260310-ZZZZZZ", "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
