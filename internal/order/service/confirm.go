package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hostline/hostline/internal/order/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConfirmPayment implements domain.Service. It drives pending -> completed:
// verify with the gateway, then atomically flip the order, mark the invoice
// paid, append the ledger entry and provision services. Confirming an order
// that is already paid is a no-op success so gateway webhook retries are safe.
func (s *Service) ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) error {
	ref := strings.TrimSpace(req.PaymentReference)
	if ref == "" {
		return domain.ErrMissingPaymentRef
	}

	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(req.OrderNumber))
	if err != nil {
		return err
	}
	if order == nil || order.UserID != req.UserID {
		return domain.ErrOrderNotFound
	}

	if order.Status == domain.OrderStatusCompleted && order.PaymentStatus == domain.PaymentStatusPaid {
		return nil
	}
	if order.Status != domain.OrderStatusPending {
		return domain.ErrOrderNotPending
	}

	adapter, err := s.gateways.Get(order.PaymentMethod)
	if err != nil {
		return domain.ErrInvalidPaymentMethod
	}

	// Verification failure aborts before any write; the order stays
	// pending/unpaid and the confirmation is safe to retry.
	verification, err := adapter.Confirm(ctx, ref)
	if err != nil {
		return err
	}
	if !verification.Verified {
		return domain.ErrPaymentNotVerified
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.repo.TransitionStatus(ctx, tx, order.ID,
			domain.OrderStatusPending, domain.OrderStatusCompleted,
			domain.PaymentStatusPaid, &ref, now)
		if err != nil {
			return err
		}
		if !moved {
			// Lost the race: either a concurrent confirmation finished
			// first (fine) or the order was cancelled underneath us.
			current, err := s.repo.FindByNumber(ctx, tx, order.OrderNumber)
			if err != nil {
				return err
			}
			if current != nil && current.Status == domain.OrderStatusCompleted {
				return nil
			}
			return domain.ErrOrderNotPending
		}

		if err := s.repo.UpdateInvoiceStatus(ctx, tx, order.ID, domain.InvoiceStatusPaid, &now, now); err != nil {
			return err
		}

		invoice, err := s.repo.FindInvoiceByOrderID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return gorm.ErrRecordNotFound
		}

		txnID := verification.TransactionID
		txn := &domain.Transaction{
			ID:              s.genID.Generate(),
			OrderID:         order.ID,
			InvoiceID:       invoice.ID,
			UserID:          order.UserID,
			Type:            domain.TransactionTypePayment,
			Gateway:         order.PaymentMethod,
			GatewayTxnID:    &txnID,
			Amount:          order.Total,
			Currency:        order.Currency,
			Status:          "completed",
			GatewayResponse: datatypes.JSON(verification.Raw),
			CreatedAt:       now,
		}
		if err := s.repo.InsertTransaction(ctx, tx, txn); err != nil {
			return err
		}

		items, err := s.repo.FindItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if err := s.provisioner.ProvisionOrder(ctx, tx, order, items, now); err != nil {
			return err
		}

		s.log.Info("order completed",
			zap.String("order_number", order.OrderNumber),
			zap.String("gateway", order.PaymentMethod),
			zap.String("total", order.Total.StringFixed(2)),
		)
		return nil
	})
}

// Cancel implements domain.Service. Only a pending order can be cancelled;
// the conditional transition decides the race against a concurrent
// confirmation, and the loser reports the order is no longer pending.
func (s *Service) Cancel(ctx context.Context, orderNumber string, userID snowflake.ID) error {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(orderNumber))
	if err != nil {
		return err
	}
	if order == nil || order.UserID != userID {
		return domain.ErrOrderNotFound
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.repo.TransitionStatus(ctx, tx, order.ID,
			domain.OrderStatusPending, domain.OrderStatusCancelled,
			domain.PaymentStatusUnpaid, nil, now)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrOrderNotPending
		}
		return s.repo.UpdateInvoiceStatus(ctx, tx, order.ID, domain.InvoiceStatusCancelled, nil, now)
	})
}

// Refund implements domain.Service. A completed order moves to refunded:
// the ledger gets a distinct reversing entry and the provisioned services
// are suspended, not deleted.
func (s *Service) Refund(ctx context.Context, orderNumber string, reason string) error {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(orderNumber))
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.repo.TransitionStatus(ctx, tx, order.ID,
			domain.OrderStatusCompleted, domain.OrderStatusRefunded,
			domain.PaymentStatusRefunded, nil, now)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrOrderNotCompleted
		}

		if err := s.repo.UpdateInvoiceStatus(ctx, tx, order.ID, domain.InvoiceStatusRefunded, nil, now); err != nil {
			return err
		}

		invoice, err := s.repo.FindInvoiceByOrderID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return gorm.ErrRecordNotFound
		}

		meta, _ := json.Marshal(map[string]string{"reason": reason})
		txn := &domain.Transaction{
			ID:              s.genID.Generate(),
			OrderID:         order.ID,
			InvoiceID:       invoice.ID,
			UserID:          order.UserID,
			Type:            domain.TransactionTypeRefund,
			Gateway:         order.PaymentMethod,
			GatewayTxnID:    order.PaymentID,
			Amount:          order.Total,
			Currency:        order.Currency,
			Status:          "completed",
			GatewayResponse: datatypes.JSON(meta),
			CreatedAt:       now,
		}
		if err := s.repo.InsertTransaction(ctx, tx, txn); err != nil {
			return err
		}

		return s.provisioner.SuspendForOrder(ctx, tx, order.ID, now)
	})
}
