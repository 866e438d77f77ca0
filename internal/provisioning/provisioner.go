// Package provisioning creates the billable user_services rows for paid
// orders. It runs only inside the payment confirmation transaction.
package provisioning

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	orderdomain "github.com/hostline/hostline/internal/order/domain"
	"github.com/hostline/hostline/internal/provisioning/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProvisionerParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
}

type Provisioner struct {
	log   *zap.Logger
	genID *snowflake.Node
}

func NewProvisioner(p ProvisionerParam) *Provisioner {
	return &Provisioner{
		log:   p.Log.Named("provisioning"),
		genID: p.GenID,
	}
}

// ProvisionOrder inserts one active user_services row per non-domain order
// item, with the renewal date one billing period from now. The insert is a
// conflict-ignoring write keyed on order_item_id, so a confirmation that
// lost the status race (or is retried) can never provision twice.
func (p *Provisioner) ProvisionOrder(ctx context.Context, tx *gorm.DB, order *orderdomain.Order, items []orderdomain.OrderItem, now time.Time) error {
	for _, item := range items {
		if item.ProductType == catalogdomain.ProductDomain {
			// Domain activation is a registrar workflow, not ours.
			continue
		}

		due := addCycle(now, item.BillingCycle)
		svc := domain.UserService{
			ID:           p.genID.Generate(),
			UserID:       order.UserID,
			OrderID:      order.ID,
			OrderItemID:  item.ID,
			ServiceType:  item.ProductType,
			DomainName:   item.DomainName,
			Status:       domain.ServiceStatusActive,
			BillingCycle: item.BillingCycle,
			Price:        item.UnitPrice,
			NextDueDate:  due,
			ExpiryDate:   due,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_item_id"}},
				DoNothing: true,
			}).
			Create(&svc).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SuspendForOrder suspends every service provisioned from the order. Used by
// the refund path; services are kept, never deleted.
func (p *Provisioner) SuspendForOrder(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, now time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE user_services
		 SET status = ?, updated_at = ?
		 WHERE order_id = ? AND status = ?`,
		domain.ServiceStatusSuspended,
		now,
		orderID,
		domain.ServiceStatusActive,
	).Error
}

func addCycle(t time.Time, cycle catalogdomain.BillingCycle) time.Time {
	months := cycle.Months()
	if months == 0 {
		months = 1
	}
	return t.AddDate(0, months, 0)
}
