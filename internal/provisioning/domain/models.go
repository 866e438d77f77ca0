// Package domain contains the provisioned service model created on payment.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// ServiceStatus represents lifecycle states for a provisioned service.
type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "pending"
	ServiceStatusActive     ServiceStatus = "active"
	ServiceStatusSuspended  ServiceStatus = "suspended"
	ServiceStatusCancelled  ServiceStatus = "cancelled"
	ServiceStatusTerminated ServiceStatus = "terminated"
)

// UserService is a billable subscription instance created from an order item
// on successful payment. The unique order_item_id constraint enforces
// at-most-once provisioning even under retried confirmations.
type UserService struct {
	ID           snowflake.ID               `json:"id" gorm:"primaryKey"`
	UserID       snowflake.ID               `json:"user_id" gorm:"not null;index"`
	OrderID      snowflake.ID               `json:"order_id" gorm:"not null;index"`
	OrderItemID  snowflake.ID               `json:"order_item_id" gorm:"not null;uniqueIndex:ux_user_services_order_item"`
	ServiceType  catalogdomain.ProductType  `json:"service_type" gorm:"type:text;not null"`
	DomainName   *string                    `json:"domain_name" gorm:"type:text"`
	Status       ServiceStatus              `json:"status" gorm:"type:text;not null;default:'pending'"`
	BillingCycle catalogdomain.BillingCycle `json:"billing_cycle" gorm:"type:text;not null"`
	Price        decimal.Decimal            `json:"price" gorm:"type:decimal(12,2);not null"`
	NextDueDate  time.Time                  `json:"next_due_date" gorm:"not null"`
	ExpiryDate   time.Time                  `json:"expiry_date" gorm:"not null"`
	CreatedAt    time.Time                  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time                  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (UserService) TableName() string { return "user_services" }
