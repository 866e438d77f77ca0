// Package domain contains the read-only catalog records consumed by checkout.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ProductType identifies what kind of product a cart line refers to.
type ProductType string

const (
	ProductHosting   ProductType = "hosting"
	ProductVPS       ProductType = "vps"
	ProductCloud     ProductType = "cloud"
	ProductDedicated ProductType = "dedicated"
	ProductDomain    ProductType = "domain"
	ProductSSL       ProductType = "ssl"
	ProductEmail     ProductType = "email"
	ProductBackup    ProductType = "backup"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	switch t {
	case ProductHosting, ProductVPS, ProductCloud, ProductDedicated,
		ProductDomain, ProductSSL, ProductEmail, ProductBackup:
		return true
	default:
		return false
	}
}

// BillingCycle is the recurring period a subscription price is quoted for.
type BillingCycle string

const (
	CycleMonthly    BillingCycle = "monthly"
	CycleQuarterly  BillingCycle = "quarterly"
	CycleSemiAnnual BillingCycle = "semi_annual"
	CycleAnnual     BillingCycle = "annual"
	CycleBiennial   BillingCycle = "biennial"
	CycleTriennial  BillingCycle = "triennial"
)

// Months returns the cycle length in months, or 0 for an unknown cycle.
func (c BillingCycle) Months() int {
	switch c {
	case CycleMonthly:
		return 1
	case CycleQuarterly:
		return 3
	case CycleSemiAnnual:
		return 6
	case CycleAnnual:
		return 12
	case CycleBiennial:
		return 24
	case CycleTriennial:
		return 36
	default:
		return 0
	}
}

// DomainAction selects which TLD price applies to a domain line.
type DomainAction string

const (
	ActionRegister DomainAction = "register"
	ActionTransfer DomainAction = "transfer"
)

// Plan is a billable hosting product with per-cycle pricing. Cycles without
// an explicit price are nil and subject to the fallback policy.
type Plan struct {
	ID              snowflake.ID     `json:"id" gorm:"primaryKey"`
	Type            ProductType      `json:"type" gorm:"type:text;not null;index"`
	Name            string           `json:"name" gorm:"type:text;not null"`
	PriceMonthly    decimal.Decimal  `json:"price_monthly" gorm:"type:decimal(12,2);not null"`
	PriceQuarterly  *decimal.Decimal `json:"price_quarterly" gorm:"type:decimal(12,2)"`
	PriceSemiAnnual *decimal.Decimal `json:"price_semi_annual" gorm:"type:decimal(12,2)"`
	PriceAnnual     *decimal.Decimal `json:"price_annual" gorm:"type:decimal(12,2)"`
	PriceBiennial   *decimal.Decimal `json:"price_biennial" gorm:"type:decimal(12,2)"`
	PriceTriennial  *decimal.Decimal `json:"price_triennial" gorm:"type:decimal(12,2)"`
	SetupFee        decimal.Decimal  `json:"setup_fee" gorm:"type:decimal(12,2);not null;default:0"`
	Active          bool             `json:"active" gorm:"not null;default:true"`
	CreatedAt       time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

// CyclePrice returns the explicit catalog price for the cycle, or nil when
// the catalog carries no override for it.
func (p Plan) CyclePrice(cycle BillingCycle) *decimal.Decimal {
	switch cycle {
	case CycleMonthly:
		monthly := p.PriceMonthly
		return &monthly
	case CycleQuarterly:
		return p.PriceQuarterly
	case CycleSemiAnnual:
		return p.PriceSemiAnnual
	case CycleAnnual:
		return p.PriceAnnual
	case CycleBiennial:
		return p.PriceBiennial
	case CycleTriennial:
		return p.PriceTriennial
	default:
		return nil
	}
}

// TLD is a registrable top-level domain with registration constraints.
type TLD struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"type:text;not null;uniqueIndex:ux_tlds_name"`
	PriceRegister decimal.Decimal `json:"price_register" gorm:"type:decimal(12,2);not null"`
	PriceTransfer decimal.Decimal `json:"price_transfer" gorm:"type:decimal(12,2);not null"`
	PriceRenew    decimal.Decimal `json:"price_renew" gorm:"type:decimal(12,2);not null"`
	MinYears      int             `json:"min_years" gorm:"not null;default:1"`
	MaxYears      int             `json:"max_years" gorm:"not null;default:10"`
	Active        bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TLD) TableName() string { return "tlds" }
