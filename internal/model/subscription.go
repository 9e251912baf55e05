package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	BillingPeriodMonthly  = "monthly"
	BillingPeriodYearly   = "yearly"
	BillingPeriodLifetime = "lifetime"

	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusTrial     = "trial"
)

type SubscriptionPlan struct {
	gorm.Model
	Name          string  `json:"name" gorm:"not null"`
	Slug          string  `json:"slug" gorm:"uniqueIndex;not null"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" gorm:"not null"` // INR
	BillingPeriod string  `json:"billing_period" gorm:"not null"`
	MaxInvoices   int     `json:"max_invoices" gorm:"default:-1"` // -1 = unlimited
	MaxSeats      int     `json:"max_seats" gorm:"default:1"`
	DisplayOrder  int     `json:"display_order" gorm:"default:0"`

	UserSubscriptions []UserSubscription `json:"-" gorm:"foreignKey:PlanID"`
}

type UserSubscription struct {
	gorm.Model
	UserID    uint       `json:"user_id" gorm:"index;not null"`
	PlanID    uint       `json:"plan_id" gorm:"not null"`
	Status    string     `json:"status" gorm:"default:'active'"`
	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date"` // lifetime plans get +100 years

	User User             `json:"-" gorm:"foreignKey:UserID"`
	Plan SubscriptionPlan `json:"plan" gorm:"foreignKey:PlanID"`
}
