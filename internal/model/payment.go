package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending       = "pending"
	PaymentStatusCompleted     = "completed"
	PaymentStatusFailed        = "failed"
	PaymentStatusRefunded      = "refunded"
	PaymentStatusPartialRefund = "partial_refund"

	PaymentPurposeSubscription = "subscription"
	PaymentPurposeAddon        = "addon"
)

// Payment is an append-only ledger row, one per gateway transaction attempt.
// GatewayPaymentID doubles as the idempotency key for webhook redelivery.
type Payment struct {
	gorm.Model
	UserID           uint           `json:"user_id" gorm:"index"`
	GatewayOrderID   string         `json:"gateway_order_id" gorm:"index;not null"`
	GatewayPaymentID string         `json:"gateway_payment_id" gorm:"uniqueIndex"`
	Amount           int64          `json:"amount" gorm:"not null"` // paise
	Currency         string         `json:"currency" gorm:"default:'INR'"`
	Status           string         `json:"status" gorm:"default:'pending'"`
	Purpose          string         `json:"purpose" gorm:"default:'subscription'"`
	Metadata         datatypes.JSON `json:"metadata"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// ActivityLog is a best-effort audit trail. Append failures are logged
// and never roll back the primary write.
type ActivityLog struct {
	gorm.Model
	UserID  uint           `json:"user_id" gorm:"index"`
	Action  string         `json:"action" gorm:"not null"`
	Details datatypes.JSON `json:"details"`
}
