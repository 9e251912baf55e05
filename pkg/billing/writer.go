package billing

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"billdesk/internal/model"
)

type CaptureInput struct {
	UserID      uint
	PlanSlug    string
	OrderID     string
	PaymentID   string
	AmountPaise int64
}

// ApplyPaymentCapture applies a verified subscription payment. It is
// idempotent by lookup: the ledger row keyed by the gateway payment id is
// checked first, so webhook redelivery neither duplicates the ledger nor
// moves end_date past its first application.
func ApplyPaymentCapture(db *gorm.DB, in CaptureInput) (*model.UserSubscription, error) {
	var existing model.Payment
	if err := db.Where("gateway_payment_id = ?", in.PaymentID).First(&existing).Error; err == nil {
		if existing.Status == model.PaymentStatusCompleted {
			var sub model.UserSubscription
			if err := db.Where("user_id = ? AND status IN ?", in.UserID,
				[]string{model.SubscriptionStatusActive, model.SubscriptionStatusTrial}).
				Order("created_at DESC").First(&sub).Error; err == nil {
				return &sub, nil
			}
			return nil, nil
		}
	}

	price, err := PlanCharge(in.PlanSlug)
	if err != nil {
		return nil, err
	}

	var plan model.SubscriptionPlan
	if err := db.Where("slug = ?", in.PlanSlug).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("plan %q not found: %w", in.PlanSlug, err)
	}

	amount := in.AmountPaise
	if amount == 0 {
		amount = price.AmountPaise
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"plan":           in.PlanSlug,
		"billing_period": price.Period,
	})

	ledger := model.Payment{
		UserID:           in.UserID,
		GatewayOrderID:   in.OrderID,
		GatewayPaymentID: in.PaymentID,
		Amount:           amount,
		Currency:         "INR",
		Status:           model.PaymentStatusCompleted,
		Purpose:          model.PaymentPurposeSubscription,
		Metadata:         datatypes.JSON(metadata),
	}
	if err := db.Create(&ledger).Error; err != nil {
		return nil, fmt.Errorf("could not record payment: %w", err)
	}

	now := time.Now()
	endDate := ExpiryFor(price.Period, now)

	// One active row per user: explicit find-then-write with an overwrite
	// conflict policy, instead of relying on upsert side effects.
	var sub model.UserSubscription
	err = db.Where("user_id = ? AND status IN ?", in.UserID,
		[]string{model.SubscriptionStatusActive, model.SubscriptionStatusTrial}).
		Order("created_at DESC").First(&sub).Error
	if err == nil {
		sub.PlanID = plan.ID
		sub.Status = model.SubscriptionStatusActive
		sub.StartDate = now
		sub.EndDate = &endDate
		if err := db.Save(&sub).Error; err != nil {
			return nil, fmt.Errorf("could not update subscription: %w", err)
		}
	} else {
		sub = model.UserSubscription{
			UserID:    in.UserID,
			PlanID:    plan.ID,
			Status:    model.SubscriptionStatusActive,
			StartDate: now,
			EndDate:   &endDate,
		}
		if err := db.Create(&sub).Error; err != nil {
			return nil, fmt.Errorf("could not create subscription: %w", err)
		}
	}

	logActivity(db, in.UserID, "subscription_payment_applied", map[string]interface{}{
		"plan":       in.PlanSlug,
		"payment_id": in.PaymentID,
		"amount":     amount,
	})

	return &sub, nil
}

type AddonCaptureInput struct {
	OwnerID       uint
	Quantity      int
	BillingPeriod string
	OrderID       string
	PaymentID     string
	AmountPaise   int64
}

// ApplyAddonCapture grants purchased extra seats with their own billing
// window, independent of and additive to the base plan allowance.
// Idempotent by gateway payment id, like ApplyPaymentCapture.
func ApplyAddonCapture(db *gorm.DB, in AddonCaptureInput) (*model.TeamMemberAddon, error) {
	// Webhook notes can arrive corrupted; a zero-seat grant must never
	// reach the ledger regardless of how the amount was supplied.
	if in.Quantity < 1 {
		return nil, fmt.Errorf("addon quantity must be at least 1, got %d", in.Quantity)
	}

	var existing model.Payment
	if err := db.Where("gateway_payment_id = ?", in.PaymentID).First(&existing).Error; err == nil {
		if existing.Status == model.PaymentStatusCompleted {
			var addon model.TeamMemberAddon
			if err := db.Where("payment_id = ?", existing.ID).First(&addon).Error; err == nil {
				return &addon, nil
			}
			return nil, nil
		}
	}

	amount := in.AmountPaise
	if amount == 0 {
		computed, err := AddonCharge(in.BillingPeriod, in.Quantity)
		if err != nil {
			return nil, err
		}
		amount = computed
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"quantity":       in.Quantity,
		"billing_period": in.BillingPeriod,
	})

	ledger := model.Payment{
		UserID:           in.OwnerID,
		GatewayOrderID:   in.OrderID,
		GatewayPaymentID: in.PaymentID,
		Amount:           amount,
		Currency:         "INR",
		Status:           model.PaymentStatusCompleted,
		Purpose:          model.PaymentPurposeAddon,
		Metadata:         datatypes.JSON(metadata),
	}
	if err := db.Create(&ledger).Error; err != nil {
		return nil, fmt.Errorf("could not record addon payment: %w", err)
	}

	now := time.Now()
	addon := model.TeamMemberAddon{
		OwnerID:   in.OwnerID,
		Quantity:  in.Quantity,
		StartDate: now,
		EndDate:   ExpiryFor(in.BillingPeriod, now),
		PaymentID: ledger.ID,
	}
	if err := db.Create(&addon).Error; err != nil {
		return nil, fmt.Errorf("could not create seat addon: %w", err)
	}

	logActivity(db, in.OwnerID, "seat_addon_purchased", map[string]interface{}{
		"quantity":   in.Quantity,
		"payment_id": in.PaymentID,
	})

	return &addon, nil
}

// MarkPaymentFailed appends a failed attempt to the ledger. Replayed
// failure events for the same payment id are ignored.
func MarkPaymentFailed(db *gorm.DB, userID uint, orderID, paymentID string) error {
	var existing model.Payment
	if err := db.Where("gateway_payment_id = ?", paymentID).First(&existing).Error; err == nil {
		return nil
	}

	ledger := model.Payment{
		UserID:           userID,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Status:           model.PaymentStatusFailed,
	}
	return db.Create(&ledger).Error
}

// ApplyRefund marks a completed ledger row refunded. A refund smaller
// than the captured amount becomes a partial refund.
func ApplyRefund(db *gorm.DB, paymentID string, refundPaise int64) error {
	var ledger model.Payment
	if err := db.Where("gateway_payment_id = ?", paymentID).First(&ledger).Error; err != nil {
		return fmt.Errorf("refund for unknown payment %q: %w", paymentID, err)
	}

	status := model.PaymentStatusRefunded
	if refundPaise > 0 && refundPaise < ledger.Amount {
		status = model.PaymentStatusPartialRefund
	}

	if err := db.Model(&ledger).Update("status", status).Error; err != nil {
		return err
	}

	logActivity(db, ledger.UserID, "payment_refunded", map[string]interface{}{
		"payment_id": paymentID,
		"amount":     refundPaise,
		"status":     status,
	})
	return nil
}

// ActiveAddonSeats sums the seat quantity of addon grants whose window
// covers now.
func ActiveAddonSeats(db *gorm.DB, ownerID uint) int {
	type row struct{ Total int }
	var r row
	db.Model(&model.TeamMemberAddon{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("owner_id = ? AND start_date <= ? AND end_date > ?", ownerID, time.Now(), time.Now()).
		Scan(&r)
	return r.Total
}

func logActivity(db *gorm.DB, userID uint, action string, details map[string]interface{}) {
	raw, _ := json.Marshal(details)
	entry := model.ActivityLog{UserID: userID, Action: action, Details: datatypes.JSON(raw)}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Could not append activity log %s for user %d: %v", action, userID, err)
	}
}
