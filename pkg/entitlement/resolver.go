package entitlement

import (
	"math"
	"time"

	"gorm.io/gorm"

	"billdesk/internal/model"
)

// RenewalWindowDays is how close to expiry a renewal prompt starts.
const RenewalWindowDays = 7

type PlanStatus struct {
	HasActivePlan   bool                    `json:"has_active_plan"`
	IsExpired       bool                    `json:"is_expired"`
	PlanName        string                  `json:"plan_name"`
	PlanSlug        string                  `json:"plan_slug"`
	ExpiryDate      *time.Time              `json:"expiry_date"`
	DaysUntilExpiry *int                    `json:"days_until_expiry"`
	IsLifetime      bool                    `json:"is_lifetime"`
	NeedsRenewal    bool                    `json:"needs_renewal"`
	Subscription    *model.UserSubscription `json:"subscription"`
}

// Resolve derives the caller's current plan state from the most recent
// active or trial subscription row. Lookup errors resolve to the free
// tier: the failure mode never grants paid access.
func Resolve(db *gorm.DB, userID uint) PlanStatus {
	var sub model.UserSubscription
	err := db.Where("user_id = ? AND status IN ?", userID,
		[]string{model.SubscriptionStatusActive, model.SubscriptionStatusTrial}).
		Order("created_at DESC").
		Preload("Plan").
		First(&sub).Error
	if err != nil {
		return freeStatus()
	}

	status := PlanStatus{
		HasActivePlan: true,
		PlanName:      sub.Plan.Name,
		PlanSlug:      sub.Plan.Slug,
		IsLifetime:    sub.Plan.BillingPeriod == model.BillingPeriodLifetime,
		Subscription:  &sub,
	}

	// Lifetime never expires by construction; its stored end date is a
	// +100 year horizon, not a real deadline.
	if status.IsLifetime {
		return status
	}

	if sub.EndDate != nil {
		status.ExpiryDate = sub.EndDate
		status.IsExpired = sub.EndDate.Before(time.Now())
		days := int(math.Ceil(time.Until(*sub.EndDate).Hours() / 24))
		status.DaysUntilExpiry = &days
		status.NeedsRenewal = status.IsExpired || (days >= 0 && days <= RenewalWindowDays)
	}

	return status
}

func freeStatus() PlanStatus {
	return PlanStatus{
		HasActivePlan: false,
		PlanName:      "Free",
		PlanSlug:      string(FreePlan),
	}
}
