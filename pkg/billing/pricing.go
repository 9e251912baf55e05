package billing

import (
	"fmt"
	"time"

	"billdesk/internal/model"
)

type PlanPrice struct {
	AmountPaise int64
	Period      string
}

// Catalog prices keyed by plan slug. Amounts are paise; the gateway
// deals in the minor currency unit only.
var planPrices = map[string]PlanPrice{
	"starter":      {AmountPaise: 29900, Period: model.BillingPeriodMonthly},
	"professional": {AmountPaise: 499900, Period: model.BillingPeriodYearly},
	"lifetime":     {AmountPaise: 1499900, Period: model.BillingPeriodLifetime},
}

// Per-seat addon prices keyed by billing period.
var addonSeatPrices = map[string]int64{
	model.BillingPeriodMonthly:  9900,
	model.BillingPeriodYearly:   99900,
	model.BillingPeriodLifetime: 249900,
}

func PlanCharge(slug string) (PlanPrice, error) {
	price, ok := planPrices[slug]
	if !ok {
		return PlanPrice{}, fmt.Errorf("unknown paid plan %q", slug)
	}
	return price, nil
}

func AddonCharge(billingPeriod string, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("addon quantity must be at least 1")
	}
	perSeat, ok := addonSeatPrices[billingPeriod]
	if !ok {
		return 0, fmt.Errorf("unknown billing period %q", billingPeriod)
	}
	return perSeat * int64(quantity), nil
}

// ExpiryFor computes the subscription end date for a billing period.
// Lifetime gets a 100 year horizon: an approximation of "forever"
// rather than a true unbounded state.
func ExpiryFor(billingPeriod string, from time.Time) time.Time {
	switch billingPeriod {
	case model.BillingPeriodMonthly:
		return from.AddDate(0, 1, 0)
	case model.BillingPeriodYearly:
		return from.AddDate(1, 0, 0)
	case model.BillingPeriodLifetime:
		return from.AddDate(100, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
