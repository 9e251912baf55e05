package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/email"
)

func InitRenewalReminderCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		checkExpiringSubscriptions()
	})

	if err != nil {
		log.Printf("Could not initialize renewal reminder cron: %v", err)
		return
	}

	c.Start()
}

func checkExpiringSubscriptions() {
	log.Println("Checking for expiring subscriptions...")

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		var subs []model.UserSubscription
		windowStart := time.Now().AddDate(0, 0, days)
		windowEnd := windowStart.Add(24 * time.Hour)

		err := database.DB.
			Joins("JOIN subscription_plans ON subscription_plans.id = user_subscriptions.plan_id").
			Where("user_subscriptions.status = ? AND subscription_plans.billing_period <> ?",
				model.SubscriptionStatusActive, model.BillingPeriodLifetime).
			Where("user_subscriptions.end_date >= ? AND user_subscriptions.end_date < ?", windowStart, windowEnd).
			Preload("User").
			Preload("Plan").
			Find(&subs).Error

		if err != nil {
			log.Printf("Error fetching expiring subscriptions: %v", err)
			continue
		}

		log.Printf("Found %d subscriptions expiring in %d days", len(subs), days)

		for _, sub := range subs {
			if email.GlobalEmailService == nil || sub.EndDate == nil {
				continue
			}

			err := email.GlobalEmailService.SendRenewalWarningEmail(
				sub.User.Email,
				sub.User.DisplayName(),
				sub.Plan.Name,
				*sub.EndDate,
				days,
			)
			if err != nil {
				log.Printf("Error sending renewal warning to %s: %v", sub.User.Email, err)
			} else {
				log.Printf("Sent renewal warning to %s for subscription expiring in %d days", sub.User.Email, days)
			}
		}
	}
}
