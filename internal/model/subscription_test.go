package model

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPlanAndSubscriptionMigrate(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	// The has-many back-reference joins on PlanID, not the default
	// SubscriptionPlanID; migration fails if the relation is misdeclared.
	assert.NoError(t, db.AutoMigrate(&SubscriptionPlan{}, &UserSubscription{}))
	assert.True(t, db.Migrator().HasTable(&SubscriptionPlan{}))
	assert.True(t, db.Migrator().HasTable(&UserSubscription{}))

	plan := SubscriptionPlan{
		Name:          "Starter",
		Slug:          "starter",
		Price:         299,
		BillingPeriod: BillingPeriodMonthly,
		MaxInvoices:   -1,
		MaxSeats:      2,
	}
	assert.NoError(t, db.Create(&plan).Error)

	endDate := time.Now().AddDate(0, 1, 0)
	sub := UserSubscription{
		UserID:    1,
		PlanID:    plan.ID,
		Status:    SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   &endDate,
	}
	assert.NoError(t, db.Create(&sub).Error)

	var loaded SubscriptionPlan
	assert.NoError(t, db.Preload("UserSubscriptions").First(&loaded, plan.ID).Error)
	assert.Len(t, loaded.UserSubscriptions, 1)
	assert.Equal(t, plan.ID, loaded.UserSubscriptions[0].PlanID)

	var preloaded UserSubscription
	assert.NoError(t, db.Preload("Plan").First(&preloaded, sub.ID).Error)
	assert.Equal(t, "starter", preloaded.Plan.Slug)
}
