package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"billdesk/internal/model"
	"billdesk/pkg/config"
	"billdesk/pkg/database"
	"billdesk/pkg/payment"
	"billdesk/pkg/seed"
	"billdesk/pkg/utils/jwt"
)

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
	testPassword      = "password123"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.SubscriptionPlan{},
		&model.UserSubscription{},
		&model.Payment{},
		&model.ActivityLog{},
		&model.TeamMember{},
		&model.TeamMemberAddon{},
		&model.Customer{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.InvoiceSettings{},
		&model.Testimonial{},
	)
	assert.NoError(t, err)

	database.DB = db
	seed.SeedSubscriptionPlans(db)

	InitPaymentController(payment.NewGateway(config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
	}))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) (*model.User, string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	assert.NoError(t, err)

	user := model.User{
		Email:        email,
		Password:     string(hashed),
		BusinessName: "Test Traders",
		GSTIN:        "29ABCDE1234F2Z5",
	}
	assert.NoError(t, db.Create(&user).Error)

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Role)
	assert.NoError(t, err)

	return &user, token
}

func activateSubscription(t *testing.T, db *gorm.DB, userID uint, slug string) {
	var plan model.SubscriptionPlan
	assert.NoError(t, db.Where("slug = ?", slug).First(&plan).Error)

	years := 0
	months := 1
	if plan.BillingPeriod == model.BillingPeriodLifetime {
		years, months = 100, 0
	}
	endDate := time.Now().AddDate(years, months, 0)

	sub := model.UserSubscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   &endDate,
	}
	assert.NoError(t, db.Create(&sub).Error)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	out := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func signPayload(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
