package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"billdesk/internal/middleware"
	"billdesk/internal/model"
)

func newStatsTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/dashboard/stats", middleware.AuthMiddleware(), GetDashboardStats)
	return app
}

func TestDashboardStats(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newStatsTestApp()

	user, token := createTestUser(t, db, "owner@dashboard.in")
	customer := createTestCustomer(t, db, user.ID)

	invoices := []model.Invoice{
		{UserID: user.ID, CustomerID: customer.ID, Number: "INV-0001", Status: model.InvoiceStatusPaid, Subtotal: 1000, GSTAmount: 180, Total: 1180},
		{UserID: user.ID, CustomerID: customer.ID, Number: "INV-0002", Status: model.InvoiceStatusSent, Subtotal: 500, GSTAmount: 90, Total: 590},
		{UserID: user.ID, CustomerID: customer.ID, Number: "INV-0003", Status: model.InvoiceStatusDraft, Subtotal: 200, GSTAmount: 36, Total: 236},
	}
	for i := range invoices {
		assert.NoError(t, db.Create(&invoices[i]).Error)
	}

	// Another tenant's data must not leak into the numbers.
	other, _ := createTestUser(t, db, "owner@elsewhere.in")
	otherCustomer := createTestCustomer(t, db, other.ID)
	assert.NoError(t, db.Create(&model.Invoice{
		UserID: other.ID, CustomerID: otherCustomer.ID, Number: "INV-0001",
		Status: model.InvoiceStatusPaid, Subtotal: 9000, GSTAmount: 1620, Total: 10620,
	}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/dashboard/stats", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, 3.0, body["invoice_count"])
	assert.Equal(t, 1.0, body["customer_count"])
	assert.Equal(t, 1.0, body["paid_count"])
	assert.Equal(t, 2006.0, body["total_billed"])
	assert.Equal(t, 306.0, body["gst_collected"])
	assert.Equal(t, "Free", body["plan"])
	assert.Equal(t, true, body["can_create"])
	assert.Equal(t, 300.0, body["invoice_limit"])
}
