package controller

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"billdesk/internal/middleware"
	"billdesk/internal/model"
	"billdesk/pkg/entitlement"
)

func newInvoiceTestApp() *fiber.App {
	app := fiber.New()
	invoices := app.Group("/api/invoices", middleware.AuthMiddleware())
	invoices.Post("/", middleware.CheckInvoiceLimit(), CreateInvoice)
	invoices.Get("/", ListInvoices)
	invoices.Get("/:id", GetInvoice)
	invoices.Put("/:id/status", UpdateInvoiceStatus)
	invoices.Delete("/:id", DeleteInvoice)
	invoices.Get("/:id/document", RenderInvoiceDocument)
	return app
}

func createTestCustomer(t *testing.T, db *gorm.DB, userID uint) *model.Customer {
	customer := model.Customer{
		UserID:         userID,
		Name:           "Acme Components Pvt Ltd",
		Email:          "accounts@acme.in",
		GSTIN:          "07AAACA1234B1Z9",
		BillingAddress: "14 MG Road, Bengaluru",
		StateCode:      "29",
	}
	assert.NoError(t, db.Create(&customer).Error)
	return &customer
}

func TestCreateInvoiceComputesGSTTotals(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@invoices.in")
	customer := createTestCustomer(t, db, user.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 2, "unit_price": 400},
			{"description": "Support retainer", "quantity": 1, "unit_price": 200},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, 1000.0, body["subtotal"])
	assert.Equal(t, 180.0, body["gst_amount"])
	assert.Equal(t, 1180.0, body["total"])
	assert.Equal(t, "INV-0001", body["number"])
	assert.Equal(t, model.InvoiceStatusDraft, body["status"])
}

func TestCreateInvoiceValidation(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@validation.in")
	customer := createTestCustomer(t, db, user.ID)

	// No items.
	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items":          []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// GST out of range.
	resp = doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 101,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Someone else's customer resolves as not found.
	other, _ := createTestUser(t, db, "other@validation.in")
	foreign := createTestCustomer(t, db, other.ID)
	resp = doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    foreign.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFreeTierInvoiceLimit(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@capped.in")
	customer := createTestCustomer(t, db, user.ID)

	seedInvoices := func(n int) {
		rows := make([]model.Invoice, 0, n)
		for i := 0; i < n; i++ {
			rows = append(rows, model.Invoice{
				UserID:     user.ID,
				CustomerID: customer.ID,
				Number:     fmt.Sprintf("INV-%04d", i+1),
				Subtotal:   100,
				Total:      100,
			})
		}
		assert.NoError(t, db.CreateInBatches(rows, 100).Error)
	}

	seedInvoices(entitlement.FreeInvoiceLimit - 1)

	payload := map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	}

	// 299 existing: one more is allowed, and it lands exactly at the cap.
	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/invoices/", token, payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["can_create"])
	assert.Equal(t, float64(entitlement.FreeInvoiceLimit), body["limit"])
}

func TestPaidPlanHasNoInvoiceLimit(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@unlimited.in")
	customer := createTestCustomer(t, db, user.ID)
	activateSubscription(t, db, user.ID, "starter")

	rows := make([]model.Invoice, 0, entitlement.FreeInvoiceLimit)
	for i := 0; i < entitlement.FreeInvoiceLimit; i++ {
		rows = append(rows, model.Invoice{
			UserID:     user.ID,
			CustomerID: customer.ID,
			Number:     fmt.Sprintf("INV-%04d", i+1),
			Subtotal:   100,
			Total:      100,
		})
	}
	assert.NoError(t, db.CreateInBatches(rows, 100).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@status.in")
	customer := createTestCustomer(t, db, user.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	invoiceID := decodeBody(t, resp)["ID"].(float64)

	path := fmt.Sprintf("/api/invoices/%d/status", int(invoiceID))
	resp = doJSON(t, app, http.MethodPut, path, token, map[string]interface{}{"status": "sent"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.Invoice
	assert.NoError(t, db.First(&stored, uint(invoiceID)).Error)
	assert.Equal(t, model.InvoiceStatusSent, stored.Status)

	resp = doJSON(t, app, http.MethodPut, path, token, map[string]interface{}{"status": "overdue"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRenderInvoiceDocumentEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@render.in")
	customer := createTestCustomer(t, db, user.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 2, "unit_price": 500},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	invoiceID := decodeBody(t, resp)["ID"].(float64)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/invoices/%d/document", int(invoiceID)), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "TAX INVOICE")
	assert.Contains(t, html, "INV-0001")
	assert.Contains(t, html, "1180.00")
	assert.Contains(t, html, "Acme Components Pvt Ltd")
	assert.Contains(t, html, "Test Traders")
}

func TestInvoiceNumberingSurvivesDelete(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	user, token := createTestUser(t, db, "owner@renumber.in")
	customer := createTestCustomer(t, db, user.ID)

	payload := map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	}

	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", token, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/invoices/", token, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	secondID := decodeBody(t, resp)["ID"].(float64)
	assert.Equal(t, "INV-0002", mustInvoiceNumber(t, db, uint(secondID)))

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", int(secondID)), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The deleted invoice keeps INV-0002 reserved; the next auto number
	// must move past it instead of colliding.
	resp = doJSON(t, app, http.MethodPost, "/api/invoices/", token, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "INV-0003", decodeBody(t, resp)["number"])
}

func mustInvoiceNumber(t *testing.T, db *gorm.DB, id uint) string {
	var invoice model.Invoice
	assert.NoError(t, db.First(&invoice, id).Error)
	return invoice.Number
}

func TestInvoiceTenantIsolation(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newInvoiceTestApp()

	owner, ownerToken := createTestUser(t, db, "owner@tenant-a.in")
	customer := createTestCustomer(t, db, owner.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices/", ownerToken, map[string]interface{}{
		"customer_id":    customer.ID,
		"gst_percentage": 18,
		"items": []map[string]interface{}{
			{"description": "Consulting", "quantity": 1, "unit_price": 100},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	invoiceID := decodeBody(t, resp)["ID"].(float64)

	_, intruderToken := createTestUser(t, db, "owner@tenant-b.in")
	path := fmt.Sprintf("/api/invoices/%d", int(invoiceID))

	resp = doJSON(t, app, http.MethodGet, path, intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, path, intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Still there for the owner.
	resp = doJSON(t, app, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
