package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"billdesk/internal/middleware"
	"billdesk/internal/model"
)

func newCustomerTestApp() *fiber.App {
	app := fiber.New()
	customers := app.Group("/api/customers", middleware.AuthMiddleware())
	customers.Post("/", CreateCustomer)
	customers.Get("/", ListCustomers)
	customers.Get("/:id", GetCustomer)
	customers.Put("/:id", UpdateCustomer)
	customers.Delete("/:id", DeleteCustomer)
	return app
}

func TestCustomerCRUD(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newCustomerTestApp()

	_, token := createTestUser(t, db, "owner@customers.in")

	resp := doJSON(t, app, http.MethodPost, "/api/customers/", token, map[string]interface{}{
		"name":         "Verma Distributors",
		"email":        "billing@verma.in",
		"gstin":        "09AAACV1234C1Z2",
		"state_code":   "09",
		"phone_number": "+91 98100 00000",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	customerID := decodeBody(t, resp)["ID"].(float64)

	path := fmt.Sprintf("/api/customers/%d", int(customerID))
	resp = doJSON(t, app, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Verma Distributors", decodeBody(t, resp)["name"])

	resp = doJSON(t, app, http.MethodPut, path, token, map[string]interface{}{
		"name":  "Verma Distributors LLP",
		"email": "accounts@verma.in",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.Customer
	assert.NoError(t, db.First(&stored, uint(customerID)).Error)
	assert.Equal(t, "Verma Distributors LLP", stored.Name)
	assert.Equal(t, "accounts@verma.in", stored.Email)

	resp = doJSON(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCustomerRequiresName(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newCustomerTestApp()

	_, token := createTestUser(t, db, "owner@noname.in")

	resp := doJSON(t, app, http.MethodPost, "/api/customers/", token, map[string]interface{}{
		"email": "billing@noname.in",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCustomerWithInvoicesIsBlocked(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newCustomerTestApp()

	user, token := createTestUser(t, db, "owner@blocked.in")
	customer := createTestCustomer(t, db, user.ID)

	invoice := model.Invoice{
		UserID:     user.ID,
		CustomerID: customer.ID,
		Number:     "INV-0001",
		Subtotal:   100,
		Total:      118,
	}
	assert.NoError(t, db.Create(&invoice).Error)

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/customers/%d", customer.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Customer has invoices and cannot be deleted", decodeBody(t, resp)["error"])

	var still model.Customer
	assert.NoError(t, db.First(&still, customer.ID).Error)
}

func TestCustomerTenantIsolation(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newCustomerTestApp()

	owner, _ := createTestUser(t, db, "owner@mine.in")
	customer := createTestCustomer(t, db, owner.ID)

	_, intruderToken := createTestUser(t, db, "owner@theirs.in")

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/customers/%d", customer.ID), intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/customers/", intruderToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var listed []model.Customer
	assert.NoError(t, json.Unmarshal(raw, &listed))
	assert.Empty(t, listed)
}
