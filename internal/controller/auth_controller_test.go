package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"billdesk/internal/middleware"
	"billdesk/internal/model"
)

func newAuthTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/auth/register", Register)
	app.Post("/api/auth/login", Login)
	app.Get("/api/me", middleware.AuthMiddleware(), GetMe)
	return app
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newAuthTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":         "owner@mehtatraders.in",
		"password":      "secret123",
		"name":          "Priya Mehta",
		"business_name": "Mehta Traders",
		"gstin":         "27AABCU9603R1ZM",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	var user model.User
	assert.NoError(t, db.Where("email = ?", "owner@mehtatraders.in").First(&user).Error)
	assert.Equal(t, "Mehta Traders", user.BusinessName)
	assert.NotEqual(t, "secret123", user.Password)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "owner@mehtatraders.in",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)

	resp = doJSON(t, app, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	profile, _ := body["user"].(map[string]interface{})
	assert.Equal(t, "owner@mehtatraders.in", profile["email"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	setupControllerTestDB(t)
	app := newAuthTestApp()

	payload := map[string]interface{}{
		"email":         "owner@sharma.in",
		"password":      "secret123",
		"business_name": "Sharma & Sons",
	}

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already exists", decodeBody(t, resp)["error"])
}

func TestRegisterValidation(t *testing.T) {
	setupControllerTestDB(t)
	app := newAuthTestApp()

	cases := []map[string]interface{}{
		{"email": "not-an-email", "password": "secret123", "business_name": "X"},
		{"email": "a@b.in", "password": "short", "business_name": "X"},
		{"email": "a@b.in", "password": "secret123", "business_name": ""},
	}
	for _, payload := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newAuthTestApp()

	createTestUser(t, db, "owner@gupta.in")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "owner@gupta.in",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newAuthTestApp()

	user, _ := createTestUser(t, db, "owner@closed.in")
	assert.NoError(t, db.Model(user).Update("status", model.UserStatusDeactivated).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "owner@closed.in",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Account is deactivated", decodeBody(t, resp)["error"])
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	setupControllerTestDB(t)
	app := newAuthTestApp()

	resp := doJSON(t, app, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
