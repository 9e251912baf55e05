package controller

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"billdesk/internal/middleware"
)

func newAssistantTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/assistant/chat", middleware.AuthMiddleware(), ChatWithAssistant)
	return app
}

func TestAssistantAnswersKnownTopics(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newAssistantTestApp()

	_, token := createTestUser(t, db, "owner@assistant.in")

	cases := []struct {
		message  string
		expected string
	}{
		{"What GST rate should I use for services?", "18%"},
		{"How many invoices can I create on the free plan?", "300 invoices"},
		{"Where do I put my GSTIN?", "15-character"},
		{"What is an HSN code?", "HSN codes classify goods"},
	}

	for _, tc := range cases {
		resp := doJSON(t, app, http.MethodPost, "/api/assistant/chat", token, map[string]interface{}{
			"message": tc.message,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		reply, _ := decodeBody(t, resp)["reply"].(string)
		assert.Contains(t, reply, tc.expected, "message: %s", tc.message)
	}
}

func TestAssistantFallsBackOnUnknownTopic(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newAssistantTestApp()

	_, token := createTestUser(t, db, "owner@fallback.in")

	resp := doJSON(t, app, http.MethodPost, "/api/assistant/chat", token, map[string]interface{}{
		"message": "What is the weather in Mumbai?",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, assistantFallback, decodeBody(t, resp)["reply"])
}

func TestAssistantRejectsEmptyMessage(t *testing.T) {
	db := setupControllerTestDB(t)
	app := newAssistantTestApp()

	_, token := createTestUser(t, db, "owner@empty.in")

	resp := doJSON(t, app, http.MethodPost, "/api/assistant/chat", token, map[string]interface{}{
		"message": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
