package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type AssistantInput struct {
	Message string `json:"message"`
}

// Canned replies for the AI Accountant. Matching is keyword based; no
// external model is involved.
var assistantReplies = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"gst rate", "gst percentage", "tax rate"},
		reply:    "Common GST rates in India are 0%, 5%, 12%, 18% and 28%. Most services fall under 18%. Pick the rate per item when you create an invoice and BillDesk computes the tax amount for you.",
	},
	{
		keywords: []string{"gstin", "gst number"},
		reply:    "A GSTIN is a 15-character registration number. Add yours in Settings and your customers' on their profiles: both are printed on every tax invoice.",
	},
	{
		keywords: []string{"invoice limit", "how many invoices", "300"},
		reply:    "The free plan includes 300 invoices in total. Paid plans have no invoice limit. You can check your usage on the dashboard.",
	},
	{
		keywords: []string{"hsn", "sac"},
		reply:    "HSN codes classify goods and SAC codes classify services for GST. Include them in the item description; businesses above the turnover threshold must print them on invoices.",
	},
	{
		keywords: []string{"due date", "payment terms"},
		reply:    "BillDesk defaults the due date to 15 days after the issue date. You can set any due date when creating an invoice.",
	},
	{
		keywords: []string{"refund", "cancel"},
		reply:    "Refunds are handled through your payment gateway dashboard. Once the gateway processes a refund, the payment record in BillDesk is updated automatically.",
	},
	{
		keywords: []string{"team", "seat", "member"},
		reply:    "You can invite team members from the Team page up to your plan's seat allowance. Lifetime plan owners can purchase extra seats as an addon.",
	},
}

const assistantFallback = "I can help with GST rates, GSTIN, HSN/SAC codes, invoice limits, payment terms and team seats. Try asking about one of those, for example: \"What GST rate should I use for services?\""

func ChatWithAssistant(c *fiber.Ctx) error {
	input := new(AssistantInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	message := strings.ToLower(strings.TrimSpace(input.Message))
	if message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	reply := assistantFallback
	for _, candidate := range assistantReplies {
		for _, keyword := range candidate.keywords {
			if strings.Contains(message, keyword) {
				reply = candidate.reply
				break
			}
		}
		if reply != assistantFallback {
			break
		}
	}

	return c.JSON(fiber.Map{
		"reply": reply,
	})
}
