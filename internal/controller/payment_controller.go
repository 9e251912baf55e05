package controller

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"billdesk/internal/model"
	"billdesk/pkg/billing"
	"billdesk/pkg/database"
	"billdesk/pkg/email"
	"billdesk/pkg/payment"
	"billdesk/pkg/utils/jwt"
)

var gateway *payment.Gateway

// InitPaymentController injects the gateway client constructed in main.
func InitPaymentController(gw *payment.Gateway) {
	gateway = gw
}

type CheckoutInput struct {
	PlanSlug string `json:"plan"`
}

// CreateCheckoutOrder registers a gateway order for a paid plan. The
// notes on the order come back on the webhook and correlate the payment
// to the user and plan.
func CreateCheckoutOrder(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	price, err := billing.PlanCharge(input.PlanSlug)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	receipt := "sub_" + uuid.New().String()[:18]
	orderID, err := gateway.CreateOrder(price.AmountPaise, receipt, map[string]interface{}{
		"user_id": strconv.FormatUint(uint64(claims.UserID), 10),
		"purpose": model.PaymentPurposeSubscription,
		"plan":    input.PlanSlug,
	})
	if err != nil {
		log.Printf("Could not create checkout order for user %d: %v", claims.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create payment order",
		})
	}

	return c.JSON(fiber.Map{
		"order_id": orderID,
		"amount":   price.AmountPaise,
		"currency": "INR",
	})
}

type VerifyPaymentInput struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	PlanSlug  string `json:"plan"`
}

// VerifyPayment handles the client-side checkout confirmation callback.
// The signature covers orderId + "|" + paymentId; any mismatch is a hard
// rejection.
func VerifyPayment(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(VerifyPaymentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if input.OrderID == "" || input.PaymentID == "" || input.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "orderId, paymentId and signature are required",
		})
	}

	ok, err := gateway.VerifyCallback(input.OrderID, input.PaymentID, input.Signature)
	if err != nil {
		log.Printf("Payment verification unavailable: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Payment verification is not configured",
		})
	}
	if !ok {
		log.Printf("Payment signature mismatch for order %s", input.OrderID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment signature verification failed",
		})
	}

	sub, err := billing.ApplyPaymentCapture(database.DB, billing.CaptureInput{
		UserID:    claims.UserID,
		PlanSlug:  input.PlanSlug,
		OrderID:   input.OrderID,
		PaymentID: input.PaymentID,
	})
	if err != nil {
		log.Printf("Could not apply payment %s: %v", input.PaymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not activate subscription",
		})
	}

	sendReceipt(claims.UserID, input.PlanSlug, input.PaymentID)

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Payment verified and subscription activated",
		"subscription": sub,
	})
}

type GuestVerifyInput struct {
	VerifyPaymentInput
	Email        string `json:"email"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	GSTIN        string `json:"gstin"`
}

// VerifyGuestPayment is the pre-signup checkout path: on a verified
// payment it creates the auth identity first, then fills in the business
// profile. A profile-side failure is logged and does not abort the
// account creation.
func VerifyGuestPayment(c *fiber.Ctx) error {
	input := new(GuestVerifyInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if !isValidEmail(input.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid email is required",
		})
	}
	if input.OrderID == "" || input.PaymentID == "" || input.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "orderId, paymentId and signature are required",
		})
	}

	ok, err := gateway.VerifyCallback(input.OrderID, input.PaymentID, input.Signature)
	if err != nil {
		log.Printf("Payment verification unavailable: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Payment verification is not configured",
		})
	}
	if !ok {
		log.Printf("Guest payment signature mismatch for order %s", input.OrderID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment signature verification failed",
		})
	}

	var user model.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
		user = model.User{
			Email:        input.Email,
			Password:     string(hashed),
			BusinessName: input.Email, // placeholder until the profile step lands
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Could not create guest account for %s: %v", input.Email, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create account",
			})
		}
		log.Printf("Created guest account %d for %s", user.ID, input.Email)

		profile := map[string]interface{}{
			"name":          input.Name,
			"business_name": input.BusinessName,
			"gstin":         input.GSTIN,
		}
		if input.BusinessName == "" {
			profile["business_name"] = input.Email
		}
		if err := database.DB.Model(&user).Updates(profile).Error; err != nil {
			// Accepted risk: the account exists, the profile can be
			// completed later from settings.
			log.Printf("Could not complete guest profile for %s: %v", input.Email, err)
		}
	}

	sub, err := billing.ApplyPaymentCapture(database.DB, billing.CaptureInput{
		UserID:    user.ID,
		PlanSlug:  input.PlanSlug,
		OrderID:   input.OrderID,
		PaymentID: input.PaymentID,
	})
	if err != nil {
		log.Printf("Could not apply guest payment %s: %v", input.PaymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not activate subscription",
		})
	}

	sendReceipt(user.ID, input.PlanSlug, input.PaymentID)

	token, err := jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Payment verified and account created",
		"token":        token,
		"subscription": sub,
	})
}

// Explicit tagged payload structs per gateway event type. Notes are
// parsed leniently because the gateway serializes empty notes as an
// array instead of an object.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity refundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID      string          `json:"id"`
	OrderID string          `json:"order_id"`
	Amount  int64           `json:"amount"`
	Notes   json.RawMessage `json:"notes"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

func parseNotes(raw json.RawMessage) map[string]string {
	notes := map[string]string{}
	if len(raw) > 0 {
		json.Unmarshal(raw, &notes)
	}
	return notes
}

// HandlePaymentWebhook processes gateway redeliveries safely: the
// underlying writers are idempotent by gateway payment id, so replaying
// an event is a no-op. Unknown events are acknowledged and ignored for
// forward compatibility.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Razorpay-Signature")

	ok, err := gateway.VerifyWebhook(body, signature)
	if err != nil {
		log.Printf("Webhook verification unavailable: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Webhook verification is not configured",
		})
	}
	if !ok {
		log.Printf("Webhook signature mismatch")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	log.Printf("Processing gateway webhook event: %s", envelope.Event)

	switch envelope.Event {
	case "payment.captured":
		entity := envelope.Payload.Payment.Entity
		notes := parseNotes(entity.Notes)
		userID, _ := strconv.ParseUint(notes["user_id"], 10, 64)
		if userID == 0 {
			log.Printf("Captured payment %s has no user correlation, skipping", entity.ID)
			break
		}

		if notes["purpose"] == model.PaymentPurposeAddon {
			quantity, _ := strconv.Atoi(notes["quantity"])
			_, err = billing.ApplyAddonCapture(database.DB, billing.AddonCaptureInput{
				OwnerID:       uint(userID),
				Quantity:      quantity,
				BillingPeriod: notes["billing_period"],
				OrderID:       entity.OrderID,
				PaymentID:     entity.ID,
				AmountPaise:   entity.Amount,
			})
		} else {
			_, err = billing.ApplyPaymentCapture(database.DB, billing.CaptureInput{
				UserID:      uint(userID),
				PlanSlug:    notes["plan"],
				OrderID:     entity.OrderID,
				PaymentID:   entity.ID,
				AmountPaise: entity.Amount,
			})
		}
		if err != nil {
			log.Printf("Could not apply captured payment %s: %v", entity.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not apply payment",
			})
		}

	case "payment.failed":
		entity := envelope.Payload.Payment.Entity
		notes := parseNotes(entity.Notes)
		userID, _ := strconv.ParseUint(notes["user_id"], 10, 64)
		if err := billing.MarkPaymentFailed(database.DB, uint(userID), entity.OrderID, entity.ID); err != nil {
			log.Printf("Could not record failed payment %s: %v", entity.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not record failed payment",
			})
		}

	case "refund.processed":
		entity := envelope.Payload.Refund.Entity
		if err := billing.ApplyRefund(database.DB, entity.PaymentID, entity.Amount); err != nil {
			log.Printf("Could not apply refund %s: %v", entity.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not apply refund",
			})
		}

	case "refund.failed":
		entity := envelope.Payload.Refund.Entity
		log.Printf("Refund %s for payment %s failed at the gateway", entity.ID, entity.PaymentID)

	default:
		// Acknowledge unknown events so the gateway stops redelivering.
		log.Printf("Ignoring webhook event %s", envelope.Event)
	}

	return c.JSON(fiber.Map{
		"received": true,
	})
}

func sendReceipt(userID uint, itemName, paymentID string) {
	if email.GlobalEmailService == nil {
		return
	}

	var user model.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return
	}

	var ledger model.Payment
	if err := database.DB.Where("gateway_payment_id = ?", paymentID).First(&ledger).Error; err != nil {
		return
	}

	amount := float64(ledger.Amount) / 100
	if err := email.GlobalEmailService.SendPaymentReceiptEmail(user.Email, user.DisplayName(), itemName, amount, paymentID); err != nil {
		log.Printf("Could not send payment receipt to %s: %v", user.Email, err)
	}
}
