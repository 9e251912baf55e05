package controller

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/document"
	"billdesk/pkg/utils/jwt"
)

type InvoiceItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type InvoiceInput struct {
	CustomerID    uint               `json:"customer_id"`
	Number        string             `json:"number"`
	IssueDate     *time.Time         `json:"issue_date"`
	DueDate       *time.Time         `json:"due_date"`
	GSTPercentage float64            `json:"gst_percentage"`
	Notes         string             `json:"notes"`
	Items         []InvoiceItemInput `json:"items"`
}

func CreateInvoice(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(InvoiceInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if len(input.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "An invoice needs at least one item",
		})
	}
	if input.GSTPercentage < 0 || input.GSTPercentage > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "GST percentage must be between 0 and 100",
		})
	}

	var customer model.Customer
	if err := database.DB.Where("id = ? AND user_id = ?", input.CustomerID, claims.UserID).
		First(&customer).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Customer not found",
		})
	}

	number := input.Number
	if number == "" {
		// Deleted invoices keep their number reserved by the unique index,
		// so the sequence counts them too.
		var count int64
		database.DB.Unscoped().Model(&model.Invoice{}).Where("user_id = ?", claims.UserID).Count(&count)
		number = fmt.Sprintf("INV-%04d", count+1)
	} else {
		number = strings.ToUpper(slug.Make(number))
	}

	issueDate := time.Now()
	if input.IssueDate != nil {
		issueDate = *input.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, 15)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	// Totals are computed here once and stored; they are never re-derived.
	var subtotal float64
	items := make([]model.InvoiceItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Description == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Each item needs a description, a positive quantity and a non-negative unit price",
			})
		}
		amount := round2(item.Quantity * item.UnitPrice)
		subtotal += amount
		items = append(items, model.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      amount,
		})
	}
	subtotal = round2(subtotal)
	gstAmount := round2(subtotal * input.GSTPercentage / 100)

	invoice := model.Invoice{
		UserID:        claims.UserID,
		CustomerID:    customer.ID,
		Number:        number,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        model.InvoiceStatusDraft,
		Subtotal:      subtotal,
		GSTPercentage: input.GSTPercentage,
		GSTAmount:     gstAmount,
		Total:         round2(subtotal + gstAmount),
		Notes:         input.Notes,
		Items:         items,
	}

	if err := database.DB.Create(&invoice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create invoice",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func ListInvoices(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoices []model.Invoice
	if err := database.DB.Where("user_id = ?", claims.UserID).
		Preload("Customer").
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch invoices",
		})
	}

	return c.JSON(invoices)
}

func GetInvoice(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		Preload("Customer").
		Preload("Items").
		First(&invoice).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invoice not found",
		})
	}

	return c.JSON(invoice)
}

type InvoiceStatusInput struct {
	Status string `json:"status"`
}

func UpdateInvoiceStatus(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(InvoiceStatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	switch input.Status {
	case model.InvoiceStatusDraft, model.InvoiceStatusSent, model.InvoiceStatusPaid:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid invoice status",
		})
	}

	var invoice model.Invoice
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		First(&invoice).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invoice not found",
		})
	}

	if err := database.DB.Model(&invoice).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update invoice status",
		})
	}

	return c.JSON(invoice)
}

func DeleteInvoice(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		First(&invoice).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invoice not found",
		})
	}

	if err := database.DB.Select("Items").Delete(&invoice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete invoice",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Invoice deleted successfully",
	})
}

// RenderInvoiceDocument maps an invoice plus the tenant's style settings
// to a printable HTML document.
func RenderInvoiceDocument(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoice model.Invoice
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		Preload("Customer").
		Preload("Items").
		First(&invoice).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invoice not found",
		})
	}

	var user model.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch business profile",
		})
	}

	var settings model.InvoiceSettings
	settingsPtr := &settings
	if err := database.DB.Where("user_id = ?", claims.UserID).First(&settings).Error; err != nil {
		settingsPtr = nil
	}

	html, err := document.Render(invoice, invoice.Customer, user, document.SettingsFrom(settingsPtr))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not render invoice document",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
