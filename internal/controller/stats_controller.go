package controller

import (
	"github.com/gofiber/fiber/v2"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/entitlement"
	"billdesk/pkg/utils/jwt"
)

// GetDashboardStats summarizes the tenant's billing activity plus the
// invoice-limit headroom, recomputed on every call.
func GetDashboardStats(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var invoiceCount, customerCount, paidCount int64
	database.DB.Model(&model.Invoice{}).Where("user_id = ?", claims.UserID).Count(&invoiceCount)
	database.DB.Model(&model.Customer{}).Where("user_id = ?", claims.UserID).Count(&customerCount)
	database.DB.Model(&model.Invoice{}).
		Where("user_id = ? AND status = ?", claims.UserID, model.InvoiceStatusPaid).
		Count(&paidCount)

	type sums struct {
		TotalBilled  float64
		GSTCollected float64
	}
	var s sums
	database.DB.Model(&model.Invoice{}).
		Select("COALESCE(SUM(total), 0) as total_billed, COALESCE(SUM(gst_amount), 0) as gst_collected").
		Where("user_id = ?", claims.UserID).
		Scan(&s)

	status := entitlement.Resolve(database.DB, claims.UserID)
	limit := entitlement.FreeInvoiceLimit
	if status.HasActivePlan && !status.IsExpired {
		limit = entitlement.GetPlanLimits(entitlement.PlanSlug(status.PlanSlug)).MaxInvoices
	}

	canCreate := limit == -1 || int(invoiceCount) < limit

	return c.JSON(fiber.Map{
		"invoice_count":  invoiceCount,
		"customer_count": customerCount,
		"paid_count":     paidCount,
		"total_billed":   s.TotalBilled,
		"gst_collected":  s.GSTCollected,
		"plan":           status.PlanName,
		"can_create":     canCreate,
		"invoice_limit":  limit,
	})
}
