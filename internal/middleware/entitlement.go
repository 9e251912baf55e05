package middleware

import (
	"github.com/gofiber/fiber/v2"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/entitlement"
	"billdesk/pkg/utils/jwt"
)

// CheckInvoiceLimit enforces the free-tier invoice ceiling. Paid plans
// pass with the -1 unlimited sentinel; free tenants are capped by a full
// row count, recomputed every call. Strictly count < limit: at the cap,
// creation is refused.
func CheckInvoiceLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		status := entitlement.Resolve(database.DB, claims.UserID)
		limit := entitlement.FreeInvoiceLimit
		if status.HasActivePlan && !status.IsExpired {
			limit = entitlement.GetPlanLimits(entitlement.PlanSlug(status.PlanSlug)).MaxInvoices
		}

		if limit == -1 {
			return c.Next()
		}

		var count int64
		database.DB.Model(&model.Invoice{}).Where("user_id = ?", claims.UserID).Count(&count)

		if int(count) >= limit {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":      "You have reached your invoice limit. Please upgrade your plan.",
				"can_create": false,
				"count":      count,
				"limit":      limit,
			})
		}

		return c.Next()
	}
}

// CheckFeatureAccess gates routes behind a plan feature flag.
func CheckFeatureAccess(feature entitlement.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		status := entitlement.Resolve(database.DB, claims.UserID)
		slug := entitlement.FreePlan
		if status.HasActivePlan && !status.IsExpired {
			slug = entitlement.PlanSlug(status.PlanSlug)
		}

		if !entitlement.CanUseFeature(slug, feature) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This feature requires a higher subscription plan",
			})
		}

		return c.Next()
	}
}
