package controller

import (
	"github.com/gofiber/fiber/v2"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/entitlement"
	"billdesk/pkg/utils/jwt"
)

func ListPlans(c *fiber.Ctx) error {
	var plans []model.SubscriptionPlan
	if err := database.DB.Order("display_order ASC").Find(&plans).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscription plans",
		})
	}

	return c.JSON(plans)
}

// GetEntitlement returns the caller's resolved plan status.
func GetEntitlement(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	return c.JSON(entitlement.Resolve(database.DB, claims.UserID))
}

func GetMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var userSub model.UserSubscription
	if err := database.DB.Where("user_id = ? AND status IN ?", claims.UserID,
		[]string{model.SubscriptionStatusActive, model.SubscriptionStatusTrial}).
		Order("created_at DESC").
		Preload("Plan").First(&userSub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	return c.JSON(userSub)
}

func CancelSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var userSub model.UserSubscription
	if err := database.DB.Where("user_id = ? AND status IN ?", claims.UserID,
		[]string{model.SubscriptionStatusActive, model.SubscriptionStatusTrial}).
		Order("created_at DESC").
		First(&userSub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	userSub.Status = model.SubscriptionStatusCancelled
	if err := database.DB.Save(&userSub).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update subscription status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Subscription cancelled successfully",
	})
}
