package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/document"
	"billdesk/pkg/utils/jwt"
	"billdesk/pkg/utils/storage"
)

type ProfileUpdateInput struct {
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	GSTIN        string `json:"gstin"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
	StateCode    string `json:"state_code"`
}

func GetProfile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user.GetPublicProfile())
}

func UpdateProfile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ProfileUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	updates := map[string]interface{}{
		"name":          input.Name,
		"business_name": input.BusinessName,
		"gstin":         input.GSTIN,
		"phone_number":  input.PhoneNumber,
		"address":       input.Address,
		"state_code":    input.StateCode,
	}

	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update profile",
		})
	}

	return c.JSON(user.GetPublicProfile())
}

type InvoiceSettingsInput struct {
	PrimaryColor string `json:"primary_color"`
	FontFamily   string `json:"font_family"`
	FooterNote   string `json:"footer_note"`
}

func GetInvoiceSettings(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var settings model.InvoiceSettings
	if err := database.DB.Where("user_id = ?", claims.UserID).First(&settings).Error; err != nil {
		// No stored row yet: report the renderer defaults.
		return c.JSON(fiber.Map{
			"primary_color": document.DefaultPrimaryColor,
			"font_family":   document.DefaultFontFamily,
			"footer_note":   document.DefaultFooterNote,
			"logo_url":      "",
		})
	}

	return c.JSON(settings)
}

func UpdateInvoiceSettings(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(InvoiceSettingsInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var settings model.InvoiceSettings
	err := database.DB.Where("user_id = ?", claims.UserID).First(&settings).Error
	if err != nil {
		settings = model.InvoiceSettings{UserID: claims.UserID}
	}

	settings.PrimaryColor = input.PrimaryColor
	settings.FontFamily = input.FontFamily
	settings.FooterNote = input.FooterNote

	if err := database.DB.Save(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save invoice settings",
		})
	}

	return c.JSON(settings)
}

// UploadLogo stores a business logo and points the tenant's invoice
// settings at it. Behind the custom branding feature gate.
func UploadLogo(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	file, err := c.FormFile("logo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A logo file is required",
		})
	}

	logoURL, err := storage.UploadLogo(file, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var settings model.InvoiceSettings
	if err := database.DB.Where("user_id = ?", claims.UserID).First(&settings).Error; err != nil {
		settings = model.InvoiceSettings{UserID: claims.UserID}
	}

	if settings.LogoURL != "" {
		if err := storage.DeleteLogo(settings.LogoURL); err != nil {
			log.Printf("Could not delete previous logo for user %d: %v", claims.UserID, err)
		}
	}

	settings.LogoURL = logoURL
	if err := database.DB.Save(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save logo",
		})
	}

	return c.JSON(fiber.Map{
		"logo_url": logoURL,
	})
}
