package controller

import (
	"github.com/gofiber/fiber/v2"

	"billdesk/internal/model"
	"billdesk/pkg/database"
	"billdesk/pkg/utils/jwt"
)

type CustomerInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	GSTIN          string `json:"gstin"`
	BillingAddress string `json:"billing_address"`
	StateCode      string `json:"state_code"`
}

func CreateCustomer(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(CustomerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Customer name is required",
		})
	}

	customer := model.Customer{
		UserID:         claims.UserID,
		Name:           input.Name,
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		GSTIN:          input.GSTIN,
		BillingAddress: input.BillingAddress,
		StateCode:      input.StateCode,
	}

	if err := database.DB.Create(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create customer",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(customer)
}

func ListCustomers(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var customers []model.Customer
	if err := database.DB.Where("user_id = ?", claims.UserID).
		Order("name ASC").Find(&customers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch customers",
		})
	}

	return c.JSON(customers)
}

func GetCustomer(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	// Ownership filter doubles as access control: foreign rows 404.
	var customer model.Customer
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		First(&customer).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Customer not found",
		})
	}

	return c.JSON(customer)
}

func UpdateCustomer(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var customer model.Customer
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		First(&customer).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Customer not found",
		})
	}

	input := new(CustomerInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	updates := map[string]interface{}{
		"name":            input.Name,
		"email":           input.Email,
		"phone_number":    input.PhoneNumber,
		"gstin":           input.GSTIN,
		"billing_address": input.BillingAddress,
		"state_code":      input.StateCode,
	}

	if err := database.DB.Model(&customer).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update customer",
		})
	}

	return c.JSON(customer)
}

func DeleteCustomer(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var customer model.Customer
	if err := database.DB.Where("id = ? AND user_id = ?", c.Params("id"), claims.UserID).
		First(&customer).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Customer not found",
		})
	}

	var invoiceCount int64
	database.DB.Model(&model.Invoice{}).Where("customer_id = ?", customer.ID).Count(&invoiceCount)
	if invoiceCount > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Customer has invoices and cannot be deleted",
		})
	}

	if err := database.DB.Delete(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete customer",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Customer deleted successfully",
	})
}
