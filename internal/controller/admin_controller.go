package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"

	"billdesk/internal/model"
	"billdesk/pkg/database"
)

// ListUsers is the cross-tenant back-office view. Tenant data stays
// scoped by user_id everywhere else; only the admin role reads across.
func ListUsers(c *fiber.Ctx) error {
	var users []model.User
	if err := database.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch users",
		})
	}

	out := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		out = append(out, users[i].GetPublicProfile())
	}
	return c.JSON(out)
}

type PlanInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	BillingPeriod string  `json:"billing_period"`
	MaxInvoices   int     `json:"max_invoices"`
	MaxSeats      int     `json:"max_seats"`
	DisplayOrder  int     `json:"display_order"`
}

func CreatePlan(c *fiber.Ctx) error {
	input := new(PlanInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Plan name is required",
		})
	}
	switch input.BillingPeriod {
	case model.BillingPeriodMonthly, model.BillingPeriodYearly, model.BillingPeriodLifetime:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid billing period",
		})
	}

	plan := model.SubscriptionPlan{
		Name:          input.Name,
		Slug:          slug.Make(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		BillingPeriod: input.BillingPeriod,
		MaxInvoices:   input.MaxInvoices,
		MaxSeats:      input.MaxSeats,
		DisplayOrder:  input.DisplayOrder,
	}

	if err := database.DB.Create(&plan).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create plan",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(plan)
}

func UpdatePlan(c *fiber.Ctx) error {
	var plan model.SubscriptionPlan
	if err := database.DB.First(&plan, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Plan not found",
		})
	}

	input := new(PlanInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	updates := map[string]interface{}{
		"name":          input.Name,
		"description":   input.Description,
		"price":         input.Price,
		"max_invoices":  input.MaxInvoices,
		"max_seats":     input.MaxSeats,
		"display_order": input.DisplayOrder,
	}
	if err := database.DB.Model(&plan).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update plan",
		})
	}

	return c.JSON(plan)
}

type TestimonialInput struct {
	AuthorName  string `json:"author_name"`
	CompanyName string `json:"company_name"`
	Content     string `json:"content"`
	Rating      int    `json:"rating"`
	Published   *bool  `json:"published"`
}

func ListTestimonials(c *fiber.Ctx) error {
	var testimonials []model.Testimonial
	if err := database.DB.Where("published = ?", true).
		Order("display_order ASC").Find(&testimonials).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch testimonials",
		})
	}

	return c.JSON(testimonials)
}

func CreateTestimonial(c *fiber.Ctx) error {
	input := new(TestimonialInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.AuthorName == "" || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Author name and content are required",
		})
	}

	// New testimonials land at the end of the display order.
	var maxOrder int
	database.DB.Model(&model.Testimonial{}).
		Select("COALESCE(MAX(display_order), 0)").Scan(&maxOrder)

	testimonial := model.Testimonial{
		AuthorName:   input.AuthorName,
		CompanyName:  input.CompanyName,
		Content:      input.Content,
		Rating:       input.Rating,
		DisplayOrder: maxOrder + 1,
		Published:    true,
	}
	if input.Rating == 0 {
		testimonial.Rating = 5
	}

	if err := database.DB.Create(&testimonial).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create testimonial",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(testimonial)
}

func UpdateTestimonial(c *fiber.Ctx) error {
	var testimonial model.Testimonial
	if err := database.DB.First(&testimonial, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Testimonial not found",
		})
	}

	input := new(TestimonialInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	updates := map[string]interface{}{
		"author_name":  input.AuthorName,
		"company_name": input.CompanyName,
		"content":      input.Content,
		"rating":       input.Rating,
	}
	if input.Published != nil {
		updates["published"] = *input.Published
	}

	if err := database.DB.Model(&testimonial).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update testimonial",
		})
	}

	return c.JSON(testimonial)
}

func DeleteTestimonial(c *fiber.Ctx) error {
	var testimonial model.Testimonial
	if err := database.DB.First(&testimonial, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Testimonial not found",
		})
	}

	if err := database.DB.Delete(&testimonial).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete testimonial",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Testimonial deleted",
	})
}

type ReorderInput struct {
	FirstID  uint `json:"first_id"`
	SecondID uint `json:"second_id"`
}

// ReorderTestimonials swaps the display_order of two rows via two
// sequential updates. A crash between them leaves a duplicate order
// value; the next full reorder heals it.
func ReorderTestimonials(c *fiber.Ctx) error {
	input := new(ReorderInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var first, second model.Testimonial
	if err := database.DB.First(&first, input.FirstID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Testimonial not found",
		})
	}
	if err := database.DB.First(&second, input.SecondID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Testimonial not found",
		})
	}

	// Update writes the new value back into the struct, so both original
	// orders have to be captured before the first write.
	firstOrder, secondOrder := first.DisplayOrder, second.DisplayOrder
	if err := database.DB.Model(&first).Update("display_order", secondOrder).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not reorder testimonials",
		})
	}
	if err := database.DB.Model(&second).Update("display_order", firstOrder).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not reorder testimonials",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Testimonials reordered",
	})
}
