package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"billdesk/internal/controller"
	"billdesk/internal/middleware"
	"billdesk/internal/model"
	"billdesk/pkg/config"
	"billdesk/pkg/cron"
	"billdesk/pkg/database"
	"billdesk/pkg/email"
	"billdesk/pkg/entitlement"
	"billdesk/pkg/payment"
	"billdesk/pkg/seed"
	"billdesk/pkg/utils/jwt"
	"billdesk/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/request-reset", controller.RequestPasswordReset)
	auth.Post("/reset-password", controller.ResetPassword)

	// Public marketing content
	api.Get("/testimonials", controller.ListTestimonials)

	// Plan catalog
	subscriptions := api.Group("/subscriptions")
	subscriptions.Get("/plans", controller.ListPlans)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)
	protected.Get("/entitlement", controller.GetEntitlement)

	subProtected := subscriptions.Use(middleware.AuthMiddleware())
	subProtected.Get("/my", controller.GetMySubscription)
	subProtected.Post("/cancel-subscription", controller.CancelSubscription)

	// Customer routes
	customers := protected.Group("/customers")
	customers.Post("/", controller.CreateCustomer)
	customers.Get("/", controller.ListCustomers)
	customers.Get("/:id", controller.GetCustomer)
	customers.Put("/:id", controller.UpdateCustomer)
	customers.Delete("/:id", controller.DeleteCustomer)

	// Invoice routes with the free-tier limit gate on creation
	invoices := protected.Group("/invoices")
	invoices.Post("/", middleware.CheckInvoiceLimit(), controller.CreateInvoice)
	invoices.Get("/", controller.ListInvoices)
	invoices.Get("/:id", controller.GetInvoice)
	invoices.Put("/:id/status", controller.UpdateInvoiceStatus)
	invoices.Delete("/:id", controller.DeleteInvoice)
	invoices.Get("/:id/document", controller.RenderInvoiceDocument)

	// Payment routes
	payments := api.Group("/payments")
	payments.Post("/checkout", middleware.AuthMiddleware(), controller.CreateCheckoutOrder)
	payments.Post("/verify", middleware.AuthMiddleware(), controller.VerifyPayment)
	payments.Post("/guest-verify", controller.VerifyGuestPayment)
	payments.Post("/webhook", controller.HandlePaymentWebhook)

	// Team routes behind the team feature gate
	team := protected.Group("/team")
	team.Get("/members", controller.ListMembers)
	team.Post("/invite", middleware.CheckFeatureAccess(entitlement.TeamMembers), controller.InviteMember)
	team.Post("/members/:id/resend", controller.ResendInvite)
	team.Delete("/members/:id", controller.RemoveMember)
	team.Put("/members/:id/role", controller.ChangeMemberRole)
	team.Post("/invites/:token/accept", controller.AcceptInvite)
	team.Post("/addons", controller.CreateAddonOrder)
	team.Post("/addons/verify", controller.VerifyAddonPayment)

	// Dashboard routes
	dashboard := api.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/stats", controller.GetDashboardStats)

	// Settings routes
	settings := api.Group("/settings", middleware.AuthMiddleware())
	settings.Get("/profile", controller.GetProfile)
	settings.Put("/profile", controller.UpdateProfile)
	settings.Get("/invoice", controller.GetInvoiceSettings)
	settings.Put("/invoice", controller.UpdateInvoiceSettings)
	settings.Post("/logo", middleware.CheckFeatureAccess(entitlement.CustomBranding), controller.UploadLogo)

	// AI Accountant
	api.Post("/assistant/chat", middleware.AuthMiddleware(), controller.ChatWithAssistant)

	// Admin back-office
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.Get("/users", controller.ListUsers)
	admin.Post("/plans", controller.CreatePlan)
	admin.Put("/plans/:id", controller.UpdatePlan)
	admin.Post("/testimonials", controller.CreateTestimonial)
	admin.Put("/testimonials/:id", controller.UpdateTestimonial)
	admin.Delete("/testimonials/:id", controller.DeleteTestimonial)
	admin.Post("/testimonials/reorder", controller.ReorderTestimonials)
}

func main() {
	cfg := config.Load()

	jwt.Init(cfg.JWT.Secret)
	entitlement.SetLifetimeTier(cfg.Billing.LifetimeTier)
	controller.InitPaymentController(payment.NewGateway(cfg.Razorpay))

	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		if err := email.InitEmailService(apiKey); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, emails are disabled")
	}

	if err := storage.InitStorage(); err != nil {
		log.Printf("Storage unavailable, logo uploads disabled: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.SubscriptionPlan{},
		&model.UserSubscription{},
		&model.Payment{},
		&model.ActivityLog{},
		&model.TeamMember{},
		&model.TeamMemberAddon{},
		&model.Customer{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.InvoiceSettings{},
		&model.Testimonial{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedSubscriptionPlans(database.DB)
	seed.SeedTestimonials(database.DB)

	cron.InitRenewalReminderCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
