package seed

import (
	"log"

	"gorm.io/gorm"

	"billdesk/internal/model"
)

func SeedSubscriptionPlans(db *gorm.DB) {
	plans := []model.SubscriptionPlan{
		{
			Name:          "Free",
			Slug:          "free",
			Description:   "For businesses just getting started",
			Price:         0,
			BillingPeriod: model.BillingPeriodMonthly,
			MaxInvoices:   300,
			MaxSeats:      1,
			DisplayOrder:  1,
		},
		{
			Name:          "Starter",
			Slug:          "starter",
			Description:   "Unlimited invoices for growing businesses",
			Price:         299,
			BillingPeriod: model.BillingPeriodMonthly,
			MaxInvoices:   -1,
			MaxSeats:      2,
			DisplayOrder:  2,
		},
		{
			Name:          "Professional",
			Slug:          "professional",
			Description:   "Team seats, custom branding and priority support",
			Price:         4999,
			BillingPeriod: model.BillingPeriodYearly,
			MaxInvoices:   -1,
			MaxSeats:      5,
			DisplayOrder:  3,
		},
		{
			Name:          "Lifetime",
			Slug:          "lifetime",
			Description:   "Pay once, invoice forever",
			Price:         14999,
			BillingPeriod: model.BillingPeriodLifetime,
			MaxInvoices:   -1,
			MaxSeats:      5,
			DisplayOrder:  4,
		},
	}

	for _, plan := range plans {
		result := db.FirstOrCreate(&plan, model.SubscriptionPlan{Slug: plan.Slug})
		if result.Error != nil {
			log.Printf("Error creating plan %s: %v", plan.Name, result.Error)
		}
	}

	log.Println("Subscription plans seeded successfully!")
}

func SeedTestimonials(db *gorm.DB) {
	testimonials := []model.Testimonial{
		{
			AuthorName:   "Priya Sharma",
			CompanyName:  "Sharma Textiles",
			Content:      "GST invoices in under a minute. My accountant finally stopped calling me.",
			Rating:       5,
			DisplayOrder: 1,
		},
		{
			AuthorName:   "Arjun Mehta",
			CompanyName:  "Mehta Hardware",
			Content:      "We moved three shops onto BillDesk. The team seats made the switch painless.",
			Rating:       5,
			DisplayOrder: 2,
		},
		{
			AuthorName:   "Kavita Rao",
			CompanyName:  "Rao Consulting",
			Content:      "The lifetime plan paid for itself in the first quarter.",
			Rating:       4,
			DisplayOrder: 3,
		},
	}

	for _, testimonial := range testimonials {
		result := db.FirstOrCreate(&testimonial, model.Testimonial{AuthorName: testimonial.AuthorName})
		if result.Error != nil {
			log.Printf("Error creating testimonial by %s: %v", testimonial.AuthorName, result.Error)
		}
	}

	log.Println("Testimonials seeded successfully!")
}
