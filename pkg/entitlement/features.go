package entitlement

type PlanSlug string
type Feature string

const (
	FreePlan         PlanSlug = "free"
	StarterPlan      PlanSlug = "starter"
	ProfessionalPlan PlanSlug = "professional"
	LifetimePlan     PlanSlug = "lifetime"
)

const (
	TeamMembers    Feature = "team_members"
	CustomBranding Feature = "custom_branding"
	AIAccountant   Feature = "ai_accountant"
	EmailSupport   Feature = "email_support"
)

// FreeInvoiceLimit caps the total invoices an unpaid tenant may create.
const FreeInvoiceLimit = 300

type PlanLimits struct {
	MaxInvoices     int // -1 = unlimited
	MaxSeats        int
	AllowedFeatures map[Feature]bool
}

var PlanFeatures = map[PlanSlug]PlanLimits{
	FreePlan: {
		MaxInvoices: FreeInvoiceLimit,
		MaxSeats:    1,
		AllowedFeatures: map[Feature]bool{
			TeamMembers:    false,
			CustomBranding: false,
			AIAccountant:   true,
			EmailSupport:   false,
		},
	},
	StarterPlan: {
		MaxInvoices: -1,
		MaxSeats:    2,
		AllowedFeatures: map[Feature]bool{
			TeamMembers:    true,
			CustomBranding: false,
			AIAccountant:   true,
			EmailSupport:   true,
		},
	},
	ProfessionalPlan: {
		MaxInvoices: -1,
		MaxSeats:    5,
		AllowedFeatures: map[Feature]bool{
			TeamMembers:    true,
			CustomBranding: true,
			AIAccountant:   true,
			EmailSupport:   true,
		},
	},
}

// lifetimeTier is the feature tier a lifetime purchase resolves to.
// Configurable via LIFETIME_FEATURE_TIER; see SetLifetimeTier.
var lifetimeTier = ProfessionalPlan

func SetLifetimeTier(slug string) {
	if _, ok := PlanFeatures[PlanSlug(slug)]; ok {
		lifetimeTier = PlanSlug(slug)
	}
}

// EffectiveTier maps a plan slug to the tier its features come from.
func EffectiveTier(slug PlanSlug) PlanSlug {
	if slug == LifetimePlan {
		return lifetimeTier
	}
	if _, ok := PlanFeatures[slug]; ok {
		return slug
	}
	return FreePlan
}

func CanUseFeature(slug PlanSlug, feature Feature) bool {
	return PlanFeatures[EffectiveTier(slug)].AllowedFeatures[feature]
}

func GetPlanLimits(slug PlanSlug) PlanLimits {
	return PlanFeatures[EffectiveTier(slug)]
}
