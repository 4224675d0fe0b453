package billing

// Plan is a subscription tier in the static catalog. Limits use -1 for
// unlimited.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PriceMonthly int64    `json:"price_monthly"`
	PriceYearly  int64    `json:"price_yearly"`
	Currency     string   `json:"currency"`
	Features     []string `json:"features"`
	Limits       Limits   `json:"limits"`
	IsPopular    bool     `json:"is_popular,omitempty"`

	StripePriceIDMonthly string `json:"-"`
	StripePriceIDYearly  string `json:"-"`
}

type Limits struct {
	Jobs                 int `json:"jobs"`
	Users                int `json:"users"`
	ApplicationsPerMonth int `json:"applications_per_month"`
}

const PlanFree = "free"

var Plans = []Plan{
	{
		ID:           "starter",
		Name:         "Starter",
		Description:  "For small companies starting to grow.",
		PriceMonthly: 29,
		PriceYearly:  290,
		Currency:     "USD",
		Features:     []string{"5 active jobs", "200 applications/month", "1 user", "Basic career page"},
		Limits:       Limits{Jobs: 5, Users: 1, ApplicationsPerMonth: 200},

		StripePriceIDMonthly: "price_starter_monthly",
		StripePriceIDYearly:  "price_starter_yearly",
	},
	{
		ID:           "professional",
		Name:         "Professional",
		Description:  "For growing companies with bigger teams.",
		PriceMonthly: 79,
		PriceYearly:  790,
		Currency:     "USD",
		Features:     []string{"20 active jobs", "1,000 applications/month", "5 users", "Custom career page", "Email templates"},
		Limits:       Limits{Jobs: 20, Users: 5, ApplicationsPerMonth: 1000},
		IsPopular:    true,

		StripePriceIDMonthly: "price_professional_monthly",
		StripePriceIDYearly:  "price_professional_yearly",
	},
	{
		ID:           "business",
		Name:         "Business",
		Description:  "For companies with advanced recruiting needs.",
		PriceMonthly: 199,
		PriceYearly:  1990,
		Currency:     "USD",
		Features:     []string{"Unlimited jobs", "Unlimited applications", "Unlimited users", "Premium career page", "API and integrations"},
		Limits:       Limits{Jobs: -1, Users: -1, ApplicationsPerMonth: -1},

		StripePriceIDMonthly: "price_business_monthly",
		StripePriceIDYearly:  "price_business_yearly",
	},
}

// PlanByID finds a plan in the catalog, nil when unknown.
func PlanByID(id string) *Plan {
	for i := range Plans {
		if Plans[i].ID == id {
			return &Plans[i]
		}
	}
	return nil
}
