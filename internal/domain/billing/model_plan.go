package billing

// Plan maps a Stripe price to one of our internal plan types. Acts as
// the allow-list for checkout and the lookup table for webhooks.
type Plan struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	PlanType      string `gorm:"type:varchar(20);not null"`
	PriceUSD      float64
	StripePriceID string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id"`
	Interval      string // "month" | "year" | "one_time"
}

// PlanTypeForInterval infers an internal plan type from a Stripe
// recurring interval. Fallback only; prefer the metadata value synced
// into the plans table.
func PlanTypeForInterval(interval string) string {
	switch interval {
	case "month":
		return PlanProMonthly
	case "year":
		return PlanProYearly
	case "one_time", "":
		return PlanLifetime
	default:
		return PlanFree
	}
}
