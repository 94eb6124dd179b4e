package billing

import "strings"

// NormalizeStripeStatus maps a raw Stripe subscription status onto our
// internal status enum.
func NormalizeStripeStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrialing
	case "past_due", "unpaid", "incomplete":
		return StatusPastDue
	case "canceled", "incomplete_expired":
		return StatusCanceled
	default:
		return StatusInactive
	}
}
