package stripewebhooks

import (
	"fmt"
	"strconv"
	"time"

	"studyprep-app/database"
	"studyprep-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func handleSubscriptionUpdated(c *gin.Context, sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription missing id/items/price")
	}

	subscriptionID := sub.ID
	activePriceID := sub.Items.Data[0].Price.ID
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)
	status := billing.NormalizeStripeStatus(string(sub.Status))

	// Find the subscription row
	var row billing.Subscription
	userID := userIDFromMetadata(sub.Metadata)
	if userID != 0 {
		if err := database.DB.Where("user_id = ?", userID).First(&row).Error; err != nil {
			// acknowledge to avoid Stripe retries if user deleted
			return nil
		}
	} else {
		if err := database.DB.Where("stripe_subscription_id = ?", subscriptionID).First(&row).Error; err != nil {
			return nil
		}
	}

	// Lifetime access is never downgraded by recurring-subscription events.
	if row.PlanType == billing.PlanLifetime {
		return nil
	}

	// Map plan
	var plan billing.Plan
	if err := database.DB.Where("stripe_price_id = ?", activePriceID).First(&plan).Error; err != nil {
		return nil
	}

	updates := map[string]interface{}{
		"plan_type":              plan.PlanType,
		"status":                 status,
		"stripe_subscription_id": subscriptionID,
		"current_period_end":     periodEnd,
	}

	return database.DB.Model(&billing.Subscription{}).
		Where("id = ?", row.ID).
		Updates(updates).Error
}

func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	s := md["user_id"]
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}
