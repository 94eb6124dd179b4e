package stripewebhooks

import (
	"time"

	"studyprep-app/database"
	"studyprep-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func handleSubscriptionDeleted(c *gin.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)

	var row billing.Subscription
	userID := userIDFromMetadata(sub.Metadata)
	if userID != 0 {
		_ = database.DB.Where("user_id = ?", userID).First(&row).Error
	}
	if row.ID == 0 {
		_ = database.DB.Where("stripe_subscription_id = ?", sub.ID).First(&row).Error
	}
	if row.ID == 0 {
		return nil
	}

	if row.PlanType == billing.PlanLifetime {
		return nil
	}

	updates := map[string]interface{}{
		"status":             billing.StatusCanceled,
		"current_period_end": periodEnd,
	}

	return database.DB.Model(&billing.Subscription{}).
		Where("id = ?", row.ID).
		Updates(updates).Error
}
