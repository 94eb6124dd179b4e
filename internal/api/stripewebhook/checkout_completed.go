package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"studyprep-app/database"
	"studyprep-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
	"gorm.io/gorm"
)

func handleCheckoutSessionCompleted(c *gin.Context, session *stripe.CheckoutSession) error {
	// Fetch full session with expansions
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
				stripe.String("line_items"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	userID, err := userIDFromSessionOrRef(fullSession)
	if err != nil {
		return err
	}

	// One-time (lifetime) purchases have no Stripe subscription.
	if fullSession.Mode == stripe.CheckoutSessionModePayment {
		return handleLifetimePurchase(fullSession, userID)
	}

	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}
	subscriptionID := fullSession.Subscription.ID

	subData, err := subscription.Get(subscriptionID, nil)
	if err != nil || subData == nil || subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return fmt.Errorf("failed to fetch subscription items: %w", err)
	}

	priceID := subData.Items.Data[0].Price.ID
	var plan billing.Plan
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}

	periodEnd := time.Unix(subData.CurrentPeriodEnd, 0)
	status := billing.NormalizeStripeStatus(string(subData.Status))

	return database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"plan_type":              plan.PlanType,
			"status":                 status,
			"stripe_subscription_id": subscriptionID,
			"current_period_end":     periodEnd,
		}
		if fullSession.Customer != nil && fullSession.Customer.ID != "" {
			updates["stripe_customer_id"] = fullSession.Customer.ID
		}

		if err := tx.Model(&billing.Subscription{}).
			Where("user_id = ?", userID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update subscription after checkout: %w", err)
		}

		return recordPayment(tx, userID, &plan, fullSession, &subscriptionID)
	})
}

func handleLifetimePurchase(fullSession *stripe.CheckoutSession, userID uint) error {
	if fullSession.LineItems == nil || len(fullSession.LineItems.Data) == 0 || fullSession.LineItems.Data[0].Price == nil {
		return errors.New("checkout session missing line items")
	}

	priceID := fullSession.LineItems.Data[0].Price.ID
	var plan billing.Plan
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"plan_type":              billing.PlanLifetime,
			"status":                 billing.StatusActive,
			"stripe_subscription_id": nil,
			"current_period_end":     nil,
		}
		if fullSession.Customer != nil && fullSession.Customer.ID != "" {
			updates["stripe_customer_id"] = fullSession.Customer.ID
		}

		if err := tx.Model(&billing.Subscription{}).
			Where("user_id = ?", userID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update subscription after purchase: %w", err)
		}

		return recordPayment(tx, userID, &plan, fullSession, nil)
	})
}

func recordPayment(tx *gorm.DB, userID uint, plan *billing.Plan, session *stripe.CheckoutSession, stripeSubID *string) error {
	payment := billing.Payment{
		UserID:               userID,
		PlanID:               &plan.ID,
		StripeSessionID:      session.ID,
		StripeSubscriptionID: stripeSubID,
		AmountUSD:            float64(session.AmountTotal) / 100.0,
		Status:               "paid",
	}
	if err := tx.Create(&payment).Error; err != nil {
		// Session IDs are unique; a second delivery of the same event
		// just means the payment is already recorded.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func userIDFromSessionOrRef(session *stripe.CheckoutSession) (uint, error) {
	userIDStr := ""
	if session.Subscription != nil && session.Subscription.Metadata != nil {
		userIDStr = session.Subscription.Metadata["user_id"]
	}
	if userIDStr == "" {
		userIDStr = session.ClientReferenceID
	}
	if userIDStr == "" {
		return 0, errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	uid64, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user_id %q: %w", userIDStr, err)
	}
	return uint(uid64), nil
}
