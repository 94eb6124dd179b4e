package billing

import (
	"time"

	"studyprep-app/internal/domain/users"
)

// Plan types
const (
	PlanFree       = "free"
	PlanProMonthly = "pro_monthly"
	PlanProYearly  = "pro_yearly"
	PlanLifetime   = "lifetime"
)

// Subscription statuses
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
	StatusTrialing = "trialing"
	StatusInactive = "inactive"
)

type Subscription struct {
	ID     uint       `gorm:"primaryKey"`
	UserID uint       `gorm:"not null;uniqueIndex:idx_subscriptions_user_id"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE"`

	PlanType string `gorm:"type:varchar(20);not null;default:'free'"`
	Status   string `gorm:"type:varchar(20);not null;default:'active'"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_subscriptions_stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_subscriptions_stripe_subscription_id"`
	CurrentPeriodEnd     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPaidAccess is the single entitlement predicate. Lifetime purchases
// keep access no matter what status Stripe last reported; recurring
// plans only count while active.
func HasPaidAccess(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	if sub.PlanType == PlanLifetime {
		return true
	}
	if sub.PlanType == PlanProMonthly || sub.PlanType == PlanProYearly {
		return sub.Status == StatusActive
	}
	return false
}

// DefaultSubscription returns the free/active row created alongside a
// new user.
func DefaultSubscription(userID uint) Subscription {
	return Subscription{
		UserID:   userID,
		PlanType: PlanFree,
		Status:   StatusActive,
	}
}
