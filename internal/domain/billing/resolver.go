package billing

import (
	"errors"

	"gorm.io/gorm"
)

type StatusSnapshot struct {
	HasPaidAccess bool   `json:"hasPaidAccess"`
	PlanType      string `json:"planType"`
	Status        string `json:"status"`
}

// ResolveStatus reports the entitlement for a user. A user without a
// subscription row reads as free/inactive; this path never creates
// the row (provisioning happens on the auth path).
func ResolveStatus(db *gorm.DB, userID uint) (StatusSnapshot, error) {
	var sub Subscription
	err := db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusSnapshot{HasPaidAccess: false, PlanType: PlanFree, Status: StatusInactive}, nil
		}
		return StatusSnapshot{}, err
	}

	return StatusSnapshot{
		HasPaidAccess: HasPaidAccess(&sub),
		PlanType:      sub.PlanType,
		Status:        sub.Status,
	}, nil
}
