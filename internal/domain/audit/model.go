package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Security event types recorded by the admin gate.
const (
	EventAdminAccess                 = "ADMIN_ACCESS"
	EventAccessDenied                = "ACCESS_DENIED"
	EventPermissionEscalationAttempt = "PERMISSION_ESCALATION_ATTEMPT"
)

// Event is append-only: the application never updates or deletes rows.
type Event struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	EventType string `gorm:"type:varchar(40);not null;index"`
	Actor     string `gorm:"not null;index"`
	Success   bool
	Context   string
	Metadata  datatypes.JSONMap
	CreatedAt time.Time
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
