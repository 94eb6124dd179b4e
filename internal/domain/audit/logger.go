package audit

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Log appends one audit event. A failed write must never fail the
// operation being audited, so errors are printed and swallowed here.
func Log(db *gorm.DB, eventType, actor string, success bool, context string, metadata map[string]interface{}) {
	event := Event{
		EventType: eventType,
		Actor:     actor,
		Success:   success,
		Context:   context,
		Metadata:  datatypes.JSONMap(metadata),
	}

	if err := db.Create(&event).Error; err != nil {
		fmt.Println("⚠️ Failed to write audit event:", eventType, err)
	}
}
