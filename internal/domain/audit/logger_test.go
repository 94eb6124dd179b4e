package audit

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestLogAppendsEvent(t *testing.T) {
	db := openTestDB(t)

	Log(db, EventAdminAccess, "root@example.com", true, "admin route access",
		map[string]interface{}{"path": "/api/admin/dashboard"})

	var events []Event
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("failed to load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].ID == "" {
		t.Fatal("event ID was not assigned")
	}
	if events[0].EventType != EventAdminAccess || events[0].Actor != "root@example.com" {
		t.Fatalf("event = %+v", events[0])
	}
	if !events[0].Success {
		t.Fatal("success flag lost")
	}
}

func TestLogSwallowsWriteFailures(t *testing.T) {
	db := openTestDB(t)

	// Break the sink; the guarded operation must not notice.
	if err := db.Migrator().DropTable(&Event{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	Log(db, EventAccessDenied, "anonymous", false, "admin route without session", nil)
}
