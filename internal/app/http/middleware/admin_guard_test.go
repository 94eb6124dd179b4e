package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyprep-app/internal/domain/audit"
	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/users"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &billing.Subscription{}, &audit.Event{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// runGuard sends one request through RequireAdmin with the given
// identity already set, the way AuthMiddleware would set it.
func runGuard(t *testing.T, db *gorm.DB, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	if userID != 0 {
		c.Set("user_id", userID)
	}

	handler := RequireAdmin(db)
	handler(c)
	return w
}

func auditEvents(t *testing.T, db *gorm.DB, eventType string) []audit.Event {
	t.Helper()
	var events []audit.Event
	if err := db.Where("event_type = ?", eventType).Find(&events).Error; err != nil {
		t.Fatalf("failed to load audit events: %v", err)
	}
	return events
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	db := openTestDB(t)
	admin := users.User{Name: "Root", Email: "root@example.com", Role: users.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	w := runGuard(t, db, admin.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	events := auditEvents(t, db, audit.EventAdminAccess)
	if len(events) != 1 {
		t.Fatalf("ADMIN_ACCESS events = %d, want exactly 1", len(events))
	}
	if events[0].Actor != admin.Email || !events[0].Success {
		t.Fatalf("event = %+v, want success by %s", events[0], admin.Email)
	}
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	db := openTestDB(t)
	user := users.User{Name: "Plain", Email: "plain@example.com", Role: users.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	w := runGuard(t, db, user.ID)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	events := auditEvents(t, db, audit.EventPermissionEscalationAttempt)
	if len(events) != 1 {
		t.Fatalf("PERMISSION_ESCALATION_ATTEMPT events = %d, want exactly 1", len(events))
	}
	if events[0].Actor != user.Email || events[0].Success {
		t.Fatalf("event = %+v, want failed attempt by %s", events[0], user.Email)
	}

	var total int64
	db.Model(&audit.Event{}).Count(&total)
	if total != 1 {
		t.Fatalf("total audit events = %d, want 1 per decision", total)
	}
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	db := openTestDB(t)

	w := runGuard(t, db, 0)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	events := auditEvents(t, db, audit.EventAccessDenied)
	if len(events) != 1 {
		t.Fatalf("ACCESS_DENIED events = %d, want exactly 1", len(events))
	}
	if events[0].Actor != AnonymousActor {
		t.Fatalf("actor = %q, want %q", events[0].Actor, AnonymousActor)
	}
}

func TestRequireAdminRejectsUnknownUser(t *testing.T) {
	db := openTestDB(t)

	w := runGuard(t, db, 4242)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	events := auditEvents(t, db, audit.EventAccessDenied)
	if len(events) != 1 {
		t.Fatalf("ACCESS_DENIED events = %d, want exactly 1", len(events))
	}
}

func TestCheckIsAdmin(t *testing.T) {
	db := openTestDB(t)
	admin := users.User{Name: "Root", Email: "root2@example.com", Role: users.RoleAdmin}
	plain := users.User{Name: "Plain", Email: "plain2@example.com", Role: users.RoleUser}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	if err := db.Create(&plain).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, ok := CheckIsAdmin(db, admin.ID); !ok {
		t.Fatal("admin user should probe as admin")
	}
	if _, ok := CheckIsAdmin(db, plain.ID); ok {
		t.Fatal("regular user should not probe as admin")
	}
	if _, ok := CheckIsAdmin(db, 0); ok {
		t.Fatal("zero identity should not probe as admin")
	}

	// Probing never writes audit events.
	var total int64
	db.Model(&audit.Event{}).Count(&total)
	if total != 0 {
		t.Fatalf("audit events = %d, want 0 from probes", total)
	}
}
