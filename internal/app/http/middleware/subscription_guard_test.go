package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"studyprep-app/database"
	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/users"
)

func runPaidGuard(t *testing.T, db *gorm.DB, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/decks/1/flashcards", nil)
	if userID != 0 {
		c.Set("user_id", userID)
	}

	handler := RequirePaidAccess()
	handler(c)
	return w
}

func seedSubscribedUser(t *testing.T, db *gorm.DB, email, planType, status string) uint {
	t.Helper()
	user := users.User{Name: "Sub", Email: email, Role: users.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	sub := billing.Subscription{UserID: user.ID, PlanType: planType, Status: status}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	return user.ID
}

func TestRequirePaidAccessAllowsActivePlan(t *testing.T) {
	db := openTestDB(t)
	userID := seedSubscribedUser(t, db, "paid@example.com", billing.PlanProMonthly, billing.StatusActive)

	w := runPaidGuard(t, db, userID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequirePaidAccessAllowsCanceledLifetime(t *testing.T) {
	db := openTestDB(t)
	userID := seedSubscribedUser(t, db, "life@example.com", billing.PlanLifetime, billing.StatusCanceled)

	w := runPaidGuard(t, db, userID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for lifetime regardless of status", w.Code)
	}
}

func TestRequirePaidAccessRejectsFreePlan(t *testing.T) {
	db := openTestDB(t)
	userID := seedSubscribedUser(t, db, "free@example.com", billing.PlanFree, billing.StatusActive)

	w := runPaidGuard(t, db, userID)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}
}

func TestRequirePaidAccessRejectsPastDuePlan(t *testing.T) {
	db := openTestDB(t)
	userID := seedSubscribedUser(t, db, "due@example.com", billing.PlanProMonthly, billing.StatusPastDue)

	w := runPaidGuard(t, db, userID)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}
}

func TestRequirePaidAccessRejectsAnonymous(t *testing.T) {
	db := openTestDB(t)

	w := runPaidGuard(t, db, 0)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
