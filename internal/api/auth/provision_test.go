package auth

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/study"
	"studyprep-app/internal/domain/users"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &billing.Subscription{}, &study.UserStats{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestCreateUserWithDefaults(t *testing.T) {
	db := openTestDB(t)

	user := users.User{Name: "Ana", Email: "ana@example.com", Role: users.RoleUser}
	if err := createUserWithDefaults(db, &user); err != nil {
		t.Fatalf("createUserWithDefaults failed: %v", err)
	}

	var sub billing.Subscription
	if err := db.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
		t.Fatalf("subscription row missing: %v", err)
	}
	if sub.PlanType != billing.PlanFree || sub.Status != billing.StatusActive {
		t.Fatalf("subscription = %s/%s, want free/active", sub.PlanType, sub.Status)
	}

	var stats study.UserStats
	if err := db.Where("user_id = ?", user.ID).First(&stats).Error; err != nil {
		t.Fatalf("stats row missing: %v", err)
	}
	if stats.TotalCardsStudied != 0 || stats.StreakDays != 0 {
		t.Fatalf("stats not zeroed: %+v", stats)
	}
}

func TestFindOrCreateUserByIdentityCreatesOnce(t *testing.T) {
	db := openTestDB(t)

	first, err := findOrCreateUserByIdentity(db, "google-sub-1", "gl@example.com", "G", "L")
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	if !first.IsVerified || first.AuthProvider != "google" {
		t.Fatalf("google user not provisioned as verified: %+v", first)
	}

	second, err := findOrCreateUserByIdentity(db, "google-sub-1", "gl@example.com", "G", "L")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second lookup created a new user: %d vs %d", second.ID, first.ID)
	}

	var count int64
	db.Model(&users.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("users = %d, want 1", count)
	}
}

func TestFindOrCreateUserByIdentityLinksExistingEmail(t *testing.T) {
	db := openTestDB(t)

	pw := "$2a$10$hash"
	local := users.User{Name: "Eli", Email: "eli@example.com", Password: &pw, AuthProvider: "local", Role: users.RoleUser}
	if err := createUserWithDefaults(db, &local); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	linked, err := findOrCreateUserByIdentity(db, "google-sub-2", "eli@example.com", "Eli", "")
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if linked.ID != local.ID {
		t.Fatalf("linked to wrong user: %d vs %d", linked.ID, local.ID)
	}
	if linked.GoogleSub == nil || *linked.GoogleSub != "google-sub-2" {
		t.Fatalf("google_sub not linked: %+v", linked.GoogleSub)
	}
	if !linked.IsVerified {
		t.Fatal("google sign-in should mark the account verified")
	}
}

func TestFindOrCreateUserByIdentityLoserOfRaceLoadsRow(t *testing.T) {
	db := openTestDB(t)

	// Simulate losing the provisioning race: the row appears between
	// the absence check and the insert. The duplicate-key fallback must
	// return the existing user instead of an error.
	winner, err := findOrCreateUserByIdentity(db, "google-sub-3", "race@example.com", "R", "")
	if err != nil {
		t.Fatalf("winner failed: %v", err)
	}

	s := "google-sub-3"
	dup := users.User{
		Name:         "R",
		Email:        "race@example.com",
		AuthProvider: "google",
		GoogleSub:    &s,
		Role:         users.RoleUser,
		IsVerified:   true,
	}
	if err := createUserWithDefaults(db, &dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate insert err = %v, want ErrDuplicatedKey", err)
	}

	again, err := findOrCreateUserByIdentity(db, "google-sub-3", "race@example.com", "R", "")
	if err != nil {
		t.Fatalf("post-race lookup failed: %v", err)
	}
	if again.ID != winner.ID {
		t.Fatalf("race produced two users: %d vs %d", again.ID, winner.ID)
	}
}
