package auth

import (
	"errors"

	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/study"
	"studyprep-app/internal/domain/users"

	"gorm.io/gorm"
)

// createUserWithDefaults inserts the user together with its free
// subscription and empty stats rows. One transaction: a user never
// exists without its companion rows.
func createUserWithDefaults(db *gorm.DB, user *users.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		sub := billing.DefaultSubscription(user.ID)
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		stats := study.UserStats{UserID: user.ID}
		return tx.Create(&stats).Error
	})
}

// findOrCreateUserByIdentity is the lazy-provisioning path for
// external identities. Two concurrent first requests can both observe
// "absent"; the unique constraints on email/google_sub arbitrate, and
// the loser falls back to a lookup.
func findOrCreateUserByIdentity(db *gorm.DB, sub, email, firstName, lastName string) (users.User, error) {
	var user users.User

	// 1) Try by google_sub
	if sub != "" {
		if err := db.Where("google_sub = ?", sub).First(&user).Error; err == nil {
			return user, nil
		}
	}

	// 2) Try by email, then link google_sub if missing
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		if user.GoogleSub == nil {
			s := sub
			user.GoogleSub = &s
			user.AuthProvider = "google"
			user.IsVerified = true
			if err := db.Save(&user).Error; err != nil {
				return users.User{}, err
			}
		}
		return user, nil
	}

	// 3) Create new user (google accounts arrive pre-verified)
	s := sub
	user = users.User{
		Name:         firstNonEmpty(firstName, email),
		Lastname:     lastName,
		Email:        email,
		Password:     nil,
		AuthProvider: "google",
		GoogleSub:    &s,
		Role:         users.RoleUser,
		IsVerified:   true,
	}

	if err := createUserWithDefaults(db, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: the row exists now, load it.
			var existing users.User
			if lookupErr := db.Where("google_sub = ? OR email = ?", sub, email).First(&existing).Error; lookupErr == nil {
				return existing, nil
			}
		}
		return users.User{}, err
	}
	return user, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
