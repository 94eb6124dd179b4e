package database

import (
	"fmt"
	"log"
	"os"

	"studyprep-app/internal/domain/audit"
	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/content"
	"studyprep-app/internal/domain/study"
	"studyprep-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	// Required for UUID generation
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("❌ Failed to enable pgcrypto extension:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}

// Migrate runs AutoMigrate for every domain model. Split out so tests
// can run the same schema against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},

		// billing
		&billing.Plan{},
		&billing.Subscription{},
		&billing.Payment{},

		// content
		&content.Class{},
		&content.Deck{},
		&content.Flashcard{},
		&content.QuizQuestion{},

		// study
		&study.CardProgress{},
		&study.UserStats{},

		// audit
		&audit.Event{},
	)
}
