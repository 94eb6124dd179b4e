package study

import (
	"time"

	"studyprep-app/internal/domain/content"
	"studyprep-app/internal/domain/users"
)

// Mastery statuses for a (user, flashcard) pair.
const (
	MasteryNew      = "new"
	MasteryLearning = "learning"
	MasteryMastered = "mastered"
)

// CardProgress is the per-user learning state of one flashcard. One
// row per (user, flashcard); created on the first rating and updated
// in place afterwards.
type CardProgress struct {
	ID          uint              `gorm:"primaryKey"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_card_progress_user_card,priority:1"`
	User        users.User        `gorm:"constraint:OnDelete:CASCADE"`
	FlashcardID uint              `gorm:"not null;uniqueIndex:idx_card_progress_user_card,priority:2"`
	Flashcard   content.Flashcard `gorm:"constraint:OnDelete:CASCADE"`

	MasteryStatus  string `gorm:"type:varchar(10);not null;default:'new'"`
	LastConfidence int
	TimesReviewed  int `gorm:"not null;default:0"`
	LastReviewedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserStats struct {
	ID     uint       `gorm:"primaryKey"`
	UserID uint       `gorm:"not null;uniqueIndex:idx_user_stats_user_id"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE"`

	TotalCardsStudied int `gorm:"not null;default:0"`
	CardsStudiedToday int `gorm:"not null;default:0"`
	StreakDays        int `gorm:"not null;default:0"`
	TotalStudySeconds int `gorm:"not null;default:0"`
	LastStudyDate     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
