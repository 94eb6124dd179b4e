package study

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studyprep-app/internal/domain/content"
)

var (
	ErrInvalidConfidence = errors.New("confidence must be an integer between 1 and 5")
	ErrFlashcardNotFound = errors.New("flashcard not found")
)

// NextMastery computes the transition for one rating. Low confidence
// always drops back to learning so a mastered card is never sticky;
// mid confidence only moves a card out of "new".
func NextMastery(current string, confidence int) (string, error) {
	if confidence < 1 || confidence > 5 {
		return "", ErrInvalidConfidence
	}
	switch {
	case confidence <= 2:
		return MasteryLearning, nil
	case confidence <= 4:
		if current == MasteryNew || current == "" {
			return MasteryLearning, nil
		}
		return current, nil
	default:
		return MasteryMastered, nil
	}
}

type RatingResult struct {
	MasteryStatus string    `json:"mastery_status"`
	Stats         UserStats `json:"stats"`
}

// SubmitRating records one confidence rating for a flashcard. The
// progress upsert and the stats update commit together or not at all.
func SubmitRating(db *gorm.DB, userID, flashcardID uint, confidence, studySeconds int) (*RatingResult, error) {
	return submitRatingAt(db, userID, flashcardID, confidence, studySeconds, time.Now().UTC())
}

func submitRatingAt(db *gorm.DB, userID, flashcardID uint, confidence, studySeconds int, now time.Time) (*RatingResult, error) {
	if confidence < 1 || confidence > 5 {
		return nil, ErrInvalidConfidence
	}
	if studySeconds < 0 {
		studySeconds = 0
	}

	var result RatingResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var card content.Flashcard
		if err := tx.Select("id").First(&card, flashcardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFlashcardNotFound
			}
			return err
		}

		current := MasteryNew
		var progress CardProgress
		err := tx.Where("user_id = ? AND flashcard_id = ?", userID, flashcardID).First(&progress).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			current = progress.MasteryStatus
		}

		next, err := NextMastery(current, confidence)
		if err != nil {
			return err
		}

		row := CardProgress{
			UserID:         userID,
			FlashcardID:    flashcardID,
			MasteryStatus:  next,
			LastConfidence: confidence,
			TimesReviewed:  1,
			LastReviewedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "flashcard_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"mastery_status":   next,
				"last_confidence":  confidence,
				"times_reviewed":   gorm.Expr("times_reviewed + 1"),
				"last_reviewed_at": now,
				"updated_at":       now,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		if err := bumpStats(tx, userID, studySeconds, now); err != nil {
			return err
		}

		var stats UserStats
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			return err
		}

		result = RatingResult{MasteryStatus: next, Stats: stats}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// bumpStats applies one study event to the aggregate counters. The
// additive counters go through SQL expressions so concurrent submits
// from the same user never lose an increment.
func bumpStats(tx *gorm.DB, userID uint, studySeconds int, now time.Time) error {
	// Make sure the row exists; ignore the conflict if another
	// request created it first.
	seed := UserStats{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return err
	}

	var stats UserStats
	if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return err
	}

	today := truncateToDay(now)
	updates := map[string]interface{}{
		"total_cards_studied": gorm.Expr("total_cards_studied + 1"),
		"total_study_seconds": gorm.Expr("total_study_seconds + ?", studySeconds),
		"last_study_date":     today,
		"updated_at":          now,
	}

	switch gap := daysSinceLastStudy(stats.LastStudyDate, today); {
	case gap == 0:
		updates["cards_studied_today"] = gorm.Expr("cards_studied_today + 1")
	case gap == 1:
		updates["cards_studied_today"] = 1
		updates["streak_days"] = gorm.Expr("streak_days + 1")
	default:
		// First study ever, or the streak lapsed.
		updates["cards_studied_today"] = 1
		updates["streak_days"] = 1
	}

	return tx.Model(&UserStats{}).Where("user_id = ?", userID).Updates(updates).Error
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysSinceLastStudy returns 0 for same-day, 1 for yesterday, and a
// larger number (or -1 for never) otherwise.
func daysSinceLastStudy(last *time.Time, today time.Time) int {
	if last == nil {
		return -1
	}
	return int(today.Sub(truncateToDay(*last)).Hours() / 24)
}
