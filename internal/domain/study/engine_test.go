package study

import (
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyprep-app/internal/domain/content"
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

	// A single connection serializes transactions, which is what the
	// concurrency test needs from sqlite.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&users.User{},
		&content.Class{},
		&content.Deck{},
		&content.Flashcard{},
		&content.QuizQuestion{},
		&CardProgress{},
		&UserStats{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedCard(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()

	user := users.User{Name: "Dana", Email: "dana@example.com", Role: users.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	class := content.Class{Name: "CISSP"}
	if err := db.Create(&class).Error; err != nil {
		t.Fatalf("failed to create class: %v", err)
	}
	deck := content.Deck{ClassID: class.ID, Name: "Domain 1"}
	if err := db.Create(&deck).Error; err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}
	card := content.Flashcard{DeckID: deck.ID, Front: "What is CIA?", Back: "Confidentiality, integrity, availability"}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("failed to create flashcard: %v", err)
	}

	return user.ID, card.ID
}

func TestNextMastery(t *testing.T) {
	cases := []struct {
		current    string
		confidence int
		want       string
	}{
		{MasteryNew, 1, MasteryLearning},
		{MasteryNew, 2, MasteryLearning},
		{MasteryNew, 3, MasteryLearning},
		{MasteryNew, 4, MasteryLearning},
		{MasteryNew, 5, MasteryMastered},
		{MasteryLearning, 3, MasteryLearning},
		{MasteryLearning, 5, MasteryMastered},
		{MasteryMastered, 4, MasteryMastered},
		{MasteryMastered, 1, MasteryLearning},
		{"", 3, MasteryLearning},
	}

	for _, tc := range cases {
		got, err := NextMastery(tc.current, tc.confidence)
		if err != nil {
			t.Fatalf("NextMastery(%q, %d) returned error: %v", tc.current, tc.confidence, err)
		}
		if got == "" {
			t.Fatalf("NextMastery(%q, %d) returned empty status", tc.current, tc.confidence)
		}
		if got != tc.want {
			t.Fatalf("NextMastery(%q, %d) = %q, want %q", tc.current, tc.confidence, got, tc.want)
		}
	}
}

func TestNextMasteryRejectsOutOfRange(t *testing.T) {
	for _, confidence := range []int{0, -1, 6, 100} {
		if _, err := NextMastery(MasteryNew, confidence); err != ErrInvalidConfidence {
			t.Fatalf("NextMastery(new, %d) err = %v, want ErrInvalidConfidence", confidence, err)
		}
	}
}

func TestSubmitRatingCreatesProgressAndStats(t *testing.T) {
	db := openTestDB(t)
	userID, cardID := seedCard(t, db)

	result, err := SubmitRating(db, userID, cardID, 3, 30)
	if err != nil {
		t.Fatalf("SubmitRating failed: %v", err)
	}
	if result.MasteryStatus != MasteryLearning {
		t.Fatalf("mastery = %q, want learning", result.MasteryStatus)
	}
	if result.Stats.TotalCardsStudied != 1 {
		t.Fatalf("total cards = %d, want 1", result.Stats.TotalCardsStudied)
	}
	if result.Stats.CardsStudiedToday != 1 {
		t.Fatalf("cards today = %d, want 1", result.Stats.CardsStudiedToday)
	}
	if result.Stats.StreakDays != 1 {
		t.Fatalf("streak = %d, want 1", result.Stats.StreakDays)
	}
	if result.Stats.TotalStudySeconds != 30 {
		t.Fatalf("study seconds = %d, want 30", result.Stats.TotalStudySeconds)
	}

	var progress CardProgress
	if err := db.Where("user_id = ? AND flashcard_id = ?", userID, cardID).First(&progress).Error; err != nil {
		t.Fatalf("progress row not created: %v", err)
	}
	if progress.TimesReviewed != 1 {
		t.Fatalf("times reviewed = %d, want 1", progress.TimesReviewed)
	}
}

func TestSubmitRatingIsIdempotentForMastery(t *testing.T) {
	db := openTestDB(t)
	userID, cardID := seedCard(t, db)

	first, err := SubmitRating(db, userID, cardID, 4, 0)
	if err != nil {
		t.Fatalf("first rating failed: %v", err)
	}
	second, err := SubmitRating(db, userID, cardID, 4, 0)
	if err != nil {
		t.Fatalf("second rating failed: %v", err)
	}

	if first.MasteryStatus != second.MasteryStatus {
		t.Fatalf("mastery drifted: %q then %q", first.MasteryStatus, second.MasteryStatus)
	}
	// Stats still count both submissions.
	if second.Stats.TotalCardsStudied != 2 {
		t.Fatalf("total cards = %d, want 2", second.Stats.TotalCardsStudied)
	}
}

func TestMasteredCardDropsBackToLearning(t *testing.T) {
	db := openTestDB(t)
	userID, cardID := seedCard(t, db)

	result, err := SubmitRating(db, userID, cardID, 5, 0)
	if err != nil {
		t.Fatalf("rating 5 failed: %v", err)
	}
	if result.MasteryStatus != MasteryMastered {
		t.Fatalf("mastery = %q, want mastered", result.MasteryStatus)
	}

	result, err = SubmitRating(db, userID, cardID, 1, 0)
	if err != nil {
		t.Fatalf("rating 1 failed: %v", err)
	}
	if result.MasteryStatus != MasteryLearning {
		t.Fatalf("mastery = %q, want learning (not sticky mastered)", result.MasteryStatus)
	}
}

func TestSubmitRatingUnknownFlashcard(t *testing.T) {
	db := openTestDB(t)
	userID, _ := seedCard(t, db)

	if _, err := SubmitRating(db, userID, 9999, 3, 0); err != ErrFlashcardNotFound {
		t.Fatalf("err = %v, want ErrFlashcardNotFound", err)
	}
}

func TestSubmitRatingInvalidConfidence(t *testing.T) {
	db := openTestDB(t)
	userID, cardID := seedCard(t, db)

	if _, err := SubmitRating(db, userID, cardID, 0, 0); err != ErrInvalidConfidence {
		t.Fatalf("err = %v, want ErrInvalidConfidence", err)
	}
	if _, err := SubmitRating(db, userID, cardID, 6, 0); err != ErrInvalidConfidence {
		t.Fatalf("err = %v, want ErrInvalidConfidence", err)
	}

	// Nothing was written.
	var count int64
	db.Model(&CardProgress{}).Count(&count)
	if count != 0 {
		t.Fatalf("progress rows = %d, want 0", count)
	}
}

func TestStreakProgression(t *testing.T) {
	db := openTestDB(t)
	userID, cardID := seedCard(t, db)

	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day5 := day1.AddDate(0, 0, 4)

	// First study ever: streak starts at 1.
	result, err := submitRatingAt(db, userID, cardID, 3, 0, day1)
	if err != nil {
		t.Fatalf("day1 rating failed: %v", err)
	}
	if result.Stats.StreakDays != 1 {
		t.Fatalf("day1 streak = %d, want 1", result.Stats.StreakDays)
	}

	// Same day: unchanged, daily counter grows.
	result, err = submitRatingAt(db, userID, cardID, 3, 0, day1.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("same-day rating failed: %v", err)
	}
	if result.Stats.StreakDays != 1 {
		t.Fatalf("same-day streak = %d, want 1", result.Stats.StreakDays)
	}
	if result.Stats.CardsStudiedToday != 2 {
		t.Fatalf("same-day cards today = %d, want 2", result.Stats.CardsStudiedToday)
	}

	// Next day: streak increments, daily counter resets.
	result, err = submitRatingAt(db, userID, cardID, 3, 0, day2)
	if err != nil {
		t.Fatalf("day2 rating failed: %v", err)
	}
	if result.Stats.StreakDays != 2 {
		t.Fatalf("day2 streak = %d, want 2", result.Stats.StreakDays)
	}
	if result.Stats.CardsStudiedToday != 1 {
		t.Fatalf("day2 cards today = %d, want 1", result.Stats.CardsStudiedToday)
	}

	// Gap of several days: streak resets to 1.
	result, err = submitRatingAt(db, userID, cardID, 3, 0, day5)
	if err != nil {
		t.Fatalf("day5 rating failed: %v", err)
	}
	if result.Stats.StreakDays != 1 {
		t.Fatalf("day5 streak = %d, want 1", result.Stats.StreakDays)
	}
}

func TestConcurrentRatingsDoNotLoseIncrements(t *testing.T) {
	db := openTestDB(t)
	userID, cardID := seedCard(t, db)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := SubmitRating(db, userID, cardID, 3, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent rating failed: %v", err)
	}

	var stats UserStats
	if err := db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		t.Fatalf("stats row missing: %v", err)
	}
	if stats.TotalCardsStudied != n {
		t.Fatalf("total cards = %d, want %d (lost increments)", stats.TotalCardsStudied, n)
	}
	if stats.TotalStudySeconds != n {
		t.Fatalf("study seconds = %d, want %d", stats.TotalStudySeconds, n)
	}
}
