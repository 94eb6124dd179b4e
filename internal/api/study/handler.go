package study

import (
	"errors"
	"net/http"
	"strconv"

	"studyprep-app/database"
	"studyprep-app/internal/domain/content"
	"studyprep-app/internal/domain/study"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ------------------------------
// GET /classes
// ------------------------------
func ListClasses(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var classes []content.Class
	err := database.DB.
		Preload("Decks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("name ASC").
		Find(&classes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load classes"})
		return
	}

	counts, err := loadDeckCounts(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress"})
		return
	}

	out := make([]ClassDTO, 0, len(classes))
	for _, cl := range classes {
		out = append(out, toClassDTO(cl, counts))
	}
	c.JSON(http.StatusOK, out)
}

// loadDeckCounts aggregates card totals and the caller's mastered
// counts per deck in two grouped queries.
func loadDeckCounts(userID uint) (deckCounts, error) {
	type row struct {
		DeckID uint
		N      int64
	}

	counts := deckCounts{
		Total:    make(map[uint]int64),
		Mastered: make(map[uint]int64),
	}

	var totals []row
	err := database.DB.Model(&content.Flashcard{}).
		Select("deck_id, COUNT(*) AS n").
		Group("deck_id").
		Scan(&totals).Error
	if err != nil {
		return counts, err
	}
	for _, r := range totals {
		counts.Total[r.DeckID] = r.N
	}

	var mastered []row
	err = database.DB.Model(&study.CardProgress{}).
		Select("flashcards.deck_id AS deck_id, COUNT(*) AS n").
		Joins("JOIN flashcards ON flashcards.id = card_progresses.flashcard_id").
		Where("card_progresses.user_id = ? AND card_progresses.mastery_status = ?", userID, study.MasteryMastered).
		Group("flashcards.deck_id").
		Scan(&mastered).Error
	if err != nil {
		return counts, err
	}
	for _, r := range mastered {
		counts.Mastered[r.DeckID] = r.N
	}

	return counts, nil
}

// ------------------------------
// GET /decks/:id/flashcards
// ------------------------------
func ListDeckFlashcards(c *gin.Context) {
	deckID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var deck content.Deck
	if err := database.DB.First(&deck, deckID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
		return
	}

	var cards []content.Flashcard
	if err := database.DB.Where("deck_id = ?", deck.ID).Order("id ASC").Find(&cards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load flashcards"})
		return
	}

	// One query for the caller's progress across the whole deck.
	var progress []study.CardProgress
	cardIDs := make([]uint, 0, len(cards))
	for _, card := range cards {
		cardIDs = append(cardIDs, card.ID)
	}
	if len(cardIDs) > 0 {
		if err := database.DB.Where("user_id = ? AND flashcard_id IN ?", userID, cardIDs).Find(&progress).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress"})
			return
		}
	}
	masteryByCard := make(map[uint]string, len(progress))
	for _, p := range progress {
		masteryByCard[p.FlashcardID] = p.MasteryStatus
	}

	out := make([]FlashcardDTO, 0, len(cards))
	for _, card := range cards {
		mastery := masteryByCard[card.ID]
		if mastery == "" {
			mastery = study.MasteryNew
		}
		out = append(out, FlashcardDTO{
			ID:            card.ID,
			DeckID:        card.DeckID,
			Front:         card.Front,
			Back:          card.Back,
			MasteryStatus: mastery,
		})
	}

	c.JSON(http.StatusOK, gin.H{"deck": deck.Name, "flashcards": out})
}

// ------------------------------
// GET /flashcards/:id/questions
// ------------------------------
func ListFlashcardQuestions(c *gin.Context) {
	cardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var card content.Flashcard
	if err := database.DB.First(&card, cardID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
		return
	}

	var questions []content.QuizQuestion
	if err := database.DB.Where("flashcard_id = ?", card.ID).Order("position ASC").Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load questions"})
		return
	}

	out := make([]QuizQuestionDTO, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuizQuestionDTO(q))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "questions": out})
}

// ------------------------------
// POST /flashcards/:id/rate
// ------------------------------
func SubmitRating(c *gin.Context) {
	cardID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	result, err := study.SubmitRating(database.DB, userID, cardID, req.Confidence, req.StudySeconds)
	if err != nil {
		switch {
		case errors.Is(err, study.ErrInvalidConfidence):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, study.ErrFlashcardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record rating"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
