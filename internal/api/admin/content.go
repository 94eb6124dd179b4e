package admin

import (
	"errors"
	"net/http"
	"strconv"

	"studyprep-app/database"
	"studyprep-app/internal/domain/content"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

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
// Classes
// ------------------------------

func CreateClass(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := content.Class{Name: req.Name, Description: req.Description}
	if err := database.DB.Create(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": class.ID})
}

func UpdateClass(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	res := database.DB.Model(&content.Class{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update class"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func DeleteClass(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return content.DeleteClassTree(tx, id)
	})
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete class"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ------------------------------
// Decks
// ------------------------------

func CreateDeck(c *gin.Context) {
	classID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Position    *int   `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var class content.Class
		if err := tx.Select("id").First(&class, classID).Error; err != nil {
			return err
		}

		position := 0
		if req.Position != nil {
			position = *req.Position
		} else {
			var count int64
			if err := tx.Model(&content.Deck{}).Where("class_id = ?", classID).Count(&count).Error; err != nil {
				return err
			}
			position = int(count)
		}

		deck := content.Deck{
			ClassID:     classID,
			Name:        req.Name,
			Description: req.Description,
			Position:    position,
		}
		if err := tx.Create(&deck).Error; err != nil {
			return err
		}

		c.JSON(http.StatusCreated, gin.H{"id": deck.ID})
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deck"})
	}
}

func UpdateDeck(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	res := database.DB.Model(&content.Deck{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update deck"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func DeleteDeck(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return content.DeleteDeckTree(tx, id)
	})
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete deck"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PUT /admin/classes/:id/decks/reorder
// Renumbers every deck of the class 0..n-1 in the order given.
func ReorderDecks(c *gin.Context) {
	classID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		DeckIDs []uint `json:"deck_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.DeckIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deck_ids required"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var class content.Class
		if err := tx.Select("id").First(&class, classID).Error; err != nil {
			return err
		}

		for i, deckID := range req.DeckIDs {
			res := tx.Model(&content.Deck{}).
				Where("id = ? AND class_id = ?", deckID, classID).
				Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return content.ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Class or deck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder decks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ------------------------------
// Flashcards
// ------------------------------

func CreateFlashcard(c *gin.Context) {
	deckID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Front string `json:"front" binding:"required"`
		Back  string `json:"back" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var deck content.Deck
		if err := tx.Select("id").First(&deck, deckID).Error; err != nil {
			return err
		}

		card := content.Flashcard{DeckID: deckID, Front: req.Front, Back: req.Back}
		if err := tx.Create(&card).Error; err != nil {
			return err
		}

		c.JSON(http.StatusCreated, gin.H{"id": card.ID})
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deck not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create flashcard"})
	}
}

func UpdateFlashcard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Front *string `json:"front"`
		Back  *string `json:"back"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Front != nil {
		updates["front"] = *req.Front
	}
	if req.Back != nil {
		updates["back"] = *req.Back
	}

	res := database.DB.Model(&content.Flashcard{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update flashcard"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func DeleteFlashcard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return content.DeleteFlashcardTree(tx, id)
	})
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete flashcard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ------------------------------
// Quiz questions
// ------------------------------

type questionPayload struct {
	Question       string            `json:"question" binding:"required"`
	Choices        []string          `json:"choices" binding:"required"`
	CorrectChoice  string            `json:"correct_choice" binding:"required"`
	Justifications map[string]string `json:"justifications"`
	Summary        string            `json:"justification_summary"`
	Position       *int              `json:"position"`
}

func CreateQuizQuestion(c *gin.Context) {
	flashcardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req questionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Choices) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two choices required"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var card content.Flashcard
		if err := tx.Select("id").First(&card, flashcardID).Error; err != nil {
			return err
		}

		position := 0
		if req.Position != nil {
			position = *req.Position
		} else {
			var count int64
			if err := tx.Model(&content.QuizQuestion{}).Where("flashcard_id = ?", flashcardID).Count(&count).Error; err != nil {
				return err
			}
			position = int(count)
		}

		q := content.QuizQuestion{
			FlashcardID:   flashcardID,
			Question:      req.Question,
			CorrectChoice: req.CorrectChoice,
			Position:      position,
			Options: datatypes.NewJSONType(content.QuestionOptions{
				SchemaVersion: 1,
				Choices:       req.Choices,
			}),
			Justifications: datatypes.NewJSONType(content.QuestionJustifications{
				SchemaVersion: 1,
				ByChoice:      req.Justifications,
				Summary:       req.Summary,
			}),
		}
		if err := tx.Create(&q).Error; err != nil {
			return err
		}

		c.JSON(http.StatusCreated, gin.H{"id": q.ID})
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
	}
}

func UpdateQuizQuestion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req questionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Choices) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two choices required"})
		return
	}

	updates := map[string]interface{}{
		"question":       req.Question,
		"correct_choice": req.CorrectChoice,
		"options": datatypes.NewJSONType(content.QuestionOptions{
			SchemaVersion: 1,
			Choices:       req.Choices,
		}),
		"justifications": datatypes.NewJSONType(content.QuestionJustifications{
			SchemaVersion: 1,
			ByChoice:      req.Justifications,
			Summary:       req.Summary,
		}),
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	res := database.DB.Model(&content.QuizQuestion{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update question"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func DeleteQuizQuestion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	res := database.DB.Delete(&content.QuizQuestion{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete question"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PUT /admin/flashcards/:id/questions/reorder
func ReorderQuizQuestions(c *gin.Context) {
	flashcardID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		QuestionIDs []uint `json:"question_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.QuestionIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_ids required"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var card content.Flashcard
		if err := tx.Select("id").First(&card, flashcardID).Error; err != nil {
			return err
		}

		for i, questionID := range req.QuestionIDs {
			res := tx.Model(&content.QuizQuestion{}).
				Where("id = ? AND flashcard_id = ?", questionID, flashcardID).
				Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return content.ErrNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Flashcard or question not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder questions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
