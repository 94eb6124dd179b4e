package content

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("content not found")

// DeleteClassTree removes a class and everything under it, children
// before parents, inside the caller's transaction. Ordering keeps the
// cascade correct even when the storage backend has no FK cascade.
func DeleteClassTree(tx *gorm.DB, classID uint) error {
	var class Class
	if err := tx.Select("id").First(&class, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var deckIDs []uint
	if err := tx.Model(&Deck{}).Where("class_id = ?", classID).Pluck("id", &deckIDs).Error; err != nil {
		return err
	}

	if len(deckIDs) > 0 {
		var cardIDs []uint
		if err := tx.Model(&Flashcard{}).Where("deck_id IN ?", deckIDs).Pluck("id", &cardIDs).Error; err != nil {
			return err
		}
		if len(cardIDs) > 0 {
			if err := tx.Where("flashcard_id IN ?", cardIDs).Delete(&QuizQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", cardIDs).Delete(&Flashcard{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("id IN ?", deckIDs).Delete(&Deck{}).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&Class{}, classID).Error
}

// DeleteDeckTree removes a deck with its flashcards and questions.
func DeleteDeckTree(tx *gorm.DB, deckID uint) error {
	var deck Deck
	if err := tx.Select("id").First(&deck, deckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var cardIDs []uint
	if err := tx.Model(&Flashcard{}).Where("deck_id = ?", deckID).Pluck("id", &cardIDs).Error; err != nil {
		return err
	}
	if len(cardIDs) > 0 {
		if err := tx.Where("flashcard_id IN ?", cardIDs).Delete(&QuizQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", cardIDs).Delete(&Flashcard{}).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&Deck{}, deckID).Error
}

// DeleteFlashcardTree removes a flashcard with its questions.
func DeleteFlashcardTree(tx *gorm.DB, flashcardID uint) error {
	var card Flashcard
	if err := tx.Select("id").First(&card, flashcardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := tx.Where("flashcard_id = ?", flashcardID).Delete(&QuizQuestion{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Flashcard{}, flashcardID).Error
}
