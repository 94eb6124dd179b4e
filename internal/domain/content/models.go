package content

import (
	"time"

	"gorm.io/datatypes"
)

type Class struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string

	Decks []Deck `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Deck struct {
	ID          uint   `gorm:"primaryKey"`
	ClassID     uint   `gorm:"not null;index"`
	Class       Class  `gorm:"constraint:OnDelete:CASCADE"`
	Name        string `gorm:"not null"`
	Description string
	Position    int `gorm:"not null;default:0"`

	Flashcards []Flashcard `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Flashcard struct {
	ID     uint `gorm:"primaryKey"`
	DeckID uint `gorm:"not null;index"`
	Deck   Deck `gorm:"constraint:OnDelete:CASCADE"`

	Front string `gorm:"type:text;not null"`
	Back  string `gorm:"type:text;not null"`

	Questions []QuizQuestion `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuestionOptions is the structured payload stored on a quiz question
// instead of ad-hoc serialized text. SchemaVersion guards future
// migrations of the shape.
type QuestionOptions struct {
	SchemaVersion int      `json:"schema_version"`
	Choices       []string `json:"choices"`
}

// QuestionJustifications carries the per-choice explanation shown
// after answering.
type QuestionJustifications struct {
	SchemaVersion int               `json:"schema_version"`
	ByChoice      map[string]string `json:"by_choice"`
	Summary       string            `json:"summary,omitempty"`
}

type QuizQuestion struct {
	ID          uint      `gorm:"primaryKey"`
	FlashcardID uint      `gorm:"not null;index"`
	Flashcard   Flashcard `gorm:"constraint:OnDelete:CASCADE"`

	Question       string                              `gorm:"type:text;not null"`
	Options        datatypes.JSONType[QuestionOptions] `gorm:"not null"`
	CorrectChoice  string                              `gorm:"type:varchar(10);not null"`
	Justifications datatypes.JSONType[QuestionJustifications]
	Position       int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
