package study

import "studyprep-app/internal/domain/content"

type RateRequest struct {
	Confidence   int `json:"confidence"`
	StudySeconds int `json:"study_seconds"`
}

type ClassDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Decks       []DeckDTO `json:"decks"`
}

type DeckDTO struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Position      int    `json:"position"`
	TotalCards    int64  `json:"total_cards"`
	MasteredCards int64  `json:"mastered_cards"`
}

type FlashcardDTO struct {
	ID            uint   `json:"id"`
	DeckID        uint   `json:"deck_id"`
	Front         string `json:"front"`
	Back          string `json:"back"`
	MasteryStatus string `json:"mastery_status"`
}

type QuizQuestionDTO struct {
	ID             uint                           `json:"id"`
	Question       string                         `json:"question"`
	Options        content.QuestionOptions        `json:"options"`
	CorrectChoice  string                         `json:"correct_choice"`
	Justifications content.QuestionJustifications `json:"justifications"`
	Position       int                            `json:"position"`
}

// deckCounts carries per-deck totals keyed by deck id.
type deckCounts struct {
	Total    map[uint]int64
	Mastered map[uint]int64
}

func toClassDTO(cl content.Class, counts deckCounts) ClassDTO {
	decks := make([]DeckDTO, 0, len(cl.Decks))
	for _, d := range cl.Decks {
		decks = append(decks, DeckDTO{
			ID:            d.ID,
			Name:          d.Name,
			Description:   d.Description,
			Position:      d.Position,
			TotalCards:    counts.Total[d.ID],
			MasteredCards: counts.Mastered[d.ID],
		})
	}
	return ClassDTO{
		ID:          cl.ID,
		Name:        cl.Name,
		Description: cl.Description,
		Decks:       decks,
	}
}

func toQuizQuestionDTO(q content.QuizQuestion) QuizQuestionDTO {
	return QuizQuestionDTO{
		ID:             q.ID,
		Question:       q.Question,
		Options:        q.Options.Data(),
		CorrectChoice:  q.CorrectChoice,
		Justifications: q.Justifications.Data(),
		Position:       q.Position,
	}
}
