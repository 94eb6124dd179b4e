package users

import "studyprep-app/internal/domain/billing"

type UserDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Lastname   string `json:"lastname"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	IsAdmin    bool   `json:"is_admin"`
}

type StatsDTO struct {
	TotalCardsStudied int    `json:"total_cards_studied"`
	CardsStudiedToday int    `json:"cards_studied_today"`
	StreakDays        int    `json:"streak_days"`
	TotalStudySeconds int    `json:"total_study_seconds"`
	LastStudyDate     string `json:"last_study_date,omitempty"`
}

type MeResponse struct {
	User         UserDTO                `json:"user"`
	Subscription billing.StatusSnapshot `json:"subscription"`
	Stats        StatsDTO               `json:"stats"`
}
