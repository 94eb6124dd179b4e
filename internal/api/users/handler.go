package users

import (
	"errors"
	"net/http"

	"studyprep-app/database"
	"studyprep-app/internal/app/http/middleware"
	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/study"
	"studyprep-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	snapshot, err := billing.ResolveStatus(database.DB, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve subscription"})
		return
	}

	var stats study.UserStats
	if err := database.DB.Where("user_id = ?", user.ID).First(&stats).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	statsDTO := StatsDTO{
		TotalCardsStudied: stats.TotalCardsStudied,
		CardsStudiedToday: stats.CardsStudiedToday,
		StreakDays:        stats.StreakDays,
		TotalStudySeconds: stats.TotalStudySeconds,
	}
	if stats.LastStudyDate != nil {
		statsDTO.LastStudyDate = stats.LastStudyDate.Format("2006-01-02")
	}

	_, isAdmin := middleware.CheckIsAdmin(database.DB, user.ID)

	resp := MeResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Lastname:   user.Lastname,
			Role:       user.Role,
			IsVerified: user.IsVerified,
			IsAdmin:    isAdmin,
		},
		Subscription: snapshot,
		Stats:        statsDTO,
	}

	c.JSON(http.StatusOK, resp)
}

// GET /subscription-status
func GetSubscriptionStatus(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snapshot, err := billing.ResolveStatus(database.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve subscription"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GET /verify?token=...
func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var verif users.VerificationToken
	if err := database.DB.Where("token = ? AND (type = '' OR type IS NULL OR type = 'verify')", token).First(&verif).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", verif.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	database.DB.Delete(&verif)

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully. You can now log in."})
}
