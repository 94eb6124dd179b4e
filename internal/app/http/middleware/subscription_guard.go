package middleware

import (
	"net/http"

	"studyprep-app/database"
	"studyprep-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// RequirePaidAccess gates the study surface behind the entitlement
// predicate. Free-plan users get a 402 so the frontend can route them
// to checkout.
func RequirePaidAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		snapshot, err := billing.ResolveStatus(database.DB, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve subscription"})
			return
		}

		if !snapshot.HasPaidAccess {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":    "An active subscription is required",
				"planType": snapshot.PlanType,
				"status":   snapshot.Status,
			})
			return
		}

		c.Next()
	}
}
