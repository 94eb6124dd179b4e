package middleware

import (
	"errors"
	"net/http"

	"studyprep-app/internal/domain/audit"
	"studyprep-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AnonymousActor labels audit events with no resolvable identity.
const AnonymousActor = "anonymous"

// CheckIsAdmin resolves the stored user for an identity and reports
// whether it holds the admin role. No audit event, no error — callers
// that only probe (e.g. to toggle UI) use this.
func CheckIsAdmin(db *gorm.DB, userID uint) (*users.User, bool) {
	if userID == 0 {
		return nil, false
	}
	var user users.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, user.IsAdmin()
}

// RequireAdmin re-resolves the caller's user row on every request (no
// caching) and records exactly one audit event per decision before
// letting the request through or rejecting it.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			audit.Log(db, audit.EventAccessDenied, AnonymousActor, false,
				"admin route without session", map[string]interface{}{"path": c.FullPath()})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var user users.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				audit.Log(db, audit.EventAccessDenied, AnonymousActor, false,
					"admin route with unknown user", map[string]interface{}{"path": c.FullPath()})
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}

		if !user.IsAdmin() {
			audit.Log(db, audit.EventPermissionEscalationAttempt, user.Email, false,
				"non-admin attempted admin route", map[string]interface{}{
					"path":    c.FullPath(),
					"user_id": user.ID,
				})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		audit.Log(db, audit.EventAdminAccess, user.Email, true,
			"admin route access", map[string]interface{}{
				"path":    c.FullPath(),
				"user_id": user.ID,
			})

		c.Set("admin_user", &user)
		c.Next()
	}
}
