package admin

import (
	"net/http"
	"time"

	"studyprep-app/database"
	"studyprep-app/internal/domain/audit"
	"studyprep-app/internal/domain/billing"
	"studyprep-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Lastname   string `json:"lastname"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	PlanType   string `json:"plan_type"`
	Status     string `json:"status"`
}

type AdminPayment struct {
	ID         uint    `json:"id"`
	Email      string  `json:"email"`
	PlanName   *string `json:"plan_name,omitempty"`
	AmountUSD  float64 `json:"amount_usd"`
	Status     string  `json:"status"`
	InvoiceID  *string `json:"invoice_id,omitempty"`
	ReceiptURL *string `json:"receipt_url,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers    int            `json:"total_users"`
	TotalRevenue  float64        `json:"total_revenue"`
	RecentRevenue float64        `json:"recent_revenue"`
	UsersPerPlan  map[string]int `json:"users_per_plan"`
}

func AdminDashboard(c *gin.Context) {
	var stats AdminStats

	var totalUsers int64
	var totalRevenue float64
	var recentRevenue float64

	database.DB.Model(&users.User{}).Count(&totalUsers)
	database.DB.Model(&billing.Payment{}).Where("status = ?", "paid").Select("COALESCE(SUM(amount_usd), 0)").Scan(&totalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
		Select("COALESCE(SUM(amount_usd), 0)").Scan(&recentRevenue)

	stats.TotalUsers = int(totalUsers)
	stats.TotalRevenue = totalRevenue
	stats.RecentRevenue = recentRevenue

	type PlanCount struct {
		PlanType string
		Count    int
	}
	var counts []PlanCount

	database.DB.
		Table("subscriptions").
		Select("plan_type, COUNT(id) as count").
		Group("plan_type").
		Scan(&counts)

	stats.UsersPerPlan = map[string]int{}
	for _, pc := range counts {
		stats.UsersPerPlan[pc.PlanType] = pc.Count
	}

	c.JSON(http.StatusOK, stats)
}

func ListAllUsers(c *gin.Context) {
	var allUsers []users.User
	if err := database.DB.Order("id ASC").Find(&allUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var subs []billing.Subscription
	if err := database.DB.Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}
	subByUser := make(map[uint]billing.Subscription, len(subs))
	for _, s := range subs {
		subByUser[s.UserID] = s
	}

	adminUsers := make([]AdminUser, 0, len(allUsers))
	for _, u := range allUsers {
		planType := billing.PlanFree
		status := billing.StatusInactive
		if s, ok := subByUser[u.ID]; ok {
			planType = s.PlanType
			status = s.Status
		}

		adminUsers = append(adminUsers, AdminUser{
			ID:         u.ID,
			Name:       u.Name,
			Lastname:   u.Lastname,
			Email:      u.Email,
			Role:       u.Role,
			IsVerified: u.IsVerified,
			PlanType:   planType,
			Status:     status,
		})
	}

	c.JSON(http.StatusOK, adminUsers)
}

func GetUserDetails(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
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

	var payments []billing.Payment
	if err := database.DB.Preload("Plan").Where("user_id = ?", userID).Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"subscription": snapshot,
		"payments":     payments,
	})
}

func ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	err := database.DB.Preload("User").Preload("Plan").Order("created_at DESC").Find(&payments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	var result []AdminPayment
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		result = append(result, AdminPayment{
			ID:         p.ID,
			Email:      p.User.Email,
			PlanName:   planName,
			AmountUSD:  p.AmountUSD,
			Status:     p.Status,
			InvoiceID:  p.InvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

// PUT /admin/users/:id/role — the only path that mutates a role.
func SetUserRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != users.RoleUser && req.Role != users.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be 'user' or 'admin'"})
		return
	}

	res := database.DB.Model(&users.User{}).Where("id = ?", userID).Update("role", req.Role)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	actor := AnonymousActorEmail(c)
	audit.Log(database.DB, "ROLE_CHANGE", actor, true, "admin changed user role",
		map[string]interface{}{"target_user_id": userID, "new_role": req.Role})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /admin/audit-events
func ListAuditEvents(c *gin.Context) {
	var events []audit.Event
	q := database.DB.Order("created_at DESC").Limit(200)

	if eventType := c.Query("type"); eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}

	if err := q.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// AnonymousActorEmail pulls the acting admin's email from context,
// falling back to "anonymous" when absent.
func AnonymousActorEmail(c *gin.Context) string {
	if email := c.GetString("email"); email != "" {
		return email
	}
	return "anonymous"
}
