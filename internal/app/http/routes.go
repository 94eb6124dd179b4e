package routes

import (
	"studyprep-app/database"
	adminapi "studyprep-app/internal/api/admin"
	authapi "studyprep-app/internal/api/auth"
	"studyprep-app/internal/api/billing"
	stripewebhooks "studyprep-app/internal/api/stripewebhook"
	studyapi "studyprep-app/internal/api/study"
	"studyprep-app/internal/api/users"
	"studyprep-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/plans", billing.ListPlans)
	public.GET("/verify", users.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.GET("/subscription-status", users.GetSubscriptionStatus)
	auth.GET("/payments", billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", billing.CreateCheckoutSession)
	auth.POST("/billing-portal", billing.CreateBillingPortal)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.GET("/classes", studyapi.ListClasses)

	// Study surface requires paid access
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequirePaidAccess())
	subscribed.GET("/decks/:id/flashcards", studyapi.ListDeckFlashcards)
	subscribed.GET("/flashcards/:id/questions", studyapi.ListFlashcardQuestions)
	subscribed.POST("/flashcards/:id/rate", studyapi.SubmitRating)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin(database.DB))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/users/:id", adminapi.GetUserDetails)
	admin.PUT("/users/:id/role", adminapi.SetUserRole)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/audit-events", adminapi.ListAuditEvents)
	admin.POST("/sync-plans", billing.SyncPlansFromStripe)

	admin.POST("/classes", adminapi.CreateClass)
	admin.PUT("/classes/:id", adminapi.UpdateClass)
	admin.DELETE("/classes/:id", adminapi.DeleteClass)
	admin.POST("/classes/:id/decks", adminapi.CreateDeck)
	admin.PUT("/classes/:id/decks/reorder", adminapi.ReorderDecks)

	admin.PUT("/decks/:id", adminapi.UpdateDeck)
	admin.DELETE("/decks/:id", adminapi.DeleteDeck)
	admin.POST("/decks/:id/flashcards", adminapi.CreateFlashcard)

	admin.PUT("/flashcards/:id", adminapi.UpdateFlashcard)
	admin.DELETE("/flashcards/:id", adminapi.DeleteFlashcard)
	admin.POST("/flashcards/:id/questions", adminapi.CreateQuizQuestion)
	admin.PUT("/flashcards/:id/questions/reorder", adminapi.ReorderQuizQuestions)

	admin.PUT("/questions/:id", adminapi.UpdateQuizQuestion)
	admin.DELETE("/questions/:id", adminapi.DeleteQuizQuestion)
}
