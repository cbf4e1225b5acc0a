package routes

import (
	"net/http"

	"dietvision/controllers"
	"dietvision/middlewares"
	"dietvision/services"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router hands to controllers.
type Deps struct {
	JWTSecret string
	Sessions  *services.SessionStore
	Auth      controllers.Authenticator
	Users     *services.UserService
	Feedback  *services.FeedbackService
	Food      *services.FoodService
	Chat      *services.ChatService
	Meals     *services.MealService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger())
	r.MaxMultipartMemory = 12 << 20

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	authCtl := controllers.NewAuthController(d.Auth, d.Users, d.Sessions, d.JWTSecret)
	userCtl := controllers.NewUserController(d.Users)
	feedbackCtl := controllers.NewFeedbackController(d.Feedback)
	foodCtl := controllers.NewFoodController(d.Food)
	chatCtl := controllers.NewChatController(d.Chat)
	dashCtl := controllers.NewDashboardController(d.Meals)

	requireAuth := middlewares.AuthMiddleware(d.JWTSecret, d.Sessions)

	auth := r.Group("/auth")
	{
		auth.GET("/google/login", authCtl.GoogleLogin)
		auth.GET("/google/callback", authCtl.GoogleCallback)
		auth.POST("/logout", requireAuth, authCtl.Logout)
	}

	user := r.Group("/user", requireAuth)
	{
		user.GET("/profile", userCtl.GetProfile)
		user.GET("/preferences", userCtl.GetPreferences)
		user.PUT("/preferences", userCtl.UpdatePreferences)
	}

	r.POST("/feedback", requireAuth, feedbackCtl.Submit)

	food := r.Group("/food", requireAuth)
	{
		food.POST("/analyze", foodCtl.Analyze)
		food.GET("/nutrition", foodCtl.Nutrition)
	}

	chat := r.Group("/chat", requireAuth)
	{
		chat.POST("", chatCtl.Send)
		chat.GET("/history", chatCtl.History)
		chat.DELETE("/history", chatCtl.Clear)
	}

	r.GET("/dashboard", requireAuth, dashCtl.Get)

	return r
}
