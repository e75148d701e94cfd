package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"socialspace-api/config"
	"socialspace-api/controllers"
	"socialspace-api/middleware"
	"socialspace-api/repositories"
	"socialspace-api/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService) {
	store := repositories.NewStore(db)

	// Services
	hub := services.NewHub()
	dispatcher := services.NewNotificationService(store.Notifications())
	relationships := services.NewRelationshipService(store, dispatcher)
	chats := services.NewChatSession(store, dispatcher, hub)

	// Controllers
	authController := controllers.NewAuthController(store, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(store, relationships)
	friendController := controllers.NewFriendController(relationships)
	notificationController := controllers.NewNotificationController(dispatcher)
	chatController := controllers.NewChatController(chats, hub, cfg.JWTSecret)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Websocket endpoint. Authenticates via the token query parameter inside
	// the handler, so it lives outside the auth middleware.
	v1.GET("/chats/:chat_id/ws", chatController.Connect)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.GET("/:user_id", userController.GetUser)
			users.POST("/:user_id/follow", userController.FollowUser)
			users.DELETE("/:user_id/follow", userController.UnfollowUser)
			users.GET("/followers", userController.GetFollowers)
			users.GET("/following", userController.GetFollowing)
		}

		// Friend routes
		friends := protected.Group("/friends")
		{
			friends.GET("/", friendController.GetFriends)
			friends.POST("/requests/:user_id", friendController.SendFriendRequest)
			friends.GET("/requests/incoming", friendController.GetIncomingRequests)
			friends.GET("/requests/outgoing", friendController.GetOutgoingRequests)
			friends.PUT("/requests/:request_id/accept", friendController.AcceptFriendRequest)
			friends.PUT("/requests/:request_id/reject", friendController.RejectFriendRequest)
			friends.DELETE("/requests/:request_id", friendController.CancelFriendRequest)
			friends.DELETE("/:friendship_id", friendController.RemoveFriend)
			friends.GET("/status/:user_id", friendController.GetFriendshipStatus)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", notificationController.GetNotifications)
			notifications.GET("/stats", notificationController.GetStats)
			notifications.PUT("/:notification_id/read", notificationController.MarkRead)
			notifications.PUT("/read-all", notificationController.MarkAllRead)
		}

		// Chat routes
		chatGroup := protected.Group("/chats")
		{
			chatGroup.GET("/", chatController.GetChats)
			chatGroup.POST("/with/:user_id", chatController.StartChat)
			chatGroup.GET("/:chat_id/messages", chatController.GetMessages)
			chatGroup.POST("/:chat_id/messages", chatController.SendMessage)
			chatGroup.PUT("/:chat_id/read", chatController.MarkChatRead)
			chatGroup.PUT("/messages/:message_id", chatController.EditMessage)
			chatGroup.DELETE("/messages/:message_id", chatController.DeleteMessage)
		}
	}
}
