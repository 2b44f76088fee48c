package router

import (
	"goboard/internal/handlers"
	"goboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	topicHandler := handlers.NewTopicHandler()
	adminHandler := handlers.NewAdminHandler()

	// Public routes
	r.GET("/", topicHandler.Home)            // landing page
	r.GET("/forum", topicHandler.List)       // paginated topic listing
	r.GET("/topic/:id", topicHandler.Detail) // topic detail, counts the view

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/new_topic", topicHandler.ShowCreate)
		authorized.POST("/new_topic", topicHandler.Create)
		authorized.POST("/reply/:topic_id", topicHandler.AddReply)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/topics", adminHandler.ListTopics)
		admin.POST("/delete_user/:id", adminHandler.DeleteUser)
		admin.POST("/restore_user/:id", adminHandler.RestoreUser)
		admin.POST("/delete_topic/:id", adminHandler.DeleteTopic)
		admin.POST("/restore_topic/:id", adminHandler.RestoreTopic)
	}
}
