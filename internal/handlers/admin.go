package handlers

import (
	"net/http"

	"goboard/internal/db"
	"goboard/internal/middleware"
	"goboard/internal/models"
	"goboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// ListUsers shows every account, deactivated ones included.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	db.DB.Order("id ASC").Find(&users)

	Render(c, http.StatusOK, "admin/users.html", gin.H{
		"Title": "Users",
		"Users": users,
	})
}

// ListTopics shows every topic, soft-deleted ones included. This is the
// only surface that enumerates hidden topics.
func (h *AdminHandler) ListTopics(c *gin.Context) {
	var topics []models.Topic
	db.DB.Preload("User").Order("created_at DESC").Find(&topics)

	Render(c, http.StatusOK, "admin/topics.html", gin.H{
		"Title":  "Topics",
		"Topics": topics,
	})
}

// DeleteUser deactivates an account. Admins cannot deactivate themselves
// or each other.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	admin := c.MustGet(middleware.CheckUserKey).(*models.User)
	userID := utils.ParseID(c.Param("id"))

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		Flash(c, "User not found")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}

	if user.ID == admin.ID {
		Flash(c, "You cannot deactivate your own account")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}
	if user.IsAdmin {
		Flash(c, "Admin accounts cannot be deactivated")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}

	if err := db.DB.Model(&user).Update("is_active", false).Error; err != nil {
		Flash(c, "Failed to deactivate user")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}

	// Their topics drop out of the listing via the join filter.
	invalidateListing()

	Flash(c, "User "+user.Username+" deactivated")
	c.Redirect(http.StatusFound, "/admin/users")
}

func (h *AdminHandler) RestoreUser(c *gin.Context) {
	userID := utils.ParseID(c.Param("id"))

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		Flash(c, "User not found")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}

	if err := db.DB.Model(&user).Update("is_active", true).Error; err != nil {
		Flash(c, "Failed to restore user")
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}

	invalidateListing()

	Flash(c, "User "+user.Username+" restored")
	c.Redirect(http.StatusFound, "/admin/users")
}

// DeleteTopic soft-deletes: the topic leaves the forum listing but its
// permalink keeps working.
func (h *AdminHandler) DeleteTopic(c *gin.Context) {
	topicID := utils.ParseID(c.Param("id"))

	var topic models.Topic
	if err := db.DB.First(&topic, topicID).Error; err != nil {
		Flash(c, "Topic not found")
		c.Redirect(http.StatusFound, "/admin/topics")
		return
	}

	if err := db.DB.Model(&topic).Update("is_deleted", true).Error; err != nil {
		Flash(c, "Failed to delete topic")
		c.Redirect(http.StatusFound, "/admin/topics")
		return
	}

	invalidateListing()

	Flash(c, "Topic deleted")
	c.Redirect(http.StatusFound, "/admin/topics")
}

func (h *AdminHandler) RestoreTopic(c *gin.Context) {
	topicID := utils.ParseID(c.Param("id"))

	var topic models.Topic
	if err := db.DB.First(&topic, topicID).Error; err != nil {
		Flash(c, "Topic not found")
		c.Redirect(http.StatusFound, "/admin/topics")
		return
	}

	if err := db.DB.Model(&topic).Update("is_deleted", false).Error; err != nil {
		Flash(c, "Failed to restore topic")
		c.Redirect(http.StatusFound, "/admin/topics")
		return
	}

	invalidateListing()

	Flash(c, "Topic restored")
	c.Redirect(http.StatusFound, "/admin/topics")
}
