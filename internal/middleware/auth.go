package middleware

import (
	"net/http"

	"goboard/internal/db"
	"goboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser retrieves the session user and sets it on the context. Runs on
// every request so templates can render the login state.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil && user.IsActive {
				// Deactivated accounts lose their session on the next
				// request.
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in. The context user is what
// counts: a stale session whose account vanished or was deactivated is
// treated as logged out.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			session := sessions.Default(c)
			session.AddFlash("Please log in first")
			session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired gates the admin surface. Non-admins are sent back to the
// forum with a message rather than a bare denied status.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(CheckUserKey)
		if !exists || !u.(*models.User).IsAdmin {
			session := sessions.Default(c)
			session.AddFlash("Admin access required")
			session.Save()
			c.Redirect(http.StatusFound, "/forum")
			c.Abort()
			return
		}
		c.Next()
	}
}
