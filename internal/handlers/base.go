package handlers

import (
	"goboard/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user' and any
// pending flash messages. The injection happens on a copy of obj: List
// caches its render map, so writing per-request fields into obj directly
// would race between concurrent requests and leak one user's session
// into another's page.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	data := make(gin.H, len(obj)+3)
	for k, v := range obj {
		data[k] = v
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		data["CurrentUser"] = user
	} else {
		data["CurrentUser"] = nil
	}
	data["Flashes"] = PopFlashes(c)
	data["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, data)
}

// Flash queues a message to show after the next redirect.
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	session.Save()
}

// PopFlashes drains queued flash messages.
func PopFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Save()
	}
	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}
