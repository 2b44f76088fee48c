package handlers

import (
	"net/http"
	"strings"

	"goboard/internal/db"
	"goboard/internal/models"
	"goboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const genericLoginError = "Invalid username or password"

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{
		"Title":    "Register",
		"Username": "",
		"Email":    "",
	})
}

// ValidateRegistration checks every rule and returns all violations, not
// just the first one.
func ValidateRegistration(username, email, password, confirm string) []string {
	var errs []string

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		errs = append(errs, "Username must not be empty")
	}
	if email == "" {
		errs = append(errs, "Email must not be empty")
	}
	if password == "" {
		errs = append(errs, "Password must not be empty")
	} else if len(password) < 6 {
		errs = append(errs, "Password must be at least 6 characters")
	}
	if password != confirm {
		errs = append(errs, "Passwords do not match")
	}

	// Uniqueness spans deactivated accounts too; their names stay taken.
	if username != "" {
		var count int64
		db.DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
		if count > 0 {
			errs = append(errs, "Username is already taken")
		}
	}
	if email != "" {
		var count int64
		db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			errs = append(errs, "Email is already registered")
		}
	}

	return errs
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm")

	if errs := ValidateRegistration(username, email, password, confirm); len(errs) > 0 {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Title":    "Register",
			"Errors":   errs,
			"Username": username,
			"Email":    email,
		})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{
			"Title":    "Register",
			"Errors":   []string{"Registration failed, please try again"},
			"Username": username,
			"Email":    email,
		})
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// Unique index race: someone grabbed the name between check and
		// insert.
		Render(c, http.StatusConflict, "auth/register.html", gin.H{
			"Title":    "Register",
			"Errors":   []string{"Username or email is already taken"},
			"Username": username,
			"Email":    email,
		})
		return
	}

	Flash(c, "Registration successful, please log in")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Log in",
			"Error": genericLoginError,
		})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Log in",
			"Error": genericLoginError,
		})
		return
	}

	// Deactivated accounts get the same message so login probing can't
	// tell them apart from bad credentials.
	if !user.IsActive {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Log in",
			"Error": genericLoginError,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/forum")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
