package handlers_test

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"goboard/internal/db"
	"goboard/internal/middleware"
	"goboard/internal/models"
	"goboard/internal/router"
	"goboard/internal/services"
	"goboard/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

// setupServer wires a full engine against a fresh in-memory database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Named shared-memory DB so every pooled connection sees the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	db.DB = gdb
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		sqlDB.Close()
	})

	// The page cache and upload store are process-wide singletons.
	utils.GetCache().Purge()
	store, err := services.NewUploadStore(t.TempDir())
	require.NoError(t, err)
	services.SetUploadStore(store)

	r := gin.New()
	r.Use(sessions.Sessions("goboard_session", cookie.NewStore([]byte("test_secret"))))
	r.HTMLRender = loadTestTemplates()
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

func loadTestTemplates() multitemplate.Renderer {
	templatesDir := "../../web/templates"
	r := multitemplate.NewRenderer()

	layouts, _ := filepath.Glob(templatesDir + "/layouts/*.html")
	includes, _ := filepath.Glob(templatesDir + "/includes/*.html")

	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add":     func(a, b int) int { return a + b },
		"sub":     func(a, b int) int { return a - b },
		"timeAgo": func(t interface{}) string { return "" },
	}

	for _, view := range []string{
		"auth/login.html", "auth/register.html",
		"topic/list.html", "topic/detail.html", "topic/create.html",
		"admin/users.html", "admin/topics.html",
		"error.html",
	} {
		r.AddFromFilesFuncs(view, funcMap, assemble(templatesDir+"/views/"+view)...)
	}
	return r
}

func createUser(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		IsAdmin:  admin,
		IsActive: true,
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return &user
}

func createTopic(t *testing.T, user *models.User, title string) *models.Topic {
	t.Helper()
	topic := models.Topic{UserID: user.ID, Title: title, Content: "some content"}
	require.NoError(t, db.DB.Create(&topic).Error)
	return &topic
}

func doRequest(r *gin.Engine, method, path string, body io.Reader, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPage(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodGet, path, nil, "", cookies)
}

func postForm(r *gin.Engine, path string, values url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, path, strings.NewReader(values.Encode()),
		"application/x-www-form-urlencoded", cookies)
}

// postMultipart posts fields plus optional attachment files (name -> content).
func postMultipart(t *testing.T, r *gin.Engine, path string, fields map[string]string, files map[string]string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("attachments", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return doRequest(r, http.MethodPost, path, body, w.FormDataContentType(), cookies)
}

// login runs the real login flow and returns the session cookies.
func login(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	w := postForm(r, "/login", url.Values{
		"username": {username},
		"password": {testPassword},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code, "login for %s should redirect", username)
	return w.Result().Cookies()
}
