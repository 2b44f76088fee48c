package handlers

import (
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"goboard/internal/db"
	"goboard/internal/middleware"
	"goboard/internal/models"
	"goboard/internal/services"
	"goboard/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const topicsPerPage = 20

type TopicHandler struct{}

func NewTopicHandler() *TopicHandler {
	return &TopicHandler{}
}

// fillReplyCounts batch-fills the reply count for a page of topics.
func fillReplyCounts(topics []models.Topic) {
	if len(topics) == 0 {
		return
	}

	topicIDs := make([]uint, len(topics))
	for i, t := range topics {
		topicIDs[i] = t.ID
	}

	type CountResult struct {
		TopicID uint
		Count   int
	}
	var results []CountResult
	db.DB.Model(&models.Reply{}).
		Select("topic_id, COUNT(*) as count").
		Where("topic_id IN ?", topicIDs).
		Group("topic_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.TopicID] = r.Count
	}

	for i := range topics {
		topics[i].ReplyCount = countMap[topics[i].ID]
	}
}

// visibleTopics scopes a query to what the public listing shows: not
// soft-deleted, owner still active.
func visibleTopics() *gorm.DB {
	return db.DB.Model(&models.Topic{}).
		Select("topics.*").
		Joins("JOIN users ON users.id = topics.user_id").
		Where("topics.is_deleted = ?", false).
		Where("users.is_active = ?", true)
}

// invalidateListing drops every cached forum page. A mutation can change
// the contents of any page, not just the first.
func invalidateListing() {
	utils.GetCache().Purge()
}

// List renders the paginated forum listing. Soft-deleted topics and topics
// of deactivated owners are excluded here; their permalinks stay live.
func (h *TopicHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	cacheKey := fmt.Sprintf("forum:page:%d", page)
	if cachedData := utils.GetCache().Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "topic/list.html", hData)
			return
		}
	}

	offset := (page - 1) * topicsPerPage

	var total int64
	visibleTopics().Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(topicsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var topics []models.Topic
	visibleTopics().Preload("User").
		Order("topics.created_at DESC").
		Limit(topicsPerPage).
		Offset(offset).
		Find(&topics)

	fillReplyCounts(topics)

	renderData := gin.H{
		"Topics":      topics,
		"Title":       "Forum",
		"CurrentPage": page,
		"TotalPages":  totalPages,
	}

	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "topic/list.html", renderData)
}

// ReplyView pairs a reply with its rendered body and attachments.
type ReplyView struct {
	models.Reply
	ContentHTML template.HTML
	Floor       int
	Attachments []models.Attachment
}

// Detail renders a single topic. Soft-deleted topics stay reachable by id
// and the view counter always ticks; listings are the only hidden surface.
func (h *TopicHandler) Detail(c *gin.Context) {
	id := utils.ParseID(c.Param("id"))

	var topic models.Topic
	if err := db.DB.Preload("User").First(&topic, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Topic not found")
		return
	}

	// One increment per view request, no dedup.
	db.DB.Model(&models.Topic{}).Where("id = ?", topic.ID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	topic.Views++

	var replies []models.Reply
	db.DB.Preload("User").Where("topic_id = ?", topic.ID).
		Order("created_at ASC").Find(&replies)

	var topicAttachments []models.Attachment
	db.DB.Where("topic_id = ?", topic.ID).Find(&topicAttachments)

	replyAttachments := make(map[uint][]models.Attachment)
	if len(replies) > 0 {
		replyIDs := make([]uint, len(replies))
		for i, r := range replies {
			replyIDs[i] = r.ID
		}
		var attachments []models.Attachment
		db.DB.Where("reply_id IN ?", replyIDs).Find(&attachments)
		for _, a := range attachments {
			replyAttachments[*a.ReplyID] = append(replyAttachments[*a.ReplyID], a)
		}
	}

	replyViews := make([]ReplyView, len(replies))
	for i, r := range replies {
		replyViews[i] = ReplyView{
			Reply:       r,
			ContentHTML: utils.RenderMarkdown(r.Content),
			Floor:       i + 1,
			Attachments: replyAttachments[r.ID],
		}
	}

	Render(c, http.StatusOK, "topic/detail.html", gin.H{
		"Topic":        topic,
		"TopicContent": utils.RenderMarkdown(topic.Content),
		"Attachments":  topicAttachments,
		"Replies":      replyViews,
		"Title":        topic.Title,
	})
}

func (h *TopicHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "topic/create.html", gin.H{
		"Title":      "New topic",
		"TopicTitle": "",
		"Content":    "",
	})
}

// stageUploads stages every file in the "attachments" field. On any
// failure the already-staged files are discarded.
func stageUploads(c *gin.Context) ([]*services.StagedFile, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil // plain form post, no attachments
	}

	store := services.GetUploadStore()
	var staged []*services.StagedFile
	for _, fh := range form.File["attachments"] {
		f, err := store.Stage(fh)
		if err != nil {
			store.Discard(staged)
			return nil, err
		}
		if f != nil {
			staged = append(staged, f)
		}
	}
	return staged, nil
}

// finalizeUploads moves committed attachments out of staging. The rows are
// already durable at this point, so a rename failure is only logged.
func finalizeUploads(staged []*services.StagedFile) {
	store := services.GetUploadStore()
	for _, f := range staged {
		if err := store.Finalize(f); err != nil {
			log.Printf("Failed to finalize attachment %s: %v", f.FileName, err)
		}
	}
}

func (h *TopicHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := strings.TrimSpace(c.PostForm("title"))
	content := strings.TrimSpace(c.PostForm("content"))

	var errs []string
	if title == "" {
		errs = append(errs, "Title must not be empty")
	}
	if content == "" {
		errs = append(errs, "Content must not be empty")
	}
	if len(errs) > 0 {
		Render(c, http.StatusBadRequest, "topic/create.html", gin.H{
			"Title":      "New topic",
			"Errors":     errs,
			"TopicTitle": title,
			"Content":    content,
		})
		return
	}

	staged, err := stageUploads(c)
	if err != nil {
		Render(c, http.StatusInternalServerError, "topic/create.html", gin.H{
			"Title":      "New topic",
			"Errors":     []string{"Failed to save attachment"},
			"TopicTitle": title,
			"Content":    content,
		})
		return
	}

	topic := models.Topic{
		UserID:  user.ID,
		Title:   title,
		Content: content,
	}

	// Topic and attachment rows commit or roll back together; files only
	// leave staging after the commit.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&topic).Error; err != nil {
			return err
		}
		for _, f := range staged {
			attachment := models.Attachment{
				UserID:   user.ID,
				TopicID:  &topic.ID,
				FileName: f.FileName,
				OrigName: f.OrigName,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		services.GetUploadStore().Discard(staged)
		Render(c, http.StatusInternalServerError, "topic/create.html", gin.H{
			"Title":      "New topic",
			"Errors":     []string{"Failed to create topic"},
			"TopicTitle": title,
			"Content":    content,
		})
		return
	}

	finalizeUploads(staged)
	invalidateListing()

	Flash(c, "Topic created")
	c.Redirect(http.StatusFound, fmt.Sprintf("/topic/%d", topic.ID))
}

func (h *TopicHandler) AddReply(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	topicID := utils.ParseID(c.Param("topic_id"))

	var topic models.Topic
	if err := db.DB.First(&topic, topicID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Topic not found")
		return
	}

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		Flash(c, "Reply must not be empty")
		c.Redirect(http.StatusFound, fmt.Sprintf("/topic/%d", topic.ID))
		return
	}

	staged, err := stageUploads(c)
	if err != nil {
		Flash(c, "Failed to save attachment")
		c.Redirect(http.StatusFound, fmt.Sprintf("/topic/%d", topic.ID))
		return
	}

	reply := models.Reply{
		TopicID: topic.ID,
		UserID:  user.ID,
		Content: content,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		for _, f := range staged {
			attachment := models.Attachment{
				UserID:   user.ID,
				ReplyID:  &reply.ID,
				FileName: f.FileName,
				OrigName: f.OrigName,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		services.GetUploadStore().Discard(staged)
		Flash(c, "Failed to post reply")
		c.Redirect(http.StatusFound, fmt.Sprintf("/topic/%d", topic.ID))
		return
	}

	finalizeUploads(staged)
	// Reply counts show on the listing.
	invalidateListing()

	c.Redirect(http.StatusFound, fmt.Sprintf("/topic/%d", topic.ID))
}

// Home is the landing page: the first page of the forum listing.
func (h *TopicHandler) Home(c *gin.Context) {
	h.List(c)
}
