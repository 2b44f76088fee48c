package models

import (
	"time"
)

// Attachment belongs to exactly one of Topic or Reply; the check
// constraint keeps the XOR honest at the database level.
type Attachment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	TopicID *uint  `gorm:"index;check:attachment_owner,(topic_id IS NULL) <> (reply_id IS NULL)" json:"topic_id"`
	Topic   *Topic `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"topic"`
	ReplyID *uint  `gorm:"index" json:"reply_id"`
	Reply   *Reply `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reply"`
	// FileName is the stored name under the upload dir, OrigName what the
	// user uploaded.
	FileName  string    `gorm:"not null" json:"file_name"`
	OrigName  string    `gorm:"not null" json:"orig_name"`
	CreatedAt time.Time `json:"created_at"`
}
