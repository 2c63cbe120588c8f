package models

import "time"

// File types a scrap can carry.
const (
	FileTypeImage = "image"
	FileTypeText  = "text"
)

// Scrap is a user-owned post built around one uploaded file.
type Scrap struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	Description   string    `gorm:"type:text;not null;default:''" json:"description"`
	FilePath      string    `gorm:"size:255;not null" json:"file_path"`
	FileType      string    `gorm:"size:8;not null" json:"file_type"`
	ThumbnailPath string    `gorm:"size:255;not null;default:''" json:"thumbnail_path"`
	TimePosted    time.Time `gorm:"not null" json:"time_posted"`
	TimeUpdated   time.Time `gorm:"not null;index" json:"time_updated"`
	Tags          []Tag     `gorm:"foreignKey:ScrapID" json:"tags"`

	NumComments int64 `gorm:"->;-:migration" json:"num_comments"`
	NumLikes    int64 `gorm:"->;-:migration" json:"num_likes"`
}

// Comment belongs to a scrap and optionally replies to another comment on it.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	ScrapID     uint      `gorm:"not null;index" json:"scrap_id"`
	ReplyToID   *uint     `gorm:"index" json:"reply_to_id"`
	TimePosted  time.Time `gorm:"not null" json:"time_posted"`
	TimeUpdated time.Time `gorm:"not null;index" json:"time_updated"`

	NumReplies int64 `gorm:"->;-:migration" json:"num_replies"`
	NumLikes   int64 `gorm:"->;-:migration" json:"num_likes"`
}

// Tag names are unique per scrap.
type Tag struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:64;not null;uniqueIndex:uidx_tag_name_scrap" json:"name"`
	ScrapID uint   `gorm:"not null;uniqueIndex:uidx_tag_name_scrap;index" json:"scrap_id"`
}

// ScrapLike is one membership in a scrap's liker set.
type ScrapLike struct {
	ScrapID   uint      `gorm:"primaryKey;autoIncrement:false" json:"scrap_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike is one membership in a comment's liker set.
type CommentLike struct {
	CommentID uint      `gorm:"primaryKey;autoIncrement:false" json:"comment_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
