// Package models contains data structures for the application's domain models.
package models

import "time"

// SentinelUsername is the reserved account that inherits content from deleted users.
const SentinelUsername = "deleted"

// User is an account. Usernames are stored lower-case.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Email     string    `gorm:"size:254;not null;default:''" json:"email"`
	FirstName string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"size:150;not null;default:''" json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	Profile   *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// DefaultPicturePath is served when a profile has no stored picture.
const DefaultPicturePath = "profile_pictures/default.jpg"

// Profile is the one-to-one public extension of a User.
type Profile struct {
	UserID      uint   `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	DisplayName string `gorm:"size:50;not null" json:"display_name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	PicturePath string `gorm:"size:255;not null;default:''" json:"picture_path"`

	NumScraps int64 `gorm:"->;-:migration" json:"num_scraps"`
}

// PictureKey returns the storage key of the picture, falling back to the default asset.
func (p *Profile) PictureKey() string {
	if p.PicturePath == "" {
		return DefaultPicturePath
	}
	return p.PicturePath
}
