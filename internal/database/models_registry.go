package database

import "github.com/TheAXPerience/ScrapPages/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Scrap{},
		&models.Comment{},
		&models.Tag{},
		&models.ScrapLike{},
		&models.CommentLike{},
	}
}
