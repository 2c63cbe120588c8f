package repository

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"gorm.io/gorm"
)

// MsgTagExists is returned when a scrap already carries the tag.
const MsgTagExists = "Invalid; Tag already exists"

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	Add(ctx context.Context, tag *models.Tag) error
	Exists(ctx context.Context, scrapID uint, name string) (bool, error)
	Remove(ctx context.Context, scrapID uint, name string) (bool, error)
	ListByScrap(ctx context.Context, scrapID uint) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// Add inserts the tag. A unique index violation, including one from a
// concurrent add of the same name, is reported as ALREADY_EXISTS.
func (r *tagRepository) Add(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewAlreadyExistsError(MsgTagExists)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) Exists(ctx context.Context, scrapID uint, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("scrap_id = ? AND name = ?", scrapID, name).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *tagRepository) Remove(ctx context.Context, scrapID uint, name string) (bool, error) {
	res := r.db.WithContext(ctx).Where("scrap_id = ? AND name = ?", scrapID, name).Delete(&models.Tag{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *tagRepository) ListByScrap(ctx context.Context, scrapID uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := r.db.WithContext(ctx).Where("scrap_id = ?", scrapID).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
