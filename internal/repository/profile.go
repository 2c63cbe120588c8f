package repository

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("users.username = ?", username).
		First(&profile).Error
	if err != nil {
		return nil, notFoundOr(err, "Profile", username)
	}
	return &profile, nil
}

// List returns every profile ordered by username.
func (r *profileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	profiles := make([]*models.Profile, 0)
	if err := r.withDetails(r.db.WithContext(ctx)).Order("users.username ASC").Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", profile.UserID).Updates(map[string]interface{}{
		"display_name": profile.DisplayName,
		"description":  profile.Description,
		"picture_path": profile.PicturePath,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profile.UserID)
	}
	return nil
}

func (r *profileRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Profile{}).
		Select("profiles.*, (SELECT COUNT(*) FROM scraps WHERE scraps.user_id = profiles.user_id) AS num_scraps").
		Joins("JOIN users ON users.id = profiles.user_id").
		Preload("User")
}
