package repository

import (
	"context"
	"errors"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unusablePassword can never match a bcrypt comparison.
const unusablePassword = "!"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, id uint) (*models.Profile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and its profile in one transaction. The profile's
// display name starts as the username.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createWithProfile(tx, user)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewAlreadyExistsError("Username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func createWithProfile(tx *gorm.DB, user *models.User) error {
	if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
		return err
	}
	profile := &models.Profile{UserID: user.ID, DisplayName: user.Username}
	if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
		return err
	}
	user.Profile = profile
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Delete hands the user's scraps and comments to the sentinel account, drops
// their likes, then removes the profile and the user, all in one transaction.
// The removed profile is returned so the caller can clean up its picture.
func (r *userRepository) Delete(ctx context.Context, id uint) (*models.Profile, error) {
	var removed models.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if user.Username == models.SentinelUsername {
			return models.NewForbiddenError("The deleted-user account cannot be removed")
		}

		sentinel, err := sentinelUser(tx)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Scrap{}).Where("user_id = ?", id).Update("user_id", sentinel.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Update("user_id", sentinel.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ScrapLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Limit(1).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, notFoundOr(err, "User", id)
	}
	return &removed, nil
}

// sentinelUser gets or creates the "deleted" account. The unique username
// index decides a concurrent creation; the loser re-reads the winner's row.
func sentinelUser(tx *gorm.DB) (*models.User, error) {
	var sentinel models.User
	err := tx.Where("username = ?", models.SentinelUsername).Limit(1).Find(&sentinel).Error
	if err != nil {
		return nil, err
	}
	if sentinel.ID != 0 {
		return &sentinel, nil
	}

	sentinel = models.User{Username: models.SentinelUsername, Password: unusablePassword}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&sentinel)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var existing models.User
		if err := tx.Where("username = ?", models.SentinelUsername).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	profile := &models.Profile{UserID: sentinel.ID, DisplayName: models.SentinelUsername}
	if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
		return nil, err
	}
	return &sentinel, nil
}
