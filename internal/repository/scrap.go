package repository

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScrapRepository defines persistence operations for scraps.
type ScrapRepository interface {
	Create(ctx context.Context, scrap *models.Scrap, tags []string) error
	GetByID(ctx context.Context, id uint) (*models.Scrap, error)
	List(ctx context.Context, limit, offset int) ([]*models.Scrap, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Scrap, error)
	ListByTag(ctx context.Context, name string, limit, offset int) ([]*models.Scrap, error)
	Update(ctx context.Context, scrap *models.Scrap, tags []string) error
	Delete(ctx context.Context, id uint) error
}

type scrapRepository struct {
	db *gorm.DB
}

// NewScrapRepository returns a new ScrapRepository implementation.
func NewScrapRepository(db *gorm.DB) ScrapRepository {
	return &scrapRepository{db: db}
}

// Create inserts the scrap and its tags in one transaction.
func (r *scrapRepository) Create(ctx context.Context, scrap *models.Scrap, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Tags").Create(scrap).Error; err != nil {
			return err
		}
		return addTags(tx, scrap.ID, tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *scrapRepository) GetByID(ctx context.Context, id uint) (*models.Scrap, error) {
	ctx, span := startSpan(ctx, r.db, "ScrapRepository.GetByID", "scraps")
	defer span.End()

	var scrap models.Scrap
	if err := r.withDetails(r.db.WithContext(ctx)).First(&scrap, id).Error; err != nil {
		return nil, notFoundOr(err, "Scrap", id)
	}
	return &scrap, nil
}

func (r *scrapRepository) List(ctx context.Context, limit, offset int) ([]*models.Scrap, error) {
	ctx, span := startSpan(ctx, r.db, "ScrapRepository.List", "scraps")
	defer span.End()

	return r.find(r.db.WithContext(ctx), limit, offset)
}

func (r *scrapRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Scrap, error) {
	return r.find(r.db.WithContext(ctx).Where("scraps.user_id = ?", userID), limit, offset)
}

// ListByTag matches the stored tag name exactly.
func (r *scrapRepository) ListByTag(ctx context.Context, name string, limit, offset int) ([]*models.Scrap, error) {
	tagged := r.db.Model(&models.Tag{}).Select("scrap_id").Where("name = ?", name)
	return r.find(r.db.WithContext(ctx).Where("scraps.id IN (?)", tagged), limit, offset)
}

// Update saves title, description and time_updated and adds tags that are not
// already present. Existing tags are never removed here.
func (r *scrapRepository) Update(ctx context.Context, scrap *models.Scrap, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Scrap{}).Where("id = ?", scrap.ID).Updates(map[string]interface{}{
			"title":        scrap.Title,
			"description":  scrap.Description,
			"time_updated": scrap.TimeUpdated,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return addTags(tx, scrap.ID, tags)
	})
	if err != nil {
		return notFoundOr(err, "Scrap", scrap.ID)
	}
	return nil
}

// Delete removes the scrap with its likes, tags, comments and comment likes.
func (r *scrapRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := tx.Model(&models.Comment{}).Select("id").Where("scrap_id = ?", id)
		if err := tx.Where("comment_id IN (?)", comments).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("scrap_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("scrap_id = ?", id).Delete(&models.ScrapLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("scrap_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Scrap{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "Scrap", id)
	}
	return nil
}

func (r *scrapRepository) find(db *gorm.DB, limit, offset int) ([]*models.Scrap, error) {
	scraps := make([]*models.Scrap, 0)
	err := r.withDetails(db).
		Order("scraps.time_updated DESC").
		Order("scraps.id DESC").
		Scopes(paginate(limit, offset)).
		Find(&scraps).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return scraps, nil
}

// withDetails selects the distinct comment and like counts and loads the owner and tags.
func (r *scrapRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Scrap{}).
		Select("scraps.*, " +
			"(SELECT COUNT(DISTINCT comments.id) FROM comments WHERE comments.scrap_id = scraps.id) AS num_comments, " +
			"(SELECT COUNT(DISTINCT scrap_likes.user_id) FROM scrap_likes WHERE scrap_likes.scrap_id = scraps.id) AS num_likes").
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id ASC")
		})
}

// addTags inserts names not already on the scrap.
func addTags(tx *gorm.DB, scrapID uint, names []string) error {
	if len(names) == 0 {
		return nil
	}
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, models.Tag{Name: name, ScrapID: scrapID})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "scrap_id"}},
		DoNothing: true,
	}).Create(&tags).Error
}
