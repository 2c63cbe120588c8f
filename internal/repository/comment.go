package repository

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByScrap(ctx context.Context, scrapID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.withDetails(r.db.WithContext(ctx)).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByScrap returns every comment on the scrap, replies included, newest update first.
func (r *commentRepository) ListByScrap(ctx context.Context, scrapID uint) ([]*models.Comment, error) {
	ctx, span := startSpan(ctx, r.db, "CommentRepository.ListByScrap", "comments")
	defer span.End()

	comments := make([]*models.Comment, 0)
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("comments.scrap_id = ?", scrapID).
		Order("comments.time_updated DESC").
		Order("comments.id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// Update saves content and time_updated; the reply relationship never changes.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", comment.ID).Updates(map[string]interface{}{
		"content":      comment.Content,
		"time_updated": comment.TimeUpdated,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

// Delete removes the comment, every reply beneath it and all their likes.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Comment
		if err := tx.Select("id").First(&root, id).Error; err != nil {
			return err
		}

		ids, err := descendants(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return notFoundOr(err, "Comment", id)
	}
	return nil
}

// descendants walks the reply tree breadth first and returns root plus every reply.
func descendants(tx *gorm.DB, root uint) ([]uint, error) {
	all := []uint{root}
	frontier := []uint{root}
	seen := map[uint]bool{root: true}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("reply_to_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			all = append(all, id)
			frontier = append(frontier, id)
		}
	}
	return all, nil
}

func (r *commentRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Comment{}).
		Select("comments.*, " +
			"(SELECT COUNT(DISTINCT replies.id) FROM comments AS replies WHERE replies.reply_to_id = comments.id) AS num_replies, " +
			"(SELECT COUNT(DISTINCT comment_likes.user_id) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS num_likes").
		Preload("User")
}
