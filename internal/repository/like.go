package repository

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository maintains the scrap and comment liker sets. Every method
// reports whether the set changed; the join-table primary keys settle races.
type LikeRepository interface {
	AddScrapLike(ctx context.Context, scrapID, userID uint) (bool, error)
	RemoveScrapLike(ctx context.Context, scrapID, userID uint) (bool, error)
	AddCommentLike(ctx context.Context, commentID, userID uint) (bool, error)
	RemoveCommentLike(ctx context.Context, commentID, userID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) AddScrapLike(ctx context.Context, scrapID, userID uint) (bool, error) {
	return r.insert(ctx, &models.ScrapLike{ScrapID: scrapID, UserID: userID})
}

func (r *likeRepository) RemoveScrapLike(ctx context.Context, scrapID, userID uint) (bool, error) {
	return r.remove(ctx, r.db.WithContext(ctx).Where("scrap_id = ? AND user_id = ?", scrapID, userID), &models.ScrapLike{})
}

func (r *likeRepository) AddCommentLike(ctx context.Context, commentID, userID uint) (bool, error) {
	return r.insert(ctx, &models.CommentLike{CommentID: commentID, UserID: userID})
}

func (r *likeRepository) RemoveCommentLike(ctx context.Context, commentID, userID uint) (bool, error) {
	return r.remove(ctx, r.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID), &models.CommentLike{})
}

func (r *likeRepository) insert(ctx context.Context, row interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *likeRepository) remove(_ context.Context, scoped *gorm.DB, model interface{}) (bool, error) {
	res := scoped.Delete(model)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
