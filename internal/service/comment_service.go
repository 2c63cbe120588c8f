package service

import (
	"context"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/observability"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
)

const (
	MsgCommentContentMissing  = "Invalid; Missing comment content"
	MsgCommentEditForbidden   = "Invalid; Cannot edit another user's comment"
	MsgCommentDeleteForbidden = "Invalid; Cannot delete another user's comment"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	scrapRepo   repository.ScrapRepository
	events      EventPublisher
	now         func() time.Time
}

type CreateCommentInput struct {
	UserID    uint
	ScrapID   uint
	ReplyToID *uint
	Content   string
}

type UpdateCommentInput struct {
	UserID    uint
	ScrapID   uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	ScrapID   uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	scrapRepo repository.ScrapRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		scrapRepo:   scrapRepo,
		events:      events,
		now:         time.Now,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	if _, err := s.scrapRepo.GetByID(ctx, in.ScrapID); err != nil {
		return nil, err
	}
	if in.Content == "" {
		return nil, models.NewMissingFieldsError(MsgCommentContentMissing)
	}
	if in.ReplyToID != nil {
		// Replies across scraps are reported as a missing parent.
		if _, err := s.GetComment(ctx, in.ScrapID, *in.ReplyToID); err != nil {
			return nil, err
		}
	}

	now := currentTimestamp(s.now)
	comment := &models.Comment{
		Content:     in.Content,
		UserID:      in.UserID,
		ScrapID:     in.ScrapID,
		ReplyToID:   in.ReplyToID,
		TimePosted:  now,
		TimeUpdated: now,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("comment").Inc()

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventCommentCreated, created.ToResponse())
	return created, nil
}

func (s *CommentService) ListComments(ctx context.Context, scrapID uint) ([]*models.Comment, error) {
	if _, err := s.scrapRepo.GetByID(ctx, scrapID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByScrap(ctx, scrapID)
}

// GetComment returns NOT_FOUND when the comment exists but hangs off another scrap.
func (s *CommentService) GetComment(ctx context.Context, scrapID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.ScrapID != scrapID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	comment, err := s.GetComment(ctx, in.ScrapID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError(MsgCommentEditForbidden)
	}
	if in.Content == "" {
		return nil, models.NewMissingFieldsError(MsgCommentContentMissing)
	}

	comment.Content = in.Content
	comment.TimeUpdated = nextTimestamp(s.now, comment.TimeUpdated)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes the comment together with every reply below it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	if err := requireUser(in.UserID); err != nil {
		return err
	}
	comment, err := s.GetComment(ctx, in.ScrapID, in.CommentID)
	if err != nil {
		return err
	}
	if comment.UserID != in.UserID {
		return models.NewForbiddenError(MsgCommentDeleteForbidden)
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	publish(ctx, s.events, EventCommentDeleted, map[string]interface{}{
		"id":       comment.ID,
		"scrap_id": comment.ScrapID,
	})
	return nil
}
