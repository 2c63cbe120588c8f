package service

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/observability"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
)

// LikeService manages liker sets. Every call reports whether membership changed.
type LikeService struct {
	likeRepo repository.LikeRepository
	scraps   *ScrapService
	comments *CommentService
	events   EventPublisher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	scraps *ScrapService,
	comments *CommentService,
	events EventPublisher,
) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		scraps:   scraps,
		comments: comments,
		events:   events,
	}
}

func (s *LikeService) LikeScrap(ctx context.Context, userID, scrapID uint) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	if _, err := s.scraps.GetScrap(ctx, scrapID); err != nil {
		return false, err
	}
	added, err := s.likeRepo.AddScrapLike(ctx, scrapID, userID)
	if err != nil {
		return false, err
	}
	if added {
		observability.LikeToggles.WithLabelValues("scrap", "add").Inc()
		publish(ctx, s.events, EventScrapLiked, map[string]interface{}{
			"scrap_id": scrapID,
			"user_id":  userID,
		})
	}
	return added, nil
}

func (s *LikeService) UnlikeScrap(ctx context.Context, userID, scrapID uint) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}
	if _, err := s.scraps.GetScrap(ctx, scrapID); err != nil {
		return false, err
	}
	removed, err := s.likeRepo.RemoveScrapLike(ctx, scrapID, userID)
	if err != nil {
		return false, err
	}
	if removed {
		observability.LikeToggles.WithLabelValues("scrap", "remove").Inc()
	}
	return removed, nil
}

func (s *LikeService) LikeComment(ctx context.Context, userID, scrapID, commentID uint) (bool, error) {
	if err := s.checkComment(ctx, userID, scrapID, commentID); err != nil {
		return false, err
	}
	added, err := s.likeRepo.AddCommentLike(ctx, commentID, userID)
	if err != nil {
		return false, err
	}
	if added {
		observability.LikeToggles.WithLabelValues("comment", "add").Inc()
	}
	return added, nil
}

func (s *LikeService) UnlikeComment(ctx context.Context, userID, scrapID, commentID uint) (bool, error) {
	if err := s.checkComment(ctx, userID, scrapID, commentID); err != nil {
		return false, err
	}
	removed, err := s.likeRepo.RemoveCommentLike(ctx, commentID, userID)
	if err != nil {
		return false, err
	}
	if removed {
		observability.LikeToggles.WithLabelValues("comment", "remove").Inc()
	}
	return removed, nil
}

func (s *LikeService) checkComment(ctx context.Context, userID, scrapID, commentID uint) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.scraps.GetScrap(ctx, scrapID); err != nil {
		return err
	}
	_, err := s.comments.GetComment(ctx, scrapID, commentID)
	return err
}
