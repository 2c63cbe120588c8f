package service

import (
	"context"

	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
	"github.com/TheAXPerience/ScrapPages/internal/validation"
)

const (
	MsgTagMissing         = "Invalid; need tag"
	MsgTagAddForbidden    = "Invalid; Cannot alter tags of another user's post"
	MsgTagDeleteMissing   = "Invalid; no tag to delete identified"
	MsgTagDeleteForbidden = "Invalid; Cannot alter another user's post"
)

type TagService struct {
	tagRepo   repository.TagRepository
	scrapRepo repository.ScrapRepository
	events    EventPublisher
}

func NewTagService(tagRepo repository.TagRepository, scrapRepo repository.ScrapRepository, events EventPublisher) *TagService {
	return &TagService{tagRepo: tagRepo, scrapRepo: scrapRepo, events: events}
}

func (s *TagService) ListTags(ctx context.Context, scrapID uint) ([]models.Tag, error) {
	if _, err := s.scrapRepo.GetByID(ctx, scrapID); err != nil {
		return nil, err
	}
	return s.tagRepo.ListByScrap(ctx, scrapID)
}

// AddTag normalizes name before storing it. A name already on the scrap is ALREADY_EXISTS.
func (s *TagService) AddTag(ctx context.Context, userID, scrapID uint, name string) (*models.Tag, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	scrap, err := s.scrapRepo.GetByID(ctx, scrapID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, models.NewMissingFieldsError(MsgTagMissing)
	}
	if scrap.UserID != userID {
		return nil, models.NewForbiddenError(MsgTagAddForbidden)
	}

	tag := &models.Tag{Name: validation.NormalizeTag(name), ScrapID: scrap.ID}
	exists, err := s.tagRepo.Exists(ctx, scrap.ID, tag.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewAlreadyExistsError(repository.MsgTagExists)
	}
	if err := s.tagRepo.Add(ctx, tag); err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventTagAdded, tag.ToResponse())
	return tag, nil
}

// RemoveTag looks the name up literally; it is not normalized again.
func (s *TagService) RemoveTag(ctx context.Context, userID, scrapID uint, name string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	scrap, err := s.scrapRepo.GetByID(ctx, scrapID)
	if err != nil {
		return err
	}
	if name == "" {
		return models.NewMissingFieldsError(MsgTagDeleteMissing)
	}
	if scrap.UserID != userID {
		return models.NewForbiddenError(MsgTagDeleteForbidden)
	}

	removed, err := s.tagRepo.Remove(ctx, scrap.ID, name)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("Tag", name)
	}
	return nil
}
