package service

import (
	"context"
	"fmt"

	"github.com/TheAXPerience/ScrapPages/internal/cache"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
	"github.com/TheAXPerience/ScrapPages/internal/storage"
	"github.com/TheAXPerience/ScrapPages/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	store       storage.Store
}

// UpdateProfileInput carries optional profile changes; nil fields are left alone.
type UpdateProfileInput struct {
	UserID      uint
	Username    string
	DisplayName *string
	Description *string
	Picture     *UploadFile
}

func NewProfileService(profileRepo repository.ProfileRepository, store storage.Store) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, store: store}
}

// URLFor resolves a storage key to a public URL.
func (s *ProfileService) URLFor(key string) string {
	return s.store.URL(key)
}

// GetProfile serves the public profile view through the Redis cache.
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*models.ProfileResponse, error) {
	username = validation.NormalizeUsername(username)
	return cache.Aside(ctx, cache.ProfileKey(username), cache.ProfileTTL, func() (*models.ProfileResponse, error) {
		profile, err := s.profileRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		resp := profile.ToResponse(s.URLFor)
		return &resp, nil
	})
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	username := validation.NormalizeUsername(in.Username)
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if profile.UserID != in.UserID {
		return nil, models.NewForbiddenError(MsgProfileForbidden)
	}

	if in.DisplayName != nil {
		if err := validation.ValidateDisplayName(*in.DisplayName); err != nil {
			return nil, fromValidation(err)
		}
		profile.DisplayName = *in.DisplayName
	}
	if in.Description != nil {
		profile.Description = *in.Description
	}

	previous := ""
	if in.Picture != nil {
		contentType, err := validation.ValidateProfilePicture(in.Picture.ContentType, in.Picture.Data)
		if err != nil {
			return nil, fromValidation(err)
		}
		data, err := downscalePicture(in.Picture.Data)
		if err != nil {
			return nil, models.NewInternalError(fmt.Errorf("downscale picture: %w", err))
		}
		key := storage.PictureKey(username, validation.SanitizeFilename(in.Picture.Filename))
		if err := s.store.Put(ctx, key, contentType, data); err != nil {
			return nil, models.NewInternalError(fmt.Errorf("store picture: %w", err))
		}
		previous = profile.PicturePath
		profile.PicturePath = key
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if in.Picture != nil {
			storage.RemoveBestEffort(ctx, s.store, profile.PicturePath)
		}
		return nil, err
	}
	storage.RemoveBestEffort(ctx, s.store, previous)
	cache.InvalidateProfile(ctx, username)

	return s.profileRepo.GetByUsername(ctx, username)
}
