package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/cache"
	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/observability"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
	"github.com/TheAXPerience/ScrapPages/internal/storage"
	"github.com/TheAXPerience/ScrapPages/internal/validation"
)

const (
	MsgScrapRequired        = "Required: post title and a file to upload"
	MsgScrapEditForbidden   = "Invalid; Cannot edit another user's post"
	MsgScrapDeleteForbidden = "Invalid; Cannot delete another user's post"
)

// UploadFile is a file received from a multipart request.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateScrapInput carries a new scrap. A nil Title means the field was absent.
type CreateScrapInput struct {
	UserID      uint
	Title       *string
	Description string
	File        *UploadFile
	Tags        []string
}

// UpdateScrapInput carries optional changes; nil fields are left alone and
// Tags are only ever added.
type UpdateScrapInput struct {
	UserID      uint
	ScrapID     uint
	Title       *string
	Description *string
	Tags        []string
}

type ScrapService struct {
	scrapRepo      repository.ScrapRepository
	userRepo       repository.UserRepository
	store          storage.Store
	events         EventPublisher
	maxUploadBytes int64
	now            func() time.Time
	previewGate    func(userID uint) bool
}

func NewScrapService(
	scrapRepo repository.ScrapRepository,
	userRepo repository.UserRepository,
	store storage.Store,
	events EventPublisher,
	maxUploadBytes int64,
) *ScrapService {
	return &ScrapService{
		scrapRepo:      scrapRepo,
		userRepo:       userRepo,
		store:          store,
		events:         events,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// SetPreviewGate decides per uploader whether image scraps get a preview.
// Without a gate every image does.
func (s *ScrapService) SetPreviewGate(gate func(userID uint) bool) {
	s.previewGate = gate
}

// URLFor resolves a storage key to a public URL.
func (s *ScrapService) URLFor(key string) string {
	return s.store.URL(key)
}

func (s *ScrapService) CreateScrap(ctx context.Context, in CreateScrapInput) (*models.Scrap, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	if in.Title == nil || in.File == nil {
		return nil, models.NewMissingFieldsError(MsgScrapRequired)
	}
	if err := validation.ValidateTitle(*in.Title); err != nil {
		return nil, fromValidation(err)
	}
	if s.maxUploadBytes > 0 && int64(len(in.File.Data)) > s.maxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid; file too large; maximum size = %d MB", s.maxUploadBytes/(1024*1024)))
	}
	upload, err := validation.ClassifyUpload(in.File.ContentType, in.File.Filename, in.File.Data)
	if err != nil {
		return nil, fromValidation(err)
	}

	owner, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	key := storage.ScrapKey(owner.Username, upload.Filename)
	if err := s.store.Put(ctx, key, upload.ContentType, in.File.Data); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("store scrap file: %w", err))
	}
	preview := ""
	if upload.FileType == models.FileTypeImage && (s.previewGate == nil || s.previewGate(owner.ID)) {
		preview = s.storePreview(ctx, key, in.File.Data)
	}

	now := currentTimestamp(s.now)
	scrap := &models.Scrap{
		UserID:        owner.ID,
		Title:         *in.Title,
		Description:   in.Description,
		FilePath:      key,
		FileType:      upload.FileType,
		ThumbnailPath: preview,
		TimePosted:    now,
		TimeUpdated:   now,
	}
	if err := s.scrapRepo.Create(ctx, scrap, validation.NormalizeTags(in.Tags)); err != nil {
		storage.RemoveBestEffort(ctx, s.store, key, preview)
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("scrap").Inc()
	cache.InvalidateProfile(ctx, owner.Username)

	created, err := s.scrapRepo.GetByID(ctx, scrap.ID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventScrapCreated, created.ToResponse(s.URLFor))
	return created, nil
}

func (s *ScrapService) storePreview(ctx context.Context, key string, data []byte) string {
	previewBytes, err := makePreview(data)
	if err == nil {
		previewKey := storage.PreviewKey(key)
		if err = s.store.Put(ctx, previewKey, "image/webp", previewBytes); err == nil {
			return previewKey
		}
	}
	middleware.Logger.WarnContext(ctx, "skipping scrap preview",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
	return ""
}

func (s *ScrapService) ListScraps(ctx context.Context, limit, offset int) ([]*models.Scrap, error) {
	return s.scrapRepo.List(ctx, limit, offset)
}

func (s *ScrapService) GetScrap(ctx context.Context, id uint) (*models.Scrap, error) {
	return s.scrapRepo.GetByID(ctx, id)
}

// ListTagged returns scraps carrying exactly this tag name.
func (s *ScrapService) ListTagged(ctx context.Context, name string, limit, offset int) ([]*models.Scrap, error) {
	return s.scrapRepo.ListByTag(ctx, name, limit, offset)
}

// ListUserScraps returns a user's scraps, or NOT_FOUND for an unknown username.
func (s *ScrapService) ListUserScraps(ctx context.Context, username string, limit, offset int) ([]*models.Scrap, error) {
	user, err := s.userRepo.GetByUsername(ctx, validation.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	return s.scrapRepo.ListByUser(ctx, user.ID, limit, offset)
}

func (s *ScrapService) UpdateScrap(ctx context.Context, in UpdateScrapInput) (*models.Scrap, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	scrap, err := s.scrapRepo.GetByID(ctx, in.ScrapID)
	if err != nil {
		return nil, err
	}
	if scrap.UserID != in.UserID {
		return nil, models.NewForbiddenError(MsgScrapEditForbidden)
	}

	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, fromValidation(err)
		}
		scrap.Title = *in.Title
	}
	if in.Description != nil {
		scrap.Description = *in.Description
	}
	scrap.TimeUpdated = nextTimestamp(s.now, scrap.TimeUpdated)

	if err := s.scrapRepo.Update(ctx, scrap, validation.NormalizeTags(in.Tags)); err != nil {
		return nil, err
	}

	updated, err := s.scrapRepo.GetByID(ctx, scrap.ID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, EventScrapUpdated, updated.ToResponse(s.URLFor))
	return updated, nil
}

// DeleteScrap removes the scrap and everything hanging off it. Stored files go
// after the commit and failures there are not reported.
func (s *ScrapService) DeleteScrap(ctx context.Context, userID, scrapID uint) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	scrap, err := s.scrapRepo.GetByID(ctx, scrapID)
	if err != nil {
		return err
	}
	if scrap.UserID != userID {
		return models.NewForbiddenError(MsgScrapDeleteForbidden)
	}

	if err := s.scrapRepo.Delete(ctx, scrap.ID); err != nil {
		return err
	}
	storage.RemoveBestEffort(ctx, s.store, scrap.FilePath, scrap.ThumbnailPath)
	cache.InvalidateProfile(ctx, scrap.User.Username)
	publish(ctx, s.events, EventScrapDeleted, map[string]interface{}{
		"id":   scrap.ID,
		"user": scrap.User.Username,
	})
	return nil
}
