package service

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"

	"github.com/TheAXPerience/ScrapPages/internal/cache"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_GetProfile_ReadsThroughCache(t *testing.T) {
	mr := useMiniredis(t)

	calls := 0
	profiles := noopProfileRepo()
	profiles.getByUsernameFn = func(_ context.Context, name string) (*models.Profile, error) {
		calls++
		if name != "alice" {
			return nil, models.NewNotFoundError("Profile", name)
		}
		return &models.Profile{UserID: 1, DisplayName: "Alice", NumScraps: 2, User: models.User{ID: 1, Username: "alice"}}, nil
	}
	svc := NewProfileService(profiles, newMemStore())
	ctx := context.Background()

	first, err := svc.GetProfile(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "/media/"+models.DefaultPicturePath, first.ProfilePictureURL)
	assert.Equal(t, int64(2), first.NumScraps)

	second, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(cache.ProfileKey("alice")))

	_, err = svc.GetProfile(ctx, "nobody")
	assertAppError(t, err, models.CodeNotFound, "")
	assert.False(t, mr.Exists(cache.ProfileKey("nobody")), "misses are not cached")
}

func TestProfileService_UpdateProfile(t *testing.T) {
	t.Parallel()

	newSvc := func(stored *models.Profile) (*ProfileService, *memStore, *int) {
		updates := 0
		profiles := noopProfileRepo()
		profiles.getByUsernameFn = func(_ context.Context, name string) (*models.Profile, error) {
			out := *stored
			return &out, nil
		}
		profiles.updateFn = func(_ context.Context, p *models.Profile) error {
			updates++
			*stored = *p
			return nil
		}
		store := newMemStore()
		return NewProfileService(profiles, store), store, &updates
	}

	t.Run("other users are rejected", func(t *testing.T) {
		t.Parallel()
		svc, _, updates := newSvc(&models.Profile{UserID: 1, User: models.User{ID: 1, Username: "alice"}})
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 2, Username: "alice", DisplayName: strPtr("Mallory")})
		assertAppError(t, err, models.CodeForbidden, MsgProfileForbidden)
		assert.Zero(t, *updates)
	})

	t.Run("display name is validated", func(t *testing.T) {
		t.Parallel()
		svc, _, updates := newSvc(&models.Profile{UserID: 1, User: models.User{ID: 1, Username: "alice"}})
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Username: "alice", DisplayName: strPtr("Al")})
		assertValidationError(t, err, "Display name invalid; minimum length = 5")
		assert.Zero(t, *updates)
	})

	t.Run("picture type is validated", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newSvc(&models.Profile{UserID: 1, User: models.User{ID: 1, Username: "alice"}})
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1, Username: "alice",
			Picture: &UploadFile{Filename: "a.gif", ContentType: "image/gif", Data: testutil.GIFBytes(4, 4)},
		})
		assertValidationError(t, err, "Invalid file type; only accepts PNG and JPG")
		assert.Empty(t, store.keys())
	})

	t.Run("new picture replaces the old one", func(t *testing.T) {
		t.Parallel()
		stored := &models.Profile{
			UserID: 1, DisplayName: "alice", Description: "old",
			PicturePath: "prof_pics/alice__old.png",
			User:        models.User{ID: 1, Username: "alice"},
		}
		svc, store, updates := newSvc(stored)
		require.NoError(t, store.Put(context.Background(), stored.PicturePath, "image/png", []byte("old")))

		got, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID:      1,
			Username:    "alice",
			DisplayName: strPtr("Alice_W"),
			Picture:     &UploadFile{Filename: "me.png", ContentType: "image/png", Data: testutil.PNGBytes(2048, 1024)},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, *updates)
		assert.Equal(t, "Alice_W", got.DisplayName)
		assert.Equal(t, "old", got.Description, "absent description is kept")
		assert.True(t, strings.HasPrefix(got.PicturePath, "prof_pics/alice__me_"))

		keys := store.keys()
		require.Len(t, keys, 1)
		assert.Equal(t, got.PicturePath, keys[0])

		cfg, format, err := image.DecodeConfig(bytes.NewReader(store.objects[keys[0]]))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, PictureMaxSize, cfg.Width)
		assert.Equal(t, 512, cfg.Height)
	})
}
