package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	db       *gorm.DB
	users    UserRepository
	profiles ProfileRepository
	scraps   ScrapRepository
	comments CommentRepository
	tags     TagRepository
	likes    LikeRepository
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	return &fixture{
		db:       db,
		users:    NewUserRepository(db),
		profiles: NewProfileRepository(db),
		scraps:   NewScrapRepository(db),
		comments: NewCommentRepository(db),
		tags:     NewTagRepository(db),
		likes:    NewLikeRepository(db),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "hash"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) scrap(t *testing.T, owner *models.User, title string, tags ...string) *models.Scrap {
	t.Helper()
	now := f.tick()
	s := &models.Scrap{
		UserID:      owner.ID,
		Title:       title,
		FilePath:    "uploads/user__" + owner.Username + "/" + title + ".txt",
		FileType:    models.FileTypeText,
		TimePosted:  now,
		TimeUpdated: now,
	}
	require.NoError(t, f.scraps.Create(context.Background(), s, tags))
	return s
}

func (f *fixture) comment(t *testing.T, author *models.User, scrap *models.Scrap, replyTo *models.Comment) *models.Comment {
	t.Helper()
	now := f.tick()
	c := &models.Comment{Content: "hi", UserID: author.ID, ScrapID: scrap.ID, TimePosted: now, TimeUpdated: now}
	if replyTo != nil {
		c.ReplyToID = &replyTo.ID
	}
	require.NoError(t, f.comments.Create(context.Background(), c))
	return c
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestUserRepository_CreateProvisionsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	profile, err := f.profiles.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, profile.UserID)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Zero(t, profile.NumScraps)

	err = f.users.Create(ctx, &models.User{Username: "alice", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists))
	assert.Equal(t, int64(1), count(t, f.db, &models.Profile{}, "1 = 1"), "failed create must not leave a profile behind")

	exists, err := f.users.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = f.users.GetByUsername(ctx, "nobody")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_DeleteReassignsToSentinel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob12")
	carol := f.user(t, "carol")

	aliceScrap := f.scrap(t, alice, "cat")
	bobScrap := f.scrap(t, bob, "dog")
	c := f.comment(t, alice, bobScrap, nil)
	_, err := f.likes.AddScrapLike(ctx, bobScrap.ID, alice.ID)
	require.NoError(t, err)
	_, err = f.likes.AddCommentLike(ctx, c.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Profile{}).Where("user_id = ?", alice.ID).Update("picture_path", "prof_pics/alice__me.png").Error)

	removed, err := f.users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "prof_pics/alice__me.png", removed.PicturePath)

	sentinel, err := f.users.GetByUsername(ctx, models.SentinelUsername)
	require.NoError(t, err)

	got, err := f.scraps.GetByID(ctx, aliceScrap.ID)
	require.NoError(t, err)
	assert.Equal(t, sentinel.ID, got.UserID)
	assert.Equal(t, models.SentinelUsername, got.User.Username)

	gotComment, err := f.comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, sentinel.ID, gotComment.UserID)
	assert.Zero(t, gotComment.NumLikes)

	gotBob, err := f.scraps.GetByID(ctx, bobScrap.ID)
	require.NoError(t, err)
	assert.Zero(t, gotBob.NumLikes)

	_, err = f.users.GetByID(ctx, alice.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = f.profiles.GetByUsername(ctx, "alice")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	// A second deletion reuses the same sentinel.
	f.scrap(t, carol, "bird")
	_, err = f.users.Delete(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, f.db, &models.User{}, "username = ?", models.SentinelUsername))

	sentinelProfile, err := f.profiles.GetByUsername(ctx, models.SentinelUsername)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sentinelProfile.NumScraps)

	_, err = f.users.Delete(ctx, sentinel.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = f.users.Delete(ctx, 9999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestProfileRepository_ListAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zed := f.user(t, "zed99")
	amy := f.user(t, "amy00")
	f.scrap(t, zed, "one")
	f.scrap(t, zed, "two")

	profiles, err := f.profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "amy00", profiles[0].User.Username)
	assert.Equal(t, int64(2), profiles[1].NumScraps)

	p := profiles[0]
	p.DisplayName = "Amy_Z"
	p.Description = "hello"
	require.NoError(t, f.profiles.Update(ctx, p))

	got, err := f.profiles.GetByUsername(ctx, "amy00")
	require.NoError(t, err)
	assert.Equal(t, "Amy_Z", got.DisplayName)
	assert.Equal(t, amy.ID, got.UserID)

	err = f.profiles.Update(ctx, &models.Profile{UserID: 4242, DisplayName: "ghost"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestScrapRepository_CreateGetAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob12")
	s := f.scrap(t, alice, "Cat", "cute", "pet")

	c := f.comment(t, bob, s, nil)
	f.comment(t, alice, s, c)
	_, err := f.likes.AddScrapLike(ctx, s.ID, bob.ID)
	require.NoError(t, err)
	_, err = f.likes.AddScrapLike(ctx, s.ID, alice.ID)
	require.NoError(t, err)

	got, err := f.scraps.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cat", got.Title)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, int64(2), got.NumComments, "replies count as comments")
	assert.Equal(t, int64(2), got.NumLikes)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "cute", got.Tags[0].Name)

	_, err = f.scraps.GetByID(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestScrapRepository_ListOrderingAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob12")
	first := f.scrap(t, alice, "first", "shared")
	second := f.scrap(t, bob, "second", "shared", "other")
	third := f.scrap(t, alice, "third")

	list, err := f.scraps.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})

	// Touching the oldest moves it to the front.
	first.TimeUpdated = f.tick()
	require.NoError(t, f.scraps.Update(ctx, first, []string{"shared", "new"}))
	list, err = f.scraps.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Len(t, list[0].Tags, 2, "existing tag is not duplicated")

	paged, err := f.scraps.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, second.ID, paged[0].ID)

	mine, err := f.scraps.ListByUser(ctx, alice.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	tagged, err := f.scraps.ListByTag(ctx, "shared", 0, 0)
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	assert.Equal(t, first.ID, tagged[0].ID)

	none, err := f.scraps.ListByTag(ctx, "nope", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestScrapRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob12")
	s := f.scrap(t, alice, "Cat", "cute")
	keep := f.scrap(t, bob, "Dog", "cute")
	c := f.comment(t, bob, s, nil)
	f.comment(t, alice, s, c)
	kept := f.comment(t, alice, keep, nil)
	_, _ = f.likes.AddScrapLike(ctx, s.ID, bob.ID)
	_, _ = f.likes.AddCommentLike(ctx, c.ID, alice.ID)
	_, _ = f.likes.AddCommentLike(ctx, kept.ID, bob.ID)

	require.NoError(t, f.scraps.Delete(ctx, s.ID))

	assert.Zero(t, count(t, f.db, &models.Scrap{}, "id = ?", s.ID))
	assert.Zero(t, count(t, f.db, &models.Comment{}, "scrap_id = ?", s.ID))
	assert.Zero(t, count(t, f.db, &models.Tag{}, "scrap_id = ?", s.ID))
	assert.Zero(t, count(t, f.db, &models.ScrapLike{}, "scrap_id = ?", s.ID))
	assert.Zero(t, count(t, f.db, &models.CommentLike{}, "comment_id = ?", c.ID))

	assert.Equal(t, int64(1), count(t, f.db, &models.Tag{}, "scrap_id = ?", keep.ID))
	assert.Equal(t, int64(1), count(t, f.db, &models.CommentLike{}, "comment_id = ?", kept.ID))

	err := f.scraps.Delete(ctx, s.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommentRepository_ListAndCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob12")
	s := f.scrap(t, alice, "Cat")

	top := f.comment(t, alice, s, nil)
	reply := f.comment(t, bob, s, top)
	nested := f.comment(t, alice, s, reply)
	other := f.comment(t, bob, s, nil)
	_, _ = f.likes.AddCommentLike(ctx, nested.ID, bob.ID)
	_, _ = f.likes.AddCommentLike(ctx, top.ID, bob.ID)

	list, err := f.comments.ListByScrap(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, other.ID, list[0].ID)

	byID := map[uint]*models.Comment{}
	for _, c := range list {
		byID[c.ID] = c
	}
	assert.Equal(t, int64(1), byID[top.ID].NumReplies)
	assert.Equal(t, int64(1), byID[top.ID].NumLikes)
	assert.Nil(t, byID[top.ID].ReplyToID)
	assert.Equal(t, top.ID, *byID[reply.ID].ReplyToID)

	top.Content = "edited"
	top.TimeUpdated = f.tick()
	require.NoError(t, f.comments.Update(ctx, top))
	got, err := f.comments.GetByID(ctx, top.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Equal(t, "alice", got.User.Username)

	require.NoError(t, f.comments.Delete(ctx, top.ID))
	remaining, err := f.comments.ListByScrap(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
	assert.Zero(t, count(t, f.db, &models.CommentLike{}, "1 = 1"))

	err = f.comments.Delete(ctx, top.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestLikeRepository_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	s := f.scrap(t, alice, "Cat")
	c := f.comment(t, alice, s, nil)

	added, err := f.likes.AddScrapLike(ctx, s.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.likes.AddScrapLike(ctx, s.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := f.likes.RemoveScrapLike(ctx, s.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.likes.RemoveScrapLike(ctx, s.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	added, err = f.likes.AddCommentLike(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.likes.AddCommentLike(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, added)
	removed, err = f.likes.RemoveCommentLike(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestTagRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	s := f.scrap(t, alice, "Cat")
	other := f.scrap(t, alice, "Dog")

	require.NoError(t, f.tags.Add(ctx, &models.Tag{Name: "yellow_belly_", ScrapID: s.ID}))
	require.NoError(t, f.tags.Add(ctx, &models.Tag{Name: "yellow_belly_", ScrapID: other.ID}), "same name on another scrap is fine")

	err := f.tags.Add(ctx, &models.Tag{Name: "yellow_belly_", ScrapID: s.ID})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists))
	assert.Equal(t, MsgTagExists, err.Error())

	exists, err := f.tags.Exists(ctx, s.ID, "yellow_belly_")
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := f.tags.Remove(ctx, s.ID, "yellow belly!")
	require.NoError(t, err)
	assert.False(t, removed, "removal does not re-normalize")

	removed, err = f.tags.Remove(ctx, s.ID, "yellow_belly_")
	require.NoError(t, err)
	assert.True(t, removed)

	tags, err := f.tags.ListByScrap(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(nil))
}

func TestLikeRepository_PostgresUsesOnConflictDoNothing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "scrap_likes"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	added, err := repo.AddScrapLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tags"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Add(context.Background(), &models.Tag{Name: "cute", ScrapID: 1})
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}
