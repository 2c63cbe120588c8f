package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrapRepoStub is a stub for repository.ScrapRepository.
type scrapRepoStub struct {
	createFn     func(context.Context, *models.Scrap, []string) error
	getByIDFn    func(context.Context, uint) (*models.Scrap, error)
	listFn       func(context.Context, int, int) ([]*models.Scrap, error)
	listByUserFn func(context.Context, uint, int, int) ([]*models.Scrap, error)
	listByTagFn  func(context.Context, string, int, int) ([]*models.Scrap, error)
	updateFn     func(context.Context, *models.Scrap, []string) error
	deleteFn     func(context.Context, uint) error
}

func (s *scrapRepoStub) Create(ctx context.Context, scrap *models.Scrap, tags []string) error {
	return s.createFn(ctx, scrap, tags)
}
func (s *scrapRepoStub) GetByID(ctx context.Context, id uint) (*models.Scrap, error) {
	return s.getByIDFn(ctx, id)
}
func (s *scrapRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Scrap, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *scrapRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Scrap, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *scrapRepoStub) ListByTag(ctx context.Context, name string, limit, offset int) ([]*models.Scrap, error) {
	return s.listByTagFn(ctx, name, limit, offset)
}
func (s *scrapRepoStub) Update(ctx context.Context, scrap *models.Scrap, tags []string) error {
	return s.updateFn(ctx, scrap, tags)
}
func (s *scrapRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopScrapRepo() *scrapRepoStub {
	return &scrapRepoStub{
		createFn: func(_ context.Context, _ *models.Scrap, _ []string) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Scrap, error) {
			return &models.Scrap{ID: id, UserID: 1, User: models.User{ID: 1, Username: "alice"}}, nil
		},
		listFn:       func(_ context.Context, _, _ int) ([]*models.Scrap, error) { return []*models.Scrap{}, nil },
		listByUserFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Scrap, error) { return []*models.Scrap{}, nil },
		listByTagFn:  func(_ context.Context, _ string, _, _ int) ([]*models.Scrap, error) { return []*models.Scrap{}, nil },
		updateFn:     func(_ context.Context, _ *models.Scrap, _ []string) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByScrapFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn      func(context.Context, *models.Comment) error
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByScrap(ctx context.Context, scrapID uint) ([]*models.Comment, error) {
	return s.listByScrapFn(ctx, scrapID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, ScrapID: 1}, nil
		},
		listByScrapFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		updateFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	addFn         func(context.Context, *models.Tag) error
	existsFn      func(context.Context, uint, string) (bool, error)
	removeFn      func(context.Context, uint, string) (bool, error)
	listByScrapFn func(context.Context, uint) ([]models.Tag, error)
}

func (s *tagRepoStub) Add(ctx context.Context, tag *models.Tag) error {
	return s.addFn(ctx, tag)
}
func (s *tagRepoStub) Exists(ctx context.Context, scrapID uint, name string) (bool, error) {
	return s.existsFn(ctx, scrapID, name)
}
func (s *tagRepoStub) Remove(ctx context.Context, scrapID uint, name string) (bool, error) {
	return s.removeFn(ctx, scrapID, name)
}
func (s *tagRepoStub) ListByScrap(ctx context.Context, scrapID uint) ([]models.Tag, error) {
	return s.listByScrapFn(ctx, scrapID)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		addFn:         func(_ context.Context, _ *models.Tag) error { return nil },
		existsFn:      func(_ context.Context, _ uint, _ string) (bool, error) { return false, nil },
		removeFn:      func(_ context.Context, _ uint, _ string) (bool, error) { return true, nil },
		listByScrapFn: func(_ context.Context, _ uint) ([]models.Tag, error) { return []models.Tag{}, nil },
	}
}

// likeRepoStub keeps liker sets in memory.
type likeRepoStub struct {
	mu       sync.Mutex
	scraps   map[[2]uint]struct{}
	comments map[[2]uint]struct{}
}

func newLikeRepoStub() *likeRepoStub {
	return &likeRepoStub{scraps: map[[2]uint]struct{}{}, comments: map[[2]uint]struct{}{}}
}

func (s *likeRepoStub) toggle(set map[[2]uint]struct{}, key [2]uint, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, present := set[key]
	if add {
		set[key] = struct{}{}
		return !present
	}
	delete(set, key)
	return present
}

func (s *likeRepoStub) AddScrapLike(_ context.Context, scrapID, userID uint) (bool, error) {
	return s.toggle(s.scraps, [2]uint{scrapID, userID}, true), nil
}
func (s *likeRepoStub) RemoveScrapLike(_ context.Context, scrapID, userID uint) (bool, error) {
	return s.toggle(s.scraps, [2]uint{scrapID, userID}, false), nil
}
func (s *likeRepoStub) AddCommentLike(_ context.Context, commentID, userID uint) (bool, error) {
	return s.toggle(s.comments, [2]uint{commentID, userID}, true), nil
}
func (s *likeRepoStub) RemoveCommentLike(_ context.Context, commentID, userID uint) (bool, error) {
	return s.toggle(s.comments, [2]uint{commentID, userID}, false), nil
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, string) (bool, error)
	deleteFn        func(context.Context, uint) (*models.Profile, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.existsFn(ctx, username)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) (*models.Profile, error) {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		},
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			return &models.User{ID: 1, Username: name}, nil
		},
		existsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		deleteFn: func(_ context.Context, id uint) (*models.Profile, error) {
			return &models.Profile{UserID: id}, nil
		},
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUsernameFn func(context.Context, string) (*models.Profile, error)
	listFn          func(context.Context) ([]*models.Profile, error)
	updateFn        func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *profileRepoStub) List(ctx context.Context) ([]*models.Profile, error) {
	return s.listFn(ctx)
}
func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByUsernameFn: func(_ context.Context, name string) (*models.Profile, error) {
			return &models.Profile{UserID: 1, DisplayName: name, User: models.User{ID: 1, Username: name}}, nil
		},
		listFn:   func(_ context.Context) ([]*models.Profile, error) { return []*models.Profile{}, nil },
		updateFn: func(_ context.Context, _ *models.Profile) error { return nil },
	}
}

// memStore is an in-memory storage.Store.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if _, ok := m.objects[key]; !ok {
		return errors.New("no such object")
	}
	delete(m.objects, key)
	return nil
}

func (m *memStore) URL(key string) string { return "/media/" + key }
func (m *memStore) Driver() string        { return "memory" }

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

// recordingPublisher remembers published event types.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, eventType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// frozenClock returns the same instant until advanced.
type frozenClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *frozenClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error, message string) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation, message)
}
