// Package seed populates a database with demo users, scraps, comments and
// likes. Everything goes through the service layer so seeded data obeys the
// same validation and storage rules as real traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
	"github.com/TheAXPerience/ScrapPages/internal/service"
	"github.com/TheAXPerience/ScrapPages/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every generated account.
const DefaultPassword = "password123"

const maxSeedUpload = 10 * 1024 * 1024

// Options configuration for the seeder
type Options struct {
	NumUsers         int
	ScrapsPerUser    int
	CommentsPerScrap int
	// LikeRatio is the chance, 0..1, that a user likes any given scrap.
	LikeRatio float64
	// FixturePath points at an optional YAML file of hand-written accounts.
	FixturePath string
	ShouldClean bool
	// FastHash trades bcrypt strength for speed.
	FastHash bool
	// RandSeed makes generated content reproducible when non-zero.
	RandSeed int64
}

// Report counts what a run created.
type Report struct {
	Users    int
	Scraps   int
	Comments int
	Likes    int
}

// Seeder writes demo data through the service layer.
type Seeder struct {
	db       *gorm.DB
	users    *service.UserService
	scraps   *service.ScrapService
	comments *service.CommentService
	likes    *service.LikeService
	factory  *Factory
}

// NewSeeder wires services over db and store. No realtime events are published.
func NewSeeder(db *gorm.DB, store storage.Store, opts Options) *Seeder {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	scrapRepo := repository.NewScrapRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	users := service.NewUserService(userRepo, profileRepo, store)
	if opts.FastHash {
		users.SetBcryptCost(bcrypt.MinCost)
	}
	scraps := service.NewScrapService(scrapRepo, userRepo, store, nil, maxSeedUpload)
	comments := service.NewCommentService(commentRepo, scrapRepo, nil)

	return &Seeder{
		db:       db,
		users:    users,
		scraps:   scraps,
		comments: comments,
		likes:    service.NewLikeService(repository.NewLikeRepository(db), scraps, comments, nil),
		factory:  NewFactory(opts.RandSeed),
	}
}

// Run seeds according to opts: fixture accounts first, then generated filler.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Report, error) {
	middleware.Logger.Info("seeding database",
		slog.Int("users", opts.NumUsers),
		slog.Int("scraps_per_user", opts.ScrapsPerUser),
		slog.String("fixture", opts.FixturePath),
	)

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	report := &Report{}
	var authors []*models.Profile
	var created []*models.Scrap

	if opts.FixturePath != "" {
		fixture, err := LoadFixture(opts.FixturePath)
		if err != nil {
			return nil, err
		}
		profiles, scraps, err := s.applyFixture(ctx, fixture)
		if err != nil {
			return nil, err
		}
		authors = append(authors, profiles...)
		created = append(created, scraps...)
	}

	for i := 0; i < opts.NumUsers; i++ {
		profile, err := s.users.CreateUser(ctx, s.factory.User())
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		authors = append(authors, profile)
		for j := 0; j < opts.ScrapsPerUser; j++ {
			scrap, err := s.scraps.CreateScrap(ctx, s.factory.Scrap(profile.UserID))
			if err != nil {
				return nil, fmt.Errorf("create scrap for %s: %w", profile.User.Username, err)
			}
			created = append(created, scrap)
		}
	}
	report.Users = len(authors)
	report.Scraps = len(created)

	comments, err := s.seedComments(ctx, authors, created, opts.CommentsPerScrap)
	if err != nil {
		return nil, err
	}
	report.Comments = comments

	likes, err := s.seedLikes(ctx, authors, created, opts.LikeRatio)
	if err != nil {
		return nil, err
	}
	report.Likes = likes

	middleware.Logger.Info("seeding completed",
		slog.Int("users", report.Users),
		slog.Int("scraps", report.Scraps),
		slog.Int("comments", report.Comments),
		slog.Int("likes", report.Likes),
	)
	return report, nil
}

func (s *Seeder) applyFixture(ctx context.Context, fixture *Fixture) ([]*models.Profile, []*models.Scrap, error) {
	var profiles []*models.Profile
	var scraps []*models.Scrap
	for _, fu := range fixture.Users {
		profile, err := s.users.CreateUser(ctx, fu.input())
		if err != nil {
			return nil, nil, fmt.Errorf("fixture user %q: %w", fu.Username, err)
		}
		profiles = append(profiles, profile)
		for _, fs := range fu.Scraps {
			scrap, err := s.scraps.CreateScrap(ctx, fs.input(profile.UserID, s.factory))
			if err != nil {
				return nil, nil, fmt.Errorf("fixture scrap %q: %w", fs.Title, err)
			}
			scraps = append(scraps, scrap)
		}
	}
	return profiles, scraps, nil
}

// seedComments gives each scrap top-level comments from random authors; every
// other comment gets one reply.
func (s *Seeder) seedComments(ctx context.Context, authors []*models.Profile, scraps []*models.Scrap, perScrap int) (int, error) {
	if len(authors) == 0 {
		return 0, nil
	}
	total := 0
	for _, scrap := range scraps {
		for i := 0; i < perScrap; i++ {
			author := authors[s.factory.Intn(len(authors))]
			comment, err := s.comments.CreateComment(ctx, s.factory.Comment(author.UserID, scrap.ID, nil))
			if err != nil {
				return total, fmt.Errorf("comment on scrap %d: %w", scrap.ID, err)
			}
			total++
			if i%2 == 1 {
				replier := authors[s.factory.Intn(len(authors))]
				if _, err := s.comments.CreateComment(ctx, s.factory.Comment(replier.UserID, scrap.ID, &comment.ID)); err != nil {
					return total, fmt.Errorf("reply to comment %d: %w", comment.ID, err)
				}
				total++
			}
		}
	}
	return total, nil
}

func (s *Seeder) seedLikes(ctx context.Context, authors []*models.Profile, scraps []*models.Scrap, ratio float64) (int, error) {
	total := 0
	for _, scrap := range scraps {
		for _, author := range authors {
			if s.factory.Float64() >= ratio {
				continue
			}
			changed, err := s.likes.LikeScrap(ctx, author.UserID, scrap.ID)
			if err != nil {
				return total, fmt.Errorf("like scrap %d: %w", scrap.ID, err)
			}
			if changed {
				total++
			}
		}
	}
	return total, nil
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.Info("clearing existing data")
	tables := []interface{}{
		&models.CommentLike{},
		&models.ScrapLike{},
		&models.Tag{},
		&models.Comment{},
		&models.Scrap{},
		&models.Profile{},
		&models.User{},
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
