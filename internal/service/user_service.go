package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/TheAXPerience/ScrapPages/internal/cache"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/observability"
	"github.com/TheAXPerience/ScrapPages/internal/repository"
	"github.com/TheAXPerience/ScrapPages/internal/storage"
	"github.com/TheAXPerience/ScrapPages/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	MsgAccountRequired     = "Required: username and password"
	MsgProfileForbidden    = "You do not have permission to alter another user's profile"
	MsgInvalidCredentials  = "Invalid username or password"
	MsgCredentialsRequired = "Required: username and password to log in"
)

type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	store       storage.Store
	bcryptCost  int
}

type CreateUserInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

func NewUserService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	store storage.Store,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		store:       store,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// SetBcryptCost overrides the hashing cost; seeding and tests use bcrypt.MinCost.
func (s *UserService) SetBcryptCost(cost int) {
	s.bcryptCost = cost
}

// CreateUser registers an account and returns its freshly provisioned profile.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.Profile, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewMissingFieldsError(MsgAccountRequired)
	}
	username := validation.NormalizeUsername(in.Username)

	err := validation.ValidateNewUsername(username, in.Password, func(name string) (bool, error) {
		if name == models.SentinelUsername {
			return true, nil
		}
		return s.userRepo.ExistsByUsername(ctx, name)
	})
	if err != nil {
		return nil, fromValidation(err)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Username:  username,
		Password:  string(hash),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.ContentCreated.WithLabelValues("user").Inc()

	return s.profileRepo.GetByUsername(ctx, username)
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.NewMissingFieldsError(MsgCredentialsRequired)
	}
	user, err := s.userRepo.GetByUsername(ctx, validation.NormalizeUsername(username))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthenticatedError(MsgInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), passwordDigest(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
			return nil, models.NewUnauthenticatedError(MsgInvalidCredentials)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// GetUserByID loads an account; a deleted account is NOT_FOUND.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// DeleteUser removes the caller's own account. Their scraps and comments move
// to the sentinel account.
func (s *UserService) DeleteUser(ctx context.Context, callerID uint, username string) error {
	if err := requireUser(callerID); err != nil {
		return err
	}
	target, err := s.userRepo.GetByUsername(ctx, validation.NormalizeUsername(username))
	if err != nil {
		return err
	}
	if target.ID != callerID {
		return models.NewForbiddenError(MsgProfileForbidden)
	}

	removed, err := s.userRepo.Delete(ctx, target.ID)
	if err != nil {
		return err
	}
	if removed != nil {
		storage.RemoveBestEffort(ctx, s.store, removed.PicturePath)
	}
	cache.InvalidateProfile(ctx, target.Username, models.SentinelUsername)
	return nil
}

// passwordDigest is what bcrypt actually hashes. bcrypt refuses input over 72
// bytes, and a 70-character password can be far longer than that in UTF-8.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
