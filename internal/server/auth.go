package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/models"

	"github.com/gofiber/fiber/v2"
)

const blacklistPrefix = "blacklist:"

// AuthRequired rejects requests without a valid, unrevoked bearer token and
// stores the caller's id in c.Locals("userID").
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.authenticate(c)
		if err != nil {
			if errors.Is(err, middleware.ErrMissingToken) {
				return respondError(c, models.NewUnauthenticatedError(middleware.MsgCredentialsMissing))
			}
			if models.IsCode(err, models.CodeInternal) {
				return respondError(c, err)
			}
			return respondError(c, models.NewUnauthenticatedError(middleware.MsgInvalidToken))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		middleware.RefreshContext(c)
		return c.Next()
	}
}

// authenticate parses the bearer token and checks the revocation list.
func (s *Server) authenticate(c *fiber.Ctx) (*middleware.TokenClaims, error) {
	raw, err := middleware.BearerToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, raw)
	if err != nil {
		return nil, err
	}
	if claims.JTI != "" && s.redis != nil {
		revoked, err := s.redis.Exists(c.UserContext(), blacklistPrefix+claims.JTI).Result()
		if err == nil && revoked > 0 {
			return nil, middleware.ErrInvalidToken
		}
	}
	// Tokens outlive deleted accounts; they must not keep writing.
	if _, err := s.userService.GetUserByID(c.UserContext(), claims.UserID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, middleware.ErrInvalidToken
		}
		return nil, models.NewInternalError(fmt.Errorf("resolve token user: %w", err))
	}
	return claims, nil
}

// optionalUserID identifies the caller on public endpoints. Anonymous or
// invalid credentials yield 0.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid, true
	}
	claims, err := s.authenticate(c)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

// callerID returns the id stored by AuthRequired.
func callerID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange a username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,expires_at=string,profile=models.ProfileResponse}
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, s.now())
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	profile, err := s.profileService.GetProfile(c.UserContext(), user.Username)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": claims.ExpiresAt.UTC(),
		"profile":    profile,
	})
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the current bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {boolean} boolean
// @Failure 401 {string} string
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*middleware.TokenClaims)
	if !ok {
		return respondError(c, models.NewUnauthenticatedError(middleware.MsgCredentialsMissing))
	}
	if s.redis != nil && claims.JTI != "" {
		ttl := claims.ExpiresAt.Sub(s.now())
		if ttl > 0 {
			if err := s.redis.Set(c.UserContext(), blacklistPrefix+claims.JTI, "1", ttl.Round(time.Second)+time.Second).Err(); err != nil {
				return respondError(c, models.NewInternalError(err))
			}
		}
	}
	return c.JSON(true)
}
