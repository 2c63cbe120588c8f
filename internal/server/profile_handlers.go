package server

import (
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createAccountRequest struct {
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	Email     string `json:"email" form:"email"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

// ListProfiles handles GET /api/profiles
// @Summary List profiles
// @Description Every profile ordered by username
// @Tags profiles
// @Produce json
// @Success 200 {array} models.ProfileResponse
// @Router /profiles [get]
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.ListProfiles(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]models.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ToResponse(s.profileService.URLFor))
	}
	return c.JSON(out)
}

// CreateAccount handles POST /api/profiles
// @Summary Create an account
// @Description Registers a user; the profile is provisioned with it
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body createAccountRequest true "Account"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {string} string
// @Router /profiles [post]
func (s *Server) CreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	profile, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile.ToResponse(s.profileService.URLFor))
}

// GetProfile handles GET /api/profiles/:username
// @Summary Get a profile
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.ProfileResponse
// @Failure 404 {string} string
// @Router /profiles/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT /api/profiles/:username
// @Summary Update a profile
// @Description Own profile only. Accepts JSON or multipart with a profile_picture file.
// @Tags profiles
// @Accept json,multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param display_name formData string false "Display name"
// @Param description formData string false "Description"
// @Param profile_picture formData file false "PNG or JPG picture"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /profiles/{username} [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	picture, err := uploadedFile(c, "profile_picture")
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	profile, err := s.profileService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:      callerID(c),
		Username:    c.Params("username"),
		DisplayName: optionalString(c, "display_name"),
		Description: optionalString(c, "description"),
		Picture:     picture,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile.ToResponse(s.profileService.URLFor))
}

// DeleteAccount handles DELETE /api/profiles/:username
// @Summary Delete an account
// @Description Own account only. Scraps and comments move to the "deleted" account.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {boolean} boolean
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /profiles/{username} [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.UserContext(), callerID(c), c.Params("username")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(true)
}
