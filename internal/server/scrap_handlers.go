package server

import (
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListScraps handles GET /api/scraps
// @Summary List scraps
// @Description All scraps, most recently updated first
// @Tags scraps
// @Produce json
// @Param limit query int false "Page size (unpaged when omitted)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ScrapResponse
// @Router /scraps [get]
func (s *Server) ListScraps(c *fiber.Ctx) error {
	page := parsePagination(c)
	scraps, err := s.scrapService.ListScraps(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ScrapResponses(scraps, s.scrapService.URLFor))
}

// CreateScrap handles POST /api/scraps
// @Summary Create a scrap
// @Description Upload a TXT, PNG, JPG or GIF file with a title
// @Tags scraps
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title (1-100 characters)"
// @Param description formData string false "Description"
// @Param file formData file true "File"
// @Param tags formData string false "JSON array string or repeated values"
// @Success 200 {object} models.ScrapResponse
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Router /scraps [post]
func (s *Server) CreateScrap(c *fiber.Ctx) error {
	file, err := uploadedFile(c, "file")
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	scrap, err := s.scrapService.CreateScrap(c.UserContext(), service.CreateScrapInput{
		UserID:      callerID(c),
		Title:       optionalString(c, "title"),
		Description: c.FormValue("description"),
		File:        file,
		Tags:        formTags(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(scrap.ToResponse(s.scrapService.URLFor))
}

// GetScrap handles GET /api/scraps/:sid
// @Summary Get a scrap
// @Tags scraps
// @Produce json
// @Param sid path int true "Scrap ID"
// @Success 200 {object} models.ScrapResponse
// @Failure 404 {string} string
// @Router /scraps/{sid} [get]
func (s *Server) GetScrap(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	scrap, err := s.scrapService.GetScrap(c.UserContext(), sid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(scrap.ToResponse(s.scrapService.URLFor))
}

// UpdateScrap handles PUT /api/scraps/:sid
// @Summary Update a scrap
// @Description Owner only. Title and description are replaced when present; tags are only added.
// @Tags scraps
// @Accept json,multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Success 200 {object} models.ScrapResponse
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid} [put]
func (s *Server) UpdateScrap(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	scrap, err := s.scrapService.UpdateScrap(c.UserContext(), service.UpdateScrapInput{
		UserID:      callerID(c),
		ScrapID:     sid,
		Title:       optionalString(c, "title"),
		Description: optionalString(c, "description"),
		Tags:        formTags(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(scrap.ToResponse(s.scrapService.URLFor))
}

// DeleteScrap handles DELETE /api/scraps/:sid
// @Summary Delete a scrap
// @Description Owner only. Removes tags, comments, likes and the stored file.
// @Tags scraps
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Success 200 {boolean} boolean
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid} [delete]
func (s *Server) DeleteScrap(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	if err := s.scrapService.DeleteScrap(c.UserContext(), callerID(c), sid); err != nil {
		return respondError(c, err)
	}
	return c.JSON(true)
}

// ListTaggedScraps handles GET /api/scraps/tagged/:tname
// @Summary Scraps by tag
// @Description Exact tag name match; an unknown tag yields an empty list
// @Tags scraps
// @Produce json
// @Param tname path string true "Tag name"
// @Success 200 {array} models.ScrapResponse
// @Router /scraps/tagged/{tname} [get]
func (s *Server) ListTaggedScraps(c *fiber.Ctx) error {
	page := parsePagination(c)
	scraps, err := s.scrapService.ListTagged(c.UserContext(), c.Params("tname"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ScrapResponses(scraps, s.scrapService.URLFor))
}

// ListUserScraps handles GET /api/profiles/:username/scraps
// @Summary Scraps by user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.ScrapResponse
// @Failure 404 {string} string
// @Router /profiles/{username}/scraps [get]
func (s *Server) ListUserScraps(c *fiber.Ctx) error {
	page := parsePagination(c)
	scraps, err := s.scrapService.ListUserScraps(c.UserContext(), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ScrapResponses(scraps, s.scrapService.URLFor))
}
