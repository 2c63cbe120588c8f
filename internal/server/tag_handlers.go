package server

import (
	"github.com/TheAXPerience/ScrapPages/internal/models"

	"github.com/gofiber/fiber/v2"
)

type tagRequest struct {
	Tag string `json:"tag" form:"tag"`
}

// tagName reads the tag from the body, falling back to the ?tag= query
// parameter for clients that cannot send a DELETE body.
func tagName(c *fiber.Ctx) string {
	var req tagRequest
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&req)
	}
	if req.Tag == "" {
		req.Tag = c.Query("tag")
	}
	return req.Tag
}

// ListTags handles GET /api/scraps/:sid/tags
// @Summary List a scrap's tags
// @Tags tags
// @Produce json
// @Param sid path int true "Scrap ID"
// @Success 200 {array} models.TagResponse
// @Failure 404 {string} string
// @Router /scraps/{sid}/tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	tags, err := s.tagService.ListTags(c.UserContext(), sid)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]models.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, tags[i].ToResponse())
	}
	return c.JSON(out)
}

// AddTag handles POST /api/scraps/:sid/tags
// @Summary Tag a scrap
// @Description Owner only. The name is normalized before it is stored.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param request body tagRequest true "Tag"
// @Success 200 {object} models.TagResponse
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/tags [post]
func (s *Server) AddTag(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	tag, err := s.tagService.AddTag(c.UserContext(), callerID(c), sid, tagName(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tag.ToResponse())
}

// RemoveTag handles DELETE /api/scraps/:sid/tags
// @Summary Remove a tag
// @Description Owner only. The name must match the stored tag exactly.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param request body tagRequest true "Tag"
// @Success 200 {boolean} boolean
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/tags [delete]
func (s *Server) RemoveTag(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	if err := s.tagService.RemoveTag(c.UserContext(), callerID(c), sid, tagName(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(true)
}
