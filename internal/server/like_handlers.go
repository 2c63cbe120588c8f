package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type scrapToggle func(ctx context.Context, userID, scrapID uint) (bool, error)

type commentToggle func(ctx context.Context, userID, scrapID, commentID uint) (bool, error)

// LikeScrap handles POST /api/scraps/:sid/like
// @Summary Like a scrap
// @Description Returns false when the caller already likes it
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Success 200 {boolean} boolean
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/like [post]
func (s *Server) LikeScrap(c *fiber.Ctx) error {
	return s.toggleScrapLike(c, s.likeService.LikeScrap)
}

// UnlikeScrap handles DELETE /api/scraps/:sid/like
// @Summary Remove a scrap like
// @Description Returns false when the caller did not like it
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Success 200 {boolean} boolean
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/like [delete]
func (s *Server) UnlikeScrap(c *fiber.Ctx) error {
	return s.toggleScrapLike(c, s.likeService.UnlikeScrap)
}

// LikeComment handles POST /api/scraps/:sid/comments/:cid/like
// @Summary Like a comment
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param cid path int true "Comment ID"
// @Success 200 {boolean} boolean
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments/{cid}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.toggleCommentLike(c, s.likeService.LikeComment)
}

// UnlikeComment handles DELETE /api/scraps/:sid/comments/:cid/like
// @Summary Remove a comment like
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param cid path int true "Comment ID"
// @Success 200 {boolean} boolean
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments/{cid}/like [delete]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return s.toggleCommentLike(c, s.likeService.UnlikeComment)
}

func (s *Server) toggleScrapLike(c *fiber.Ctx, toggle scrapToggle) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	changed, err := toggle(c.UserContext(), callerID(c), sid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(changed)
}

func (s *Server) toggleCommentLike(c *fiber.Ctx, toggle commentToggle) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	cid, err := parseID(c, "cid", "Comment")
	if err != nil {
		return nil
	}
	changed, err := toggle(c.UserContext(), callerID(c), sid, cid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(changed)
}
