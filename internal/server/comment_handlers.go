package server

import (
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content" form:"content"`
}

// ListComments handles GET /api/scraps/:sid/comments
// @Summary List comments on a scrap
// @Description Top-level comments and replies, most recently updated first
// @Tags comments
// @Produce json
// @Param sid path int true "Scrap ID"
// @Success 200 {array} models.CommentResponse
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), sid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.CommentResponses(comments))
}

// CreateComment handles POST /api/scraps/:sid/comments
// @Summary Comment on a scrap
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param request body commentRequest true "Comment"
// @Success 200 {object} models.CommentResponse
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	return s.createComment(c, sid, nil)
}

// CreateReply handles POST /api/scraps/:sid/comments/:cid
// @Summary Reply to a comment
// @Description The parent comment must belong to the same scrap
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param cid path int true "Parent comment ID"
// @Param request body commentRequest true "Reply"
// @Success 200 {object} models.CommentResponse
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments/{cid} [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	cid, err := parseID(c, "cid", "Comment")
	if err != nil {
		return nil
	}
	return s.createComment(c, sid, &cid)
}

func (s *Server) createComment(c *fiber.Ctx, sid uint, replyTo *uint) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:    callerID(c),
		ScrapID:   sid,
		ReplyToID: replyTo,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment.ToResponse())
}

// GetComment handles GET /api/scraps/:sid/comments/:cid
// @Summary Get a comment
// @Tags comments
// @Produce json
// @Param sid path int true "Scrap ID"
// @Param cid path int true "Comment ID"
// @Success 200 {object} models.CommentResponse
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments/{cid} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	cid, err := parseID(c, "cid", "Comment")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), sid, cid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment.ToResponse())
}

// UpdateComment handles PUT /api/scraps/:sid/comments/:cid
// @Summary Edit a comment
// @Description Owner only; only the content can change
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param cid path int true "Comment ID"
// @Param request body commentRequest true "New content"
// @Success 200 {object} models.CommentResponse
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments/{cid} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	cid, err := parseID(c, "cid", "Comment")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    callerID(c),
		ScrapID:   sid,
		CommentID: cid,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment.ToResponse())
}

// DeleteComment handles DELETE /api/scraps/:sid/comments/:cid
// @Summary Delete a comment
// @Description Owner only; replies are deleted with it
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param sid path int true "Scrap ID"
// @Param cid path int true "Comment ID"
// @Success 200 {boolean} boolean
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /scraps/{sid}/comments/{cid} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	sid, err := parseID(c, "sid", "Scrap")
	if err != nil {
		return nil
	}
	cid, err := parseID(c, "cid", "Comment")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    callerID(c),
		ScrapID:   sid,
		CommentID: cid,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(true)
}
