package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Feature flags
// @Description Evaluated feature flags for the caller
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(map[string]bool{})
	}
	userID, _ := s.optionalUserID(c)
	return c.JSON(s.featureFlags.Snapshot(userID))
}
