package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/services"
)

// InvalidateCache handles POST /api/v1/cache/invalidate
func (h *Handler) InvalidateCache(c *fiber.Ctx) error {
	var req models.InvalidateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, services.NewServiceError(services.CodeInvalidRequest, "Invalid request body: "+err.Error()))
	}

	req.Prefix = strings.TrimSpace(req.Prefix)
	if req.Prefix == "" {
		return h.fail(c, services.NewServiceError(services.CodeInvalidRequest, "prefix is required"))
	}

	var (
		removed   int
		broadcast bool
	)
	if h.invalidator != nil {
		for _, prefix := range services.InvalidationPrefixes(req.Prefix, time.Now().Year()) {
			n, sent, err := h.invalidator.Invalidate(c.UserContext(), prefix)
			if err != nil {
				return h.fail(c, err)
			}
			removed += n
			broadcast = broadcast || sent
		}
	}

	return c.JSON(models.DataResponse{
		Data: models.InvalidateResponse{Prefix: req.Prefix, Removed: removed, Broadcast: broadcast},
	})
}
