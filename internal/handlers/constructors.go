package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gridstats/gridstats/internal/services"
)

// ConstructorLookup handles GET /api/v1/seasons/:season/constructors/lookup?name=
func (h *Handler) ConstructorLookup(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	name := c.Query("name")
	if name == "" {
		return h.fail(c, services.NewServiceError(services.CodeInvalidRequest, "name is required"))
	}

	out, err := h.analyticsService.ConstructorLookup(c.UserContext(), s, name)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, 1)
}

// ConstructorStats handles GET /api/v1/seasons/:season/constructors/:id/stats
func (h *Handler) ConstructorStats(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.ConstructorStatistics(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, out.TotalRaces)
}

// Reliability handles GET /api/v1/seasons/:season/constructors/:id/reliability
func (h *Handler) Reliability(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.Reliability(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, out.TotalRaces)
}

// Development handles GET /api/v1/seasons/:season/constructors/:id/development?window=
func (h *Handler) Development(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	window, err := queryInt(c, "window")
	if err != nil {
		return h.fail(c, err)
	}

	out, err := h.analyticsService.Development(c.UserContext(), s, c.Params("id"), window)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, len(out.Races))
}

// Pairing handles GET /api/v1/seasons/:season/constructors/:id/pairing
func (h *Handler) Pairing(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.Pairing(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, out.SharedRaces)
}
