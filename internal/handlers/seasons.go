package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gridstats/gridstats/internal/models"
)

// DriverStandings handles GET /api/v1/seasons/:season/standings/drivers
func (h *Handler) DriverStandings(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	rows, err := h.dataService.DriverStandings(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, rows, len(rows))
}

// ConstructorStandings handles GET /api/v1/seasons/:season/standings/constructors
func (h *Handler) ConstructorStandings(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	rows, err := h.dataService.ConstructorStandings(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, rows, len(rows))
}

// Schedule handles GET /api/v1/seasons/:season/schedule
func (h *Handler) Schedule(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	races, err := h.dataService.Schedule(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, races, len(races))
}

// NextRace handles GET /api/v1/seasons/:season/races/next
func (h *Handler) NextRace(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	next, err := h.analyticsService.NextRace(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, next, 1)
}

// LastRace handles GET /api/v1/seasons/:season/races/last
func (h *Handler) LastRace(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	last, err := h.analyticsService.LatestRace(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, last, len(last.Results))
}

// Progression handles GET /api/v1/seasons/:season/progression
func (h *Handler) Progression(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	points, err := h.analyticsService.Progression(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, points, len(points))
}

// GridProbability handles GET /api/v1/seasons/:season/grid-probability
func (h *Handler) GridProbability(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	rows, err := h.analyticsService.GridProbability(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, rows, len(rows))
}

// Correlation handles GET /api/v1/seasons/:season/correlation
func (h *Handler) Correlation(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.Correlation(c.UserContext(), s)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, len(out.Drivers))
}

// Projection handles GET /api/v1/seasons/:season/projection
func (h *Handler) Projection(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.analyticsService.Projection(ctx, s)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(models.DataResponse{
		Data: out,
		Meta: &models.Meta{Season: s, Count: len(out.Rows), Notice: out.Notice},
	})
}

// Compare handles GET /api/v1/seasons/:season/compare?drivers=a,b,c
func (h *Handler) Compare(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}

	var ids []string
	if raw := c.Query("drivers"); raw != "" {
		ids = strings.Split(raw, ",")
	}

	rows, err := h.analyticsService.Compare(c.UserContext(), s, ids)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, rows, len(rows))
}
