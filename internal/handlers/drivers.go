package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gridstats/gridstats/internal/services"
	"github.com/gridstats/gridstats/internal/utils"
)

// DriverLookup handles GET /api/v1/seasons/:season/drivers/lookup?name=
func (h *Handler) DriverLookup(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	name := c.Query("name")
	if name == "" {
		return h.fail(c, services.NewServiceError(services.CodeInvalidRequest, "name is required"))
	}

	out, err := h.analyticsService.DriverLookup(c.UserContext(), s, name)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, 1)
}

// DriverStats handles GET /api/v1/seasons/:season/drivers/:id/stats
func (h *Handler) DriverStats(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.DriverStatistics(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, out.TotalRaces)
}

// DriverAnalytics handles GET /api/v1/seasons/:season/drivers/:id/analytics
func (h *Handler) DriverAnalytics(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.DriverAnalytics(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, out.DNF.Total)
}

// DriverTrend handles GET /api/v1/seasons/:season/drivers/:id/trends?metric=
func (h *Handler) DriverTrend(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	points, err := h.analyticsService.DriverTrend(c.UserContext(), s, c.Params("id"), c.Query("metric"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, points, len(points))
}

// DriverPercentile handles GET /api/v1/seasons/:season/drivers/:id/percentile
func (h *Handler) DriverPercentile(c *fiber.Ctx) error {
	s, err := season(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.analyticsService.DriverPercentile(c.UserContext(), s, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, s, out, out.ReferenceSize)
}

// DriverSeasons handles GET /api/v1/drivers/:id/seasons?from=&to=
func (h *Handler) DriverSeasons(c *fiber.Ctx) error {
	from, to, err := services.ParseSeasonRange(c.Query("from"), c.Query("to"), 0)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.analyticsService.DriverSeasons(ctx, c.Params("id"), from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, "", rows, len(rows))
}

// DriverCircuit handles GET /api/v1/drivers/:id/circuits/:circuitId?min=
func (h *Handler) DriverCircuit(c *fiber.Ctx) error {
	minAppearances, err := queryInt(c, "min")
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.analyticsService.DriverCircuit(ctx, c.Params("id"), c.Params("circuitId"), minAppearances)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, "", out, out.Appearances)
}

// CircuitDifficulty handles GET /api/v1/circuits/difficulty?from=&to=
func (h *Handler) CircuitDifficulty(c *fiber.Ctx) error {
	from, to, err := services.ParseSeasonRange(c.Query("from"), c.Query("to"), utils.MaxSeasonSpan)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.analyticsService.CircuitDifficulty(ctx, from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, "", rows, len(rows))
}

// CircuitHistory handles GET /api/v1/circuits/:circuitId/difficulty
func (h *Handler) CircuitHistory(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	row, err := h.analyticsService.CircuitHistory(ctx, c.Params("circuitId"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, "", row, row.Races)
}
