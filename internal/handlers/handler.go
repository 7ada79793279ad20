package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gridstats/gridstats/internal/cache"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/middleware"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/services"
	"github.com/gridstats/gridstats/internal/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger       *logging.Logger
	version      string
	cacheBackend string
	// Services
	dataService      *services.DataService
	analyticsService *services.AnalyticsService
	invalidator      *cache.Invalidator
}

// New creates a new handler instance
func New(logger *logging.Logger, version, cacheBackend string,
	dataService *services.DataService, analyticsService *services.AnalyticsService,
	invalidator *cache.Invalidator,
) *Handler {
	return &Handler{
		logger:           logger,
		version:          version,
		cacheBackend:     cacheBackend,
		dataService:      dataService,
		analyticsService: analyticsService,
		invalidator:      invalidator,
	}
}

// requestContext bounds handlers that may fan out to several upstream calls
func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), utils.AnalyticsRequestTimeout)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	logger := h.logger.WithContext(c.UserContext())

	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) && middleware.StatusForCode(svcErr.Code) < fiber.StatusInternalServerError {
		logger.Debug("Request rejected", "path", c.Path(), "code", svcErr.Code, "error", err)
	} else {
		logger.Error("Request failed", "path", c.Path(), "error", err)
	}
	return middleware.WriteError(c, err)
}

// respond wraps data in a DataResponse; count applies to list payloads
func respond(c *fiber.Ctx, season string, data interface{}, count int) error {
	return c.JSON(models.DataResponse{
		Data: data,
		Meta: &models.Meta{Season: season, Count: count},
	})
}

// season parses the :season route parameter
func season(c *fiber.Ctx) (string, error) {
	return services.ParseSeason(c.Params("season"))
}

// queryInt reads an optional positive integer query parameter
func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, services.NewServiceError(services.CodeInvalidRequest, name+" must be a positive integer")
	}
	return v, nil
}
