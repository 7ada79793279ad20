package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/models"
	"github.com/gridstats/gridstats/internal/services"
)

// StatusForCode maps a service error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case services.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case services.CodeNotFound:
		return fiber.StatusNotFound
	case services.CodeUpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return services.CodeInvalidRequest
	case fiber.StatusNotFound:
		return services.CodeNotFound
	case fiber.StatusServiceUnavailable:
		return services.CodeUpstreamUnavailable
	case fiber.StatusInternalServerError:
		return services.CodeInternal
	default:
		return "ERROR"
	}
}

// WriteError renders err as an ErrorResponse. Service errors keep their
// code and details; anything else becomes a 500 without internals.
func WriteError(c *fiber.Ctx, err error) error {
	detail := models.ErrorDetail{
		Code:    services.CodeInternal,
		Message: "Internal Server Error",
		Path:    c.Path(),
	}
	status := fiber.StatusInternalServerError

	var svcErr *services.ServiceError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &svcErr):
		status = StatusForCode(svcErr.Code)
		detail.Code = svcErr.Code
		detail.Message = svcErr.Message
		detail.Details = svcErr.Details
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		detail.Code = codeForStatus(fiberErr.Code)
		detail.Message = fiberErr.Message
	}

	return c.Status(status).JSON(models.ErrorResponse{Error: detail})
}

// ErrorHandler returns a custom error handler middleware
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger.WithContext(c.UserContext()).Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"error", err,
		)
		return WriteError(c, err)
	}
}
