// Package services sits between the HTTP handlers and the upstream client.
// It owns caching, parameter validation and the composition of analytics.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gridstats/gridstats/internal/ergast"
	"github.com/gridstats/gridstats/internal/utils"
)

// Service error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// FirstSeason is the first world championship season
const FirstSeason = 1950

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func invalid(format string, args ...interface{}) *ServiceError {
	return NewServiceError(CodeInvalidRequest, fmt.Sprintf(format, args...))
}

// upstreamError maps client errors to service errors. resource names what was
// asked for, e.g. "driver max_verstappen".
func upstreamError(err error, resource string) error {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var apiErr *ergast.APIError
	switch {
	case errors.Is(err, ergast.ErrNoData):
		return NewServiceError(CodeNotFound, resource+" not found")
	case errors.As(err, &apiErr) && apiErr.NotFound():
		return NewServiceError(CodeNotFound, resource+" not found")
	case errors.As(err, &apiErr) && !apiErr.Temporary():
		return NewServiceErrorWithDetails(CodeInvalidRequest, "Upstream rejected the request for "+resource,
			map[string]interface{}{"status": apiErr.StatusCode})
	case errors.Is(err, ergast.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return NewServiceErrorWithDetails(CodeUpstreamUnavailable, "Results API is unavailable",
			map[string]interface{}{"error": err.Error()})
	}
	return NewServiceErrorWithDetails(CodeInternal, "Failed to load "+resource,
		map[string]interface{}{"error": err.Error()})
}

// ParseSeason accepts "current" or a championship year
func ParseSeason(s string) (string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == utils.CurrentSeason {
		return utils.CurrentSeason, nil
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return "", invalid("season must be %q or a year, got %q", utils.CurrentSeason, s)
	}
	if year < FirstSeason || year > time.Now().Year()+1 {
		return "", invalid("season %d is outside %d-%d", year, FirstSeason, time.Now().Year()+1)
	}
	return strconv.Itoa(year), nil
}

// ParseSeasonRange validates an inclusive from/to year range. Empty bounds
// default to the last season and the span is capped at maxSpan seasons.
func ParseSeasonRange(from, to string, maxSpan int) (int, int, error) {
	last := time.Now().Year()

	end := last
	if to != "" {
		v, err := strconv.Atoi(to)
		if err != nil {
			return 0, 0, invalid("to must be a year, got %q", to)
		}
		end = v
	}

	start := end
	if from != "" {
		v, err := strconv.Atoi(from)
		if err != nil {
			return 0, 0, invalid("from must be a year, got %q", from)
		}
		start = v
	}

	switch {
	case start < FirstSeason || end > last+1:
		return 0, 0, invalid("seasons must be within %d-%d", FirstSeason, last+1)
	case start > end:
		return 0, 0, invalid("from (%d) is after to (%d)", start, end)
	case maxSpan > 0 && end-start+1 > maxSpan:
		return 0, 0, invalid("at most %d seasons per request", maxSpan)
	}
	return start, end, nil
}
