package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/gridstats/gridstats/internal/ergast"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    CodeNotFound,
		Message: "driver nobody not found",
	}

	if err.Error() != "driver nobody not found" {
		t.Errorf("Expected 'driver nobody not found', got '%s'", err.Error())
	}
}

func TestNewServiceError(t *testing.T) {
	err := NewServiceError(CodeInvalidRequest, "Error message")

	if err.Code != CodeInvalidRequest {
		t.Errorf("Expected code '%s', got '%s'", CodeInvalidRequest, err.Code)
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{"field": "drivers"}
	err := NewServiceErrorWithDetails(CodeInvalidRequest, "Validation failed", details)

	if err.Details["field"] != "drivers" {
		t.Errorf("Expected field 'drivers', got '%v'", err.Details["field"])
	}
}

func TestUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no data", ergast.ErrNoData, CodeNotFound},
		{"404", &ergast.APIError{StatusCode: 404}, CodeNotFound},
		{"400", &ergast.APIError{StatusCode: 400}, CodeInvalidRequest},
		{"unavailable", fmt.Errorf("%w: gave up", ergast.ErrUnavailable), CodeUpstreamUnavailable},
		{"deadline", context.DeadlineExceeded, CodeUpstreamUnavailable},
		{"decode", errors.New("ergast: decode: bad json"), CodeInternal},
		{"passthrough", NewServiceError(CodeInvalidRequest, "bad"), CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svcErr *ServiceError
			if !errors.As(upstreamError(tt.err, "driver x"), &svcErr) {
				t.Fatalf("Expected *ServiceError")
			}
			if svcErr.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, svcErr.Code)
			}
		})
	}

	if upstreamError(nil, "x") != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestParseSeason(t *testing.T) {
	valid := map[string]string{
		"":        "current",
		"current": "current",
		"CURRENT": "current",
		"2024":    "2024",
		" 1950 ":  "1950",
	}
	for in, want := range valid {
		got, err := ParseSeason(in)
		if err != nil {
			t.Errorf("ParseSeason(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseSeason(%q) = %q, want %q", in, got, want)
		}
	}

	future := strconv.Itoa(time.Now().Year() + 2)
	for _, in := range []string{"1949", future, "last", "20x4"} {
		_, err := ParseSeason(in)
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) || svcErr.Code != CodeInvalidRequest {
			t.Errorf("ParseSeason(%q) expected INVALID_REQUEST, got %v", in, err)
		}
	}
}

func TestParseSeasonRange(t *testing.T) {
	from, to, err := ParseSeasonRange("2019", "2023", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from != 2019 || to != 2023 {
		t.Errorf("Expected 2019-2023, got %d-%d", from, to)
	}

	from, to, err = ParseSeasonRange("", "2020", 10)
	if err != nil || from != 2020 || to != 2020 {
		t.Errorf("Expected single season 2020, got %d-%d (%v)", from, to, err)
	}

	for _, r := range [][2]string{{"2023", "2019"}, {"1900", "1960"}, {"2000", "2020"}, {"x", "2020"}} {
		if _, _, err := ParseSeasonRange(r[0], r[1], 10); err == nil {
			t.Errorf("Expected error for %v", r)
		}
	}
}
