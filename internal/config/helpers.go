package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
)

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// Location returns the configured display timezone.
// Accepts IANA names ("Europe/Monaco") and offsets ("+09:00"); anything else is UTC.
func (c *DisplayConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}

	if loc, err := parseOffsetTimezone(c.Timezone); err == nil {
		return loc
	}

	return time.UTC
}

func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid offset format: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, _ := strconv.Atoi(matches[2])
	minutes, _ := strconv.Atoi(matches[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("offset out of range: %s", offset)
	}

	return time.FixedZone(offset, sign*(hours*3600+minutes*60)), nil
}
