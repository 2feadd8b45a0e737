package config

import (
	"fmt"
	"strings"
	"time"
)

// SchedulerConfig contains scheduler service configuration.
type SchedulerConfig struct {
	// BatchSize is the number of due triggers to process per tick.
	BatchSize int `env:"SCHEDULER_BATCH_SIZE" envDefault:"10"`

	// Interval is the scheduler tick interval.
	Interval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"30s"`

	// RunAt is the local wall-clock time (HH:MM) of the daily harvest.
	RunAt string `env:"SCHEDULER_RUN_AT" envDefault:"05:00"`

	// Timezone is the zone RunAt is interpreted in. "Local" uses the server zone.
	Timezone string `env:"SCHEDULER_TIMEZONE" envDefault:"Local"`
}

// Sanitize applies guardrails to scheduler configuration values.
func (s *SchedulerConfig) Sanitize() {
	if s.BatchSize < 1 {
		s.BatchSize = 1
	}
	if s.Interval < time.Second {
		s.Interval = time.Second
	}
	if _, _, err := ParseClock(s.RunAt); err != nil {
		s.RunAt = "05:00"
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil || strings.TrimSpace(s.Timezone) == "" {
		s.Timezone = "Local"
	}
}

// Location returns the scheduler timezone, falling back to time.Local.
func (s *SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RunAtClock returns the configured hour and minute of the daily run.
func (s *SchedulerConfig) RunAtClock() (int, int) {
	h, m, err := ParseClock(s.RunAt)
	if err != nil {
		return 5, 0
	}
	return h, m
}

// ParseClock parses an HH:MM wall-clock string.
func ParseClock(v string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", v, err)
	}
	return t.Hour(), t.Minute(), nil
}
