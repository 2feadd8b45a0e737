package config

import (
	"strings"
	"time"
)

// HarvestConfig contains configuration for locating and mailing fatal-error logs.
type HarvestConfig struct {
	// LogDir is the directory the platform writes fatal-errors-*.log files into.
	LogDir string `env:"HARVEST_LOG_DIR" envDefault:"/var/www/html/wp-content/uploads/wc-logs"`

	// SiteName prefixes the email subject, e.g. "[Shop]".
	SiteName string `env:"HARVEST_SITE_NAME" envDefault:""`

	// PlatformName appears in the email subject after the site name.
	PlatformName string `env:"HARVEST_PLATFORM_NAME" envDefault:"WooCommerce"`

	// RecoveryModeEmail is the deployment-level recovery contact used when no
	// recipients are configured in the settings store.
	RecoveryModeEmail string `env:"RECOVERY_MODE_EMAIL"`

	// Timezone is the zone used to compute "yesterday" when naming log files.
	Timezone string `env:"HARVEST_TIMEZONE" envDefault:"UTC"`
}

// Sanitize normalises harvest configuration values.
func (h *HarvestConfig) Sanitize() {
	h.LogDir = strings.TrimSpace(h.LogDir)
	h.SiteName = strings.TrimSpace(h.SiteName)
	h.PlatformName = strings.TrimSpace(h.PlatformName)
	if h.PlatformName == "" {
		h.PlatformName = "WooCommerce"
	}
	h.RecoveryModeEmail = strings.TrimSpace(h.RecoveryModeEmail)
	if _, err := time.LoadLocation(h.Timezone); err != nil || strings.TrimSpace(h.Timezone) == "" {
		h.Timezone = "UTC"
	}
}

// Location returns the harvest timezone, falling back to UTC.
func (h *HarvestConfig) Location() *time.Location {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
