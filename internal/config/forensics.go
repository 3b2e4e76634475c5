package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvForensicsCheckTimeout      = "LENDGUARD_FORENSICS_CHECK_TIMEOUT"
	EnvForensicsIdentifierTimeout = "LENDGUARD_FORENSICS_IDENTIFIER_TIMEOUT"
	EnvForensicsQualityDPI        = "LENDGUARD_FORENSICS_QUALITY_DPI"
	EnvForensicsIdentifierDPI     = "LENDGUARD_FORENSICS_IDENTIFIER_DPI"
	EnvForensicsDenylist          = "LENDGUARD_FORENSICS_DENYLIST"
)

// ForensicsConfig holds tuning parameters for the analysis pipeline.
type ForensicsConfig struct {
	CheckTimeout      string   `toml:"check_timeout"`
	IdentifierTimeout string   `toml:"identifier_timeout"`
	QualityDPI        int      `toml:"quality_dpi"`
	IdentifierDPI     int      `toml:"identifier_dpi"`
	Denylist          []string `toml:"denylist"`
}

// CheckTimeoutDuration returns CheckTimeout as a time.Duration.
func (c *ForensicsConfig) CheckTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CheckTimeout)
	return d
}

// IdentifierTimeoutDuration returns IdentifierTimeout as a time.Duration.
func (c *ForensicsConfig) IdentifierTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdentifierTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ForensicsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ForensicsConfig) Merge(overlay *ForensicsConfig) {
	if overlay.CheckTimeout != "" {
		c.CheckTimeout = overlay.CheckTimeout
	}
	if overlay.IdentifierTimeout != "" {
		c.IdentifierTimeout = overlay.IdentifierTimeout
	}
	if overlay.QualityDPI != 0 {
		c.QualityDPI = overlay.QualityDPI
	}
	if overlay.IdentifierDPI != 0 {
		c.IdentifierDPI = overlay.IdentifierDPI
	}
	if len(overlay.Denylist) > 0 {
		c.Denylist = overlay.Denylist
	}
}

func (c *ForensicsConfig) loadDefaults() {
	if c.CheckTimeout == "" {
		c.CheckTimeout = "30s"
	}
	if c.IdentifierTimeout == "" {
		c.IdentifierTimeout = "60s"
	}
	if c.QualityDPI == 0 {
		c.QualityDPI = 150
	}
	if c.IdentifierDPI == 0 {
		c.IdentifierDPI = 300
	}
}

func (c *ForensicsConfig) loadEnv() {
	if v := os.Getenv(EnvForensicsCheckTimeout); v != "" {
		c.CheckTimeout = v
	}
	if v := os.Getenv(EnvForensicsIdentifierTimeout); v != "" {
		c.IdentifierTimeout = v
	}
	if v := os.Getenv(EnvForensicsQualityDPI); v != "" {
		if dpi, err := strconv.Atoi(v); err == nil {
			c.QualityDPI = dpi
		}
	}
	if v := os.Getenv(EnvForensicsIdentifierDPI); v != "" {
		if dpi, err := strconv.Atoi(v); err == nil {
			c.IdentifierDPI = dpi
		}
	}
	if v := os.Getenv(EnvForensicsDenylist); v != "" {
		c.Denylist = splitList(v)
	}
}

func (c *ForensicsConfig) validate() error {
	if _, err := time.ParseDuration(c.CheckTimeout); err != nil {
		return fmt.Errorf("invalid check_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.IdentifierTimeout); err != nil {
		return fmt.Errorf("invalid identifier_timeout: %w", err)
	}
	if c.QualityDPI < 72 {
		return fmt.Errorf("quality_dpi too low: %d", c.QualityDPI)
	}
	if c.IdentifierDPI < 72 {
		return fmt.Errorf("identifier_dpi too low: %d", c.IdentifierDPI)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
