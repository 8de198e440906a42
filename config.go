package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the audit settings. Domain thresholds default to the
// constants the dashboard was built around; only the deployment-specific
// values normally need a config file.
type Config struct {
	Capacity       int    `koanf:"capacity"`
	DormancyDays   int    `koanf:"dormancy_days"`
	ExpiringDays   int    `koanf:"expiring_days"`
	RecentLimit    int    `koanf:"recent_limit"`
	Listen         string `koanf:"listen"`
	RefreshMinutes int    `koanf:"refresh_minutes"`

	DB struct {
		Schema string `koanf:"schema"`
		Tag    string `koanf:"tag"`
	} `koanf:"db"`
}

// loadConfig layers defaults, an optional TOML file, and FUE_AUDIT_* env
// variables, in that order.
func loadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"capacity":        500,
		"dormancy_days":   30,
		"expiring_days":   90,
		"recent_limit":    5,
		"listen":          ":8799",
		"refresh_minutes": 15,
		"db.schema":       "fue_license_audit",
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./fue-license-audit.toml", "$HOME/.fue-license-audit.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Double underscore nests: FUE_AUDIT_DB__SCHEMA -> db.schema.
	k.Load(env.Provider("FUE_AUDIT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FUE_AUDIT_")), "__", ".", -1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if config.Capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative")
	}
	if config.DormancyDays <= 0 || config.ExpiringDays <= 0 {
		return nil, fmt.Errorf("dormancy_days and expiring_days must be positive")
	}
	if config.RecentLimit <= 0 {
		return nil, fmt.Errorf("recent_limit must be positive")
	}
	if config.RefreshMinutes <= 0 {
		return nil, fmt.Errorf("refresh_minutes must be positive")
	}

	return &config, nil
}

// initConfig writes a sample configuration file.
func initConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# FUE License Audit Configuration

# Contracted FUE license capacity.
capacity = 500

# A user with no logon for this many days counts as dormant.
dormancy_days = 30

# An expiration end date within this many days shows as Expiring.
expiring_days = 90

# Maximum entries on the recent-activity widget.
recent_limit = 5

# Dashboard feed server.
listen = ":8799"
refresh_minutes = 15

[db]
schema = "fue_license_audit"
tag = ""
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}
