package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:        "development",
			Port:       "8480",
			JWTSecret:  "secure-secret-at-least-32-chars-long",
			DBPassword: "secure-password",
		}
	}

	t.Run("Development Defaults Pass", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("Missing Port", func(t *testing.T) {
		c := base()
		c.Port = ""
		assert.Error(t, c.Validate())
	})

	t.Run("Missing JWT Secret", func(t *testing.T) {
		c := base()
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("Production Rejects Default JWT Secret", func(t *testing.T) {
		c := base()
		c.Env = "production"
		c.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, c.Validate())
	})

	t.Run("Production Rejects Short JWT Secret", func(t *testing.T) {
		c := base()
		c.Env = "production"
		c.JWTSecret = "short"
		assert.Error(t, c.Validate())
	})

	t.Run("Production Rejects Default DB Password", func(t *testing.T) {
		c := base()
		c.Env = "prod"
		c.DBPassword = "password"
		assert.Error(t, c.Validate())
	})
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "9999")
	t.Setenv("SEED_DEMO_DATA", "true")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "development", c.Env)
	assert.True(t, c.SeedDemoData)
	// untouched values fall back to defaults
	assert.Equal(t, "townsquare", c.DBName)
	assert.Equal(t, 60, c.EventSweepMinutes)
}

func TestConfig_FeatureEnabled(t *testing.T) {
	tests := []struct {
		name    string
		flags   string
		flag    string
		enabled bool
	}{
		{"On", "live_feed=on", "live_feed", true},
		{"True", "payments=true", "payments", true},
		{"Numeric", "payments=1", "payments", true},
		{"Off", "live_feed=off", "live_feed", false},
		{"Unknown Flag", "live_feed=on", "payments", false},
		{"Mixed List", "live_feed=off, payments=on", "payments", true},
		{"Case Insensitive", "Live_Feed=ON", "live_feed", true},
		{"Malformed Pair", "live_feed", "live_feed", false},
		{"Empty", "", "live_feed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Features: tt.flags}
			assert.Equal(t, tt.enabled, c.FeatureEnabled(tt.flag))
		})
	}
}
