package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:           "development",
		Port:          "8080",
		JWTSecret:     "secure-secret-at-least-32-chars-long",
		DBDriver:      "postgres",
		DBPassword:    "secure-password",
		DBSSLMode:     "require",
		StorageDriver: "local",
		MediaRoot:     "/tmp/media",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite driver", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"unknown storage driver", func(c *Config) { c.StorageDriver = "s3" }, true},
		{"local storage without media root", func(c *Config) { c.MediaRoot = "" }, true},
		{"minio without bucket", func(c *Config) {
			c.StorageDriver = "minio"
			c.MinioEndpoint = "localhost:9000"
		}, true},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production with short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"production with default db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"production sqlite ignores db password", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBPassword = ""
		}, false},
		{"production minio without credentials", func(c *Config) {
			c.Env = "production"
			c.StorageDriver = "minio"
			c.MinioEndpoint = "minio:9000"
			c.MinioBucket = "scraps"
		}, true},
		{"production minio with credentials", func(c *Config) {
			c.Env = "production"
			c.StorageDriver = "minio"
			c.MinioEndpoint = "minio:9000"
			c.MinioBucket = "scraps"
			c.MinioAccessKey = "access"
			c.MinioSecretKey = "secret"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("MEDIA_URL", "http://cdn.local/media")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "http://cdn.local/media/", c.MediaURL)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, int64(10*1024*1024), c.UploadMaxBytes())
}
