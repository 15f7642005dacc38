package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	Env               string        `mapstructure:"env" yaml:"env"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	Location          string        `mapstructure:"location" yaml:"location"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	PostRatePerMinute int           `mapstructure:"post_rate_per_minute" yaml:"post_rate_per_minute"`
	CORSOrigins       []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	Admin             AdminConfig   `mapstructure:"admin" yaml:"admin"`
}

// AdminConfig is the single shared credential pair guarding the admin surface.
type AdminConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3000",
		Env:               "development",
		LogLevel:          "info",
		DatabasePath:      "data/messages.db",
		Location:          "default",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		MaxBodyBytes:      10 << 10,
		PostRatePerMinute: 10,
		Admin: AdminConfig{
			Username: "admin",
			Password: "changeme",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.Env != "" {
		c.Env = other.Env
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.Location != "" {
		c.Location = other.Location
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.MaxBodyBytes != 0 {
		c.MaxBodyBytes = other.MaxBodyBytes
	}
	if other.PostRatePerMinute != 0 {
		c.PostRatePerMinute = other.PostRatePerMinute
	}
	if len(other.CORSOrigins) > 0 {
		c.CORSOrigins = other.CORSOrigins
	}
	if other.Admin.Username != "" {
		c.Admin.Username = other.Admin.Username
	}
	if other.Admin.Password != "" {
		c.Admin.Password = other.Admin.Password
	}
}
