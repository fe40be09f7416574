package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Profile names for the subject binary build.
const (
	ProfileDebug   = "debug"
	ProfileRelease = "release"
)

// Config represents the harness configuration
type Config struct {
	Subject Subject `mapstructure:"subject"`
	Sandbox Sandbox `mapstructure:"sandbox"`
	Assert  Assert  `mapstructure:"assert"`
	Fuzz    Fuzz    `mapstructure:"fuzz"`
	Logging Logging `mapstructure:"logging"`
	Server  Server  `mapstructure:"server"`
}

// Subject describes how to locate the binary under test
type Subject struct {
	// Name of the binary. Empty means "derive from the build metadata
	// of the test binary".
	Name string `mapstructure:"name"`
	// BinDir is the directory holding per-profile build output.
	// The resolved path is <bin_dir>/<profile>/<name>.
	BinDir  string `mapstructure:"bin_dir"`
	Profile string `mapstructure:"profile"`
}

// Sandbox holds per-project behavior
type Sandbox struct {
	// KeepDirs leaves project directories on disk after Close,
	// for postmortem inspection.
	KeepDirs   bool `mapstructure:"keep_dirs"`
	TimeoutSec int  `mapstructure:"timeout_sec"`
}

// Assert selects the assertion strategies
type Assert struct {
	// Regex treats expected stdout/stderr values as regular expressions.
	Regex bool `mapstructure:"regex"`
	// Pretty renders unified diffs on mismatch instead of a plain
	// expected/actual dump.
	Pretty bool `mapstructure:"pretty"`
}

// Fuzz configures the randomized input source
type Fuzz struct {
	// Seed makes generated inputs reproducible. Zero picks a random
	// seed, which is logged so a failing run can be replayed.
	Seed uint64 `mapstructure:"seed"`
}

// Logging holds logger configuration
type Logging struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// Server holds MCP server configuration
type Server struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// New loads and validates the harness configuration
func New() (*Config, error) {
	viper.SetConfigName("clisandbox")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("CLISANDBOX")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("subject.name", "")
	viper.SetDefault("subject.bin_dir", "bin")
	viper.SetDefault("subject.profile", ProfileDebug)
	viper.SetDefault("sandbox.keep_dirs", false)
	viper.SetDefault("sandbox.timeout_sec", 0)
	viper.SetDefault("assert.regex", false)
	viper.SetDefault("assert.pretty", true)
	viper.SetDefault("fuzz.seed", 0)
	viper.SetDefault("logging.mode", "development")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no config file or
// environment is consulted, for library callers that construct
// projects directly.
func Default() *Config {
	return &Config{
		Subject: Subject{BinDir: "bin", Profile: ProfileDebug},
		Assert:  Assert{Pretty: true},
		Logging: Logging{Mode: "development", Level: "info"},
		Server:  Server{Transport: "stdio", HTTPPort: 8080},
	}
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	// Exactly one profile applies per harness run.
	if c.Subject.Profile != ProfileDebug && c.Subject.Profile != ProfileRelease {
		return fmt.Errorf("invalid subject.profile: %s, must be 'debug' or 'release'", c.Subject.Profile)
	}

	if c.Subject.BinDir == "" {
		return fmt.Errorf("subject.bin_dir must not be empty")
	}

	if c.Sandbox.TimeoutSec < 0 {
		return fmt.Errorf("sandbox.timeout_sec must not be negative, got: %d", c.Sandbox.TimeoutSec)
	}

	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	return nil
}

// GetTimeout returns the command execution timeout as a duration.
// Zero means no timeout.
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutSec) * time.Second
}
