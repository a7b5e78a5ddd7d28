// Package config reads the server settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/viper"
)

const (
	DefaultPort      = 8080
	DefaultPublicDir = "public"
	DefaultLogLevel  = "info"
)

type Config struct {
	Host      string // empty listens on every interface
	Port      int
	PublicDir string
	LogLevel  string
	LogFile   string // empty disables the rotated file log
}

// Load reads PORT, HOST, PUBLIC_DIR, LOG_LEVEL and LOG_FILE. Unset or empty
// variables fall back to the defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "")
	v.SetDefault("public_dir", DefaultPublicDir)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.AutomaticEnv()

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", v.GetString("port"), err)
	}
	cfg := &Config{
		Host:      v.GetString("host"),
		Port:      port,
		PublicDir: v.GetString("public_dir"),
		LogLevel:  v.GetString("log_level"),
		LogFile:   v.GetString("log_file"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.PublicDir == "" {
		return fmt.Errorf("public dir must not be empty")
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
