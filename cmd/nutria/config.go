// ABOUTME: Viper-backed configuration for the nutria CLI: nutria.yaml, NUTRIA_ environment variables, defaults.
// ABOUTME: Resolves the HTTP address, database path, cache stale time, and log level.
package main

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/nutria/query"
	"github.com/spf13/viper"
)

const (
	configFileName = "nutria"
	configFileType = "yaml"
	envPrefix      = "NUTRIA"

	cfgKeyHTTPAddress  = "http.address"
	cfgKeyHTTPPort     = "http.port"
	cfgKeyDatabasePath = "database.path"
	cfgKeyStaleTime    = "cache.stale_time"
	cfgKeyLogLevel     = "log.level"
	cfgKeyLogFormat    = "log.format"
)

// Config is the resolved CLI configuration.
type Config struct {
	HTTPAddress  string
	HTTPPort     int
	DatabasePath string
	StaleTime    time.Duration
	LogLevel     string
	LogFormat    string // "json" or "console"

	// File is the config file that was read, empty when none was found.
	File string
}

// ListenAddr joins the HTTP address and port.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.HTTPAddress, strconv.Itoa(c.HTTPPort))
}

// loadConfig reads configuration. An explicit path must exist; otherwise
// nutria.yaml is looked up in the working directory and the nutria config
// directory, and a missing file is not an error. NUTRIA_ environment variables
// override the file, with dots in keys written as underscores
// (NUTRIA_HTTP_PORT).
func loadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyHTTPAddress, "127.0.0.1")
	v.SetDefault(cfgKeyHTTPPort, 3000)
	v.SetDefault(cfgKeyStaleTime, query.DefaultStaleTime)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, "json")

	dataDir, err := defaultDataDir()
	if err != nil {
		return Config{}, err
	}
	v.SetDefault(cfgKeyDatabasePath, filepath.Join(dataDir, "nutria.db"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if dir, err := defaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		HTTPAddress:  v.GetString(cfgKeyHTTPAddress),
		HTTPPort:     v.GetInt(cfgKeyHTTPPort),
		DatabasePath: v.GetString(cfgKeyDatabasePath),
		StaleTime:    v.GetDuration(cfgKeyStaleTime),
		LogLevel:     v.GetString(cfgKeyLogLevel),
		LogFormat:    v.GetString(cfgKeyLogFormat),
		File:         v.ConfigFileUsed(),
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("invalid %s %d", cfgKeyHTTPPort, cfg.HTTPPort)
	}
	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%s must not be empty", cfgKeyDatabasePath)
	}
	return cfg, nil
}
