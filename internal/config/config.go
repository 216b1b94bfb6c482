// SPDX-License-Identifier: Apache-2.0

// Package config loads the engine configuration from an optional YAML file
// and PACKFORGE_* environment variables.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/joomcode/errorx"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/packforge/packforge/pkg/logx"
)

const envPrefix = "PACKFORGE"

// CacheConfig configures the expanded-folder cache.
type CacheConfig struct {
	// ScratchRoot is the directory expanded folders are allocated under.
	ScratchRoot string `mapstructure:"scratchRoot" yaml:"scratchRoot"`
	// ProcessLock enables a cross-process file lock guarding purges of a
	// scratch root shared between processes.
	ProcessLock bool `mapstructure:"processLock" yaml:"processLock"`
}

// DownloadConfig configures the download handler.
type DownloadConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Config holds the engine configuration.
type Config struct {
	Log      logx.LoggingConfig `mapstructure:"log" yaml:"log"`
	Cache    CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Download DownloadConfig     `mapstructure:"download" yaml:"download"`
	// StrictVersions makes version parsing require full SemVer cores.
	StrictVersions bool `mapstructure:"strictVersions" yaml:"strictVersions"`
	// StateDir is where package registration markers live.
	StateDir string `mapstructure:"stateDir" yaml:"stateDir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: logx.LoggingConfig{
			Level:          "info",
			ConsoleLogging: true,
		},
		Cache: CacheConfig{
			ScratchRoot: filepath.Join("/var", "cache", "packforge", "expanded"),
		},
		Download: DownloadConfig{
			Timeout: 30 * time.Minute,
		},
		StateDir: filepath.Join("/var", "lib", "packforge", "state"),
	}
}

// Load reads configuration from the given file (optional; a missing file
// falls back to defaults) merged with environment variables.
func Load(path string) (Config, error) {
	return load(path, nil)
}

// LoadWithFs is Load with an injected file system, used by tests.
func LoadWithFs(path string, fs afero.Fs) (Config, error) {
	return load(path, fs)
}

func load(path string, fs afero.Fs) (Config, error) {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}

	defaults := Default()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.console", defaults.Log.ConsoleLogging)
	v.SetDefault("cache.scratchRoot", defaults.Cache.ScratchRoot)
	v.SetDefault("cache.processLock", defaults.Cache.ProcessLock)
	v.SetDefault("download.timeout", defaults.Download.Timeout)
	v.SetDefault("strictVersions", defaults.StrictVersions)
	v.SetDefault("stateDir", defaults.StateDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorx.IllegalArgument.Wrap(err, "failed to read config file %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorx.IllegalFormat.Wrap(err, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Cache.ScratchRoot == "" {
		return errorx.IllegalArgument.New("cache.scratchRoot must not be empty")
	}
	if c.StateDir == "" {
		return errorx.IllegalArgument.New("stateDir must not be empty")
	}
	if c.Download.Timeout <= 0 {
		return errorx.IllegalArgument.New("download.timeout must be positive")
	}
	return nil
}
