package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"trait-roller/pkg/logger"
)

const appDirName = "trait-roller"

// DefaultDir returns the per-user directory holding config, logs and data.
func DefaultDir() (string, error) {
	homeConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeConfigDir, appDirName), nil
}

// initializeConfig loads the provided or default file. A missing default
// file leaves the built-in defaults in place without writing anything.
func initializeConfig(providedPath string, defaultPath string, log *logger.Logger) (*Config, error) {
	if providedPath != "" {
		config, err := loadConfigFromPath(providedPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from provided path: %w", err)
		}
		return config, nil
	}

	if _, err := os.Stat(defaultPath); errors.Is(err, fs.ErrNotExist) {
		log.Info("No config file found, using defaults", "path", defaultPath)
		config := New(log)
		config.path = defaultPath
		return config, nil
	}

	config, err := loadConfigFromPath(defaultPath, log)
	if err != nil {
		log.Warn("Config file unreadable, using defaults", "path", defaultPath, "error", err)
		config = New(log)
		config.path = defaultPath
	}
	return config, nil
}

// FindConfig locates and initializes the configuration.
func FindConfig(providedPath string, log *logger.Logger, embeddedAssets embed.FS) (*Config, error) {
	log.Info("Looking for configuration", "provided_path", providedPath)

	defaultConfigDir, err := DefaultDir()
	if err != nil {
		log.Error("Failed to get user config directory", err)
		return nil, err
	}
	defaultConfigPath := filepath.Join(defaultConfigDir, "config.json")
	defaultLogsDir := filepath.Join(defaultConfigDir, "logs")

	log.Debug("Configuration paths",
		"config_dir", defaultConfigDir,
		"config_path", defaultConfigPath,
		"logs_dir", defaultLogsDir)

	for _, dir := range []string{defaultConfigDir, defaultLogsDir} {
		log.Debug("Ensuring directory exists", "path", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error("Failed to create directory", err, "path", dir)
			return nil, err
		}
	}

	config, err := initializeConfig(providedPath, defaultConfigPath, log)
	if err != nil {
		return nil, err
	}
	config.dir = defaultConfigDir

	if err := config.setupAssets(defaultConfigDir, embeddedAssets); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDir returns the data directory.
func (c *Config) GetDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dir
}

// SetDir moves the data directory (sequence, logs, history, preview).
func (c *Config) SetDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dir = dir
}

// GetSequencePath returns where the click sequence is saved.
func (c *Config) GetSequencePath() string {
	return filepath.Join(c.GetDir(), "click_sequence.json")
}

// GetActivityLogPath returns the user-facing activity log.
func (c *Config) GetActivityLogPath() string {
	return filepath.Join(c.GetDir(), "logs", "activity.log")
}

// GetHistoryPath returns the roll history database.
func (c *Config) GetHistoryPath() string {
	return filepath.Join(c.GetDir(), "history.db")
}

// GetPreviewPath returns where set-anchor writes the capture preview.
func (c *Config) GetPreviewPath() string {
	return filepath.Join(c.GetDir(), "region.png")
}
