package config

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// GetAssetsDir returns the assets directory.
func (c *Config) GetAssetsDir() string {
	return c.assetsDir
}

// GetRofiThemePath returns the path to the Rofi theme used by the sequence editor.
func (c *Config) GetRofiThemePath() string {
	return filepath.Join(c.assetsDir, "sequence.rasi")
}

// setupAssets copies embedded assets into the config directory, leaving
// files the user already has untouched.
func (c *Config) setupAssets(configDir string, embeddedAssets fs.FS) error {
	c.log.Debug("Setting up assets directory")

	c.assetsDir = filepath.Join(configDir, "assets")

	if err := os.MkdirAll(c.assetsDir, 0755); err != nil {
		c.log.Error("Failed to create assets directory", err, "path", c.assetsDir)
		return fmt.Errorf("failed to create assets directory: %w", err)
	}

	entries, err := fs.ReadDir(embeddedAssets, "assets")
	if err != nil {
		c.log.Error("Failed to read embedded assets", err)
		return fmt.Errorf("failed to read embedded assets: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		sourceFile := path.Join("assets", entry.Name())
		destFile := filepath.Join(c.assetsDir, entry.Name())

		if _, err := os.Stat(destFile); err == nil {
			c.log.Debug("Asset file exists, skipping", "file", destFile)
			continue
		}

		data, err := fs.ReadFile(embeddedAssets, sourceFile)
		if err != nil {
			c.log.Error("Failed to read embedded asset", err, "file", sourceFile)
			return fmt.Errorf("failed to read embedded asset %s: %w", sourceFile, err)
		}

		if err := os.WriteFile(destFile, data, 0644); err != nil {
			c.log.Error("Failed to write asset file", err, "destination", destFile)
			return fmt.Errorf("failed to write asset file %s: %w", destFile, err)
		}

		c.log.Debug("Copied asset file", "source", sourceFile, "destination", destFile)
	}

	c.log.Info("Assets setup completed", "assets_dir", c.assetsDir)
	return nil
}
