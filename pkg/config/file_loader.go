package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trait-roller/pkg/logger"
)

// fileFormat is the JSON layout. Pointer and empty fields fall back to defaults.
type fileFormat struct {
	ListA         *string        `json:"list_a,omitempty"`
	ListB         *string        `json:"list_b,omitempty"`
	Delay         *string        `json:"delay,omitempty"`
	LogOCR        *bool          `json:"log_ocr,omitempty"`
	Capture       *CaptureLayout `json:"capture,omitempty"`
	Threshold     *int           `json:"threshold,omitempty"`
	HoldMs        *int           `json:"hold_ms,omitempty"`
	PlayDelay     *string        `json:"play_delay,omitempty"`
	RepeatCount   *string        `json:"repeat_count,omitempty"`
	WindowClasses []string       `json:"window_classes,omitempty"`
	NotifyCommand string         `json:"notify_command,omitempty"`
	OCRLanguage   string         `json:"ocr_language,omitempty"`
}

// LoadFromFile loads the configuration from a JSON file. Fields missing
// from the file keep their built-in defaults.
func (c *Config) LoadFromFile(path string, log *logger.Logger) error {
	log.Debug("Loading configuration from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read config file", err, "path", path)
		return err
	}
	log.Debug("Config file read successfully", "size_bytes", len(data))

	var temp fileFormat
	if err := json.Unmarshal(data, &temp); err != nil {
		log.Error("Failed to parse config JSON", err)
		return err
	}
	if err := temp.validate(); err != nil {
		log.Error("Invalid config values", err, "path", path)
		return err
	}
	log.Debug("Config JSON parsed successfully")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyDefaults()
	if temp.ListA != nil {
		c.listA = *temp.ListA
	}
	if temp.ListB != nil {
		c.listB = *temp.ListB
	}
	if temp.Delay != nil {
		c.delay = *temp.Delay
	}
	if temp.LogOCR != nil {
		c.logOCR = *temp.LogOCR
	}
	if temp.Capture != nil {
		c.capture = *temp.Capture
	}
	if temp.Threshold != nil {
		c.threshold = *temp.Threshold
	}
	if temp.HoldMs != nil {
		c.holdMs = *temp.HoldMs
	}
	if temp.PlayDelay != nil {
		c.playDelay = *temp.PlayDelay
	}
	if temp.RepeatCount != nil {
		c.repeatCount = *temp.RepeatCount
	}
	if len(temp.WindowClasses) > 0 {
		c.windowClasses = temp.WindowClasses
	}
	if temp.NotifyCommand != "" {
		c.notifyCommand = temp.NotifyCommand
	}
	if temp.OCRLanguage != "" {
		c.ocrLanguage = temp.OCRLanguage
	}
	c.path = path
	return nil
}

func (f fileFormat) validate() error {
	if f.Threshold != nil && (*f.Threshold < 0 || *f.Threshold > 255) {
		return fmt.Errorf("threshold must be between 0 and 255, got %d", *f.Threshold)
	}
	if f.HoldMs != nil && *f.HoldMs < 0 {
		return fmt.Errorf("hold_ms must not be negative, got %d", *f.HoldMs)
	}
	if f.Capture != nil && (f.Capture.Width <= 0 || f.Capture.Height <= 0) {
		return fmt.Errorf("capture size must be positive, got %dx%d", f.Capture.Width, f.Capture.Height)
	}
	return nil
}

// Save writes the current values to path, or to the loaded path when empty.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	if path == "" {
		path = c.path
	}
	if path == "" {
		c.mu.Unlock()
		return fmt.Errorf("no config path to save to")
	}
	out := fileFormat{
		ListA:         &c.listA,
		ListB:         &c.listB,
		Delay:         &c.delay,
		LogOCR:        &c.logOCR,
		Capture:       &c.capture,
		Threshold:     &c.threshold,
		HoldMs:        &c.holdMs,
		PlayDelay:     &c.playDelay,
		RepeatCount:   &c.repeatCount,
		WindowClasses: c.windowClasses,
		NotifyCommand: c.notifyCommand,
		OCRLanguage:   c.ocrLanguage,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	c.path = path
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.log.Error("Failed to write config file", err, "path", path)
		return fmt.Errorf("failed to write config: %w", err)
	}

	c.log.Info("Configuration saved", "path", path)
	return nil
}

// loadConfigFromPath loads the configuration from a file.
func loadConfigFromPath(path string, log *logger.Logger) (*Config, error) {
	config := New(log)
	if err := config.LoadFromFile(path, log); err != nil {
		return nil, err
	}
	return config, nil
}
