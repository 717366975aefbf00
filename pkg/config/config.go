package config

import (
	"sync"
	"time"

	"trait-roller/pkg/logger"
)

// CaptureLayout places the OCR rectangle relative to the anchor.
type CaptureLayout struct {
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
}

// Config holds the application configuration.
type Config struct {
	mu sync.RWMutex

	// Configurable via JSON file (private fields, read through getters)
	listA         string
	listB         string
	delay         string
	logOCR        bool
	capture       CaptureLayout
	threshold     int
	holdMs        int
	playDelay     string
	repeatCount   string
	windowClasses []string
	notifyCommand string
	ocrLanguage   string

	// Internal fields
	path      string
	dir       string
	assetsDir string
	log       *logger.Logger
}

// New creates a Config populated with defaults.
func New(log *logger.Logger) *Config {
	c := &Config{log: log}
	c.applyDefaults()
	return c
}

// GetListA returns the required traits, one per line, as typed.
func (c *Config) GetListA() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listA
}

// GetListB returns the desired traits, one per line, as typed.
func (c *Config) GetListB() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listB
}

// GetDelay returns the roll cadence in milliseconds, as typed.
func (c *Config) GetDelay() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.delay
}

func (c *Config) GetLogOCR() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logOCR
}

func (c *Config) GetCapture() CaptureLayout {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capture
}

func (c *Config) GetThreshold() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint8(c.threshold)
}

// GetHold returns how long a partial match stays on screen.
func (c *Config) GetHold() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.holdMs) * time.Millisecond
}

func (c *Config) GetPlayDelay() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playDelay
}

func (c *Config) GetRepeatCount() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repeatCount
}

// GetWindowClasses returns a copy of the game window classes to focus.
func (c *Config) GetWindowClasses() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.windowClasses...)
}

// GetNotifyCommand returns the notify command.
func (c *Config) GetNotifyCommand() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifyCommand
}

func (c *Config) GetOCRLanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ocrLanguage
}

// GetPath returns the file the config was loaded from and is saved to.
func (c *Config) GetPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// SetListA replaces the required traits.
func (c *Config) SetListA(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listA = v
}

// SetListB replaces the desired traits.
func (c *Config) SetListB(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listB = v
}

func (c *Config) SetDelay(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = v
}

func (c *Config) SetLogOCR(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logOCR = v
}

func (c *Config) SetPlayDelay(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playDelay = v
}

func (c *Config) SetRepeatCount(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repeatCount = v
}
