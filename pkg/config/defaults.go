package config

import (
	"strings"
)

var (
	defaultListA = []string{"tough", "iron willed", "industrious"}

	defaultListB = []string{
		"jogger", "nimble", "quick sleeper", "sanguine", "kind",
		"brawler", "great memory", "masochist", "super immune",
		"hard worker", "fast learner", "bloodlust", "undergrounder",
		"fast walker", "optimist", "steadfast",
		"psychically hypersensitive", "psychically sensitive",
	}

	// Window classes RimWorld reports under X11/XWayland and through Proton.
	defaultWindowClasses = []string{"RimWorldLinux", "RimWorldWin64.exe", "steam_app_294100"}
)

const (
	defaultDelay       = "25"
	defaultThreshold   = 180
	defaultHoldMs      = 5000
	defaultPlayDelay   = "100"
	defaultRepeatCount = "1"
	defaultOCRLanguage = "eng"
)

var defaultCapture = CaptureLayout{OffsetX: -770, OffsetY: 280, Width: 300, Height: 100}

// applyDefaults resets every file-backed field to its built-in value.
func (c *Config) applyDefaults() {
	c.listA = strings.Join(defaultListA, "\n")
	c.listB = strings.Join(defaultListB, "\n")
	c.delay = defaultDelay
	c.logOCR = false
	c.capture = defaultCapture
	c.threshold = defaultThreshold
	c.holdMs = defaultHoldMs
	c.playDelay = defaultPlayDelay
	c.repeatCount = defaultRepeatCount
	c.windowClasses = append([]string{}, defaultWindowClasses...)
	c.notifyCommand = ""
	c.ocrLanguage = defaultOCRLanguage
}
