package app

import (
	"trait-roller/internal/roller"
	"trait-roller/pkg/logger"
)

// SoundPlayer plays the combo chime.
type SoundPlayer interface {
	PlayComboSound() error
}

// comboNotifier chimes and then shows the blocking dialog.
type comboNotifier struct {
	sound  SoundPlayer
	dialog roller.Notifier
	log    *logger.Logger
}

// NewComboNotifier combines the chime with the dialog. Either may be nil.
func NewComboNotifier(sound SoundPlayer, dialog roller.Notifier, log *logger.Logger) roller.Notifier {
	return &comboNotifier{sound: sound, dialog: dialog, log: log}
}

func (c *comboNotifier) Notify(title, message string) error {
	if c.sound != nil {
		go func() {
			if err := c.sound.PlayComboSound(); err != nil {
				c.log.Error("Failed to play combo sound", err)
			}
		}()
	}
	if c.dialog == nil {
		return nil
	}
	return c.dialog.Notify(title, message)
}
