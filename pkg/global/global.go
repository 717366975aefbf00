package global

import (
	"sync"

	"trait-roller/pkg/config"
	"trait-roller/pkg/logger"
	"trait-roller/pkg/notify"
	"trait-roller/pkg/sound"
)

var (
	cfg           *config.Config
	log           *logger.Logger
	notifier      *notify.NotifyService
	soundNotifier *sound.SoundNotifier
	initOnce      sync.Once
	mu            sync.RWMutex
)

// InitGlobals sets the process-wide services. Only the first call has effect.
// withSound is false for one-shot client commands, which never play audio.
func InitGlobals(config *config.Config, logger *logger.Logger, withSound bool) {
	initOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		cfg = config
		log = logger
		notifier = notify.NewNotifyService(config.GetNotifyCommand(), logger)

		if !withSound {
			return
		}
		sn, err := sound.NewSoundNotifier()
		if err != nil {
			logger.Error("Failed to initialize sound notifier", err)
		} else {
			soundNotifier = sn
		}
	})
}

// GetSoundNotifier returns nil when audio is unavailable.
func GetSoundNotifier() *sound.SoundNotifier {
	mu.RLock()
	defer mu.RUnlock()
	return soundNotifier
}

// GetConfig returns the global config instance
func GetConfig() *config.Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetLogger returns the global logger instance
func GetLogger() *logger.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// GetNotifier returns the global notifier instance
func GetNotifier() *notify.NotifyService {
	mu.RLock()
	defer mu.RUnlock()
	return notifier
}

// GetAll returns config, logger and notifier together.
func GetAll() (*config.Config, *logger.Logger, *notify.NotifyService) {
	mu.RLock()
	defer mu.RUnlock()
	return cfg, log, notifier
}
