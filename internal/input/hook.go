package input

import (
	"context"

	hook "github.com/robotn/gohook"

	"trait-roller/pkg/logger"
)

// ButtonEvent is a physical pointer-down observed while recording.
type ButtonEvent struct {
	Button Button
}

// Listener delivers pointer-down events until ctx is done, then deregisters.
type Listener interface {
	Listen(ctx context.Context) (<-chan ButtonEvent, error)
}

// HookListener uses the global gohook event stream.
type HookListener struct {
	log *logger.Logger
}

func NewHookListener(log *logger.Logger) *HookListener {
	return &HookListener{log: log}
}

func (h *HookListener) Listen(ctx context.Context) (<-chan ButtonEvent, error) {
	events := hook.Start()
	out := make(chan ButtonEvent, 16)

	h.log.Debug("Mouse hook registered")

	go func() {
		defer close(out)
		defer func() {
			hook.End()
			h.log.Debug("Mouse hook deregistered")
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				// gohook reports the physical press as MouseHold; MouseDown
				// arrives on release.
				if ev.Kind != hook.MouseHold {
					continue
				}
				btn, known := buttonFromHook(ev.Button)
				if !known {
					continue
				}
				select {
				case out <- ButtonEvent{Button: btn}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func buttonFromHook(code uint16) (Button, bool) {
	switch code {
	case hook.MouseMap["left"]:
		return Left, true
	case hook.MouseMap["right"]:
		return Right, true
	}
	return "", false
}
