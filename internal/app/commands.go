package app

import (
	"fmt"
	"strconv"

	"trait-roller/internal/apperr"
	"trait-roller/internal/ipc"
)

// IPC command names. The first five are the hotkey surface.
const (
	CmdSetAnchor       = "setAnchor"
	CmdToggleRolling   = "toggleRolling"
	CmdToggleRecording = "toggleRecording"
	CmdPlaySequence    = "playSequence"
	CmdStopAll         = "stopAll"

	CmdStatus         = "status"
	CmdSeqList        = "seqList"
	CmdSeqInsertDelay = "seqInsertDelay"
	CmdSeqEditDelay   = "seqEditDelay"
	CmdSeqOffset      = "seqOffset"
	CmdSeqDelete      = "seqDelete"
	CmdSeqClear       = "seqClear"
	CmdSeqSave        = "seqSave"
	CmdSeqLoad        = "seqLoad"
	CmdSeqEdit        = "seqEdit"
	CmdConfigSave     = "configSave"
	CmdHistory        = "history"
)

// SequenceMenu is the interactive editor behind seqEdit.
type SequenceMenu interface {
	Show() (string, error)
}

func intArgs(args []string, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, apperr.NewInvalid(fmt.Sprintf("expected %d arguments, got %d", len(names), len(args)))
	}
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, apperr.NewInvalid(fmt.Sprintf("%s: %q is not a number", names[i], a))
		}
		out[i] = v
	}
	return out, nil
}

func message(fn func() (string, error)) ipc.HandlerFunc {
	return func([]string) (ipc.Result, error) {
		msg, err := fn()
		return ipc.Result{Message: msg}, err
	}
}

func withInts(names []string, fn func(v []int) (string, error)) ipc.HandlerFunc {
	return func(args []string) (ipc.Result, error) {
		v, err := intArgs(args, names...)
		if err != nil {
			return ipc.Result{}, err
		}
		msg, err := fn(v)
		return ipc.Result{Message: msg}, err
	}
}

// RegisterCommands binds every daemon operation to srv. menu may be nil.
func (t *TraitRoller) RegisterCommands(srv *ipc.Server, menu SequenceMenu) {
	srv.Handle(CmdSetAnchor, func([]string) (ipc.Result, error) {
		p, err := t.SetAnchor()
		if err != nil {
			return ipc.Result{}, err
		}
		return ipc.Result{Message: "Button set: " + p.String()}, nil
	})
	srv.Handle(CmdToggleRolling, message(t.ToggleRolling))
	srv.Handle(CmdToggleRecording, message(t.ToggleRecording))
	srv.Handle(CmdPlaySequence, message(t.PlaySequence))
	srv.Handle(CmdStopAll, func([]string) (ipc.Result, error) {
		return ipc.Result{Message: t.StopAll()}, nil
	})

	srv.Handle(CmdStatus, func([]string) (ipc.Result, error) {
		return ipc.Result{Message: t.StatusLine(), Lines: t.Status()}, nil
	})
	srv.Handle(CmdSeqList, func([]string) (ipc.Result, error) {
		lines := t.ListSequence()
		return ipc.Result{Message: fmt.Sprintf("%d items", len(lines)), Lines: lines}, nil
	})
	srv.Handle(CmdSeqInsertDelay, withInts([]string{"after", "ms"}, func(v []int) (string, error) {
		return t.InsertDelay(v[0], v[1])
	}))
	srv.Handle(CmdSeqEditDelay, withInts([]string{"item", "ms"}, func(v []int) (string, error) {
		return t.EditDelay(v[0], v[1])
	}))
	srv.Handle(CmdSeqOffset, withInts([]string{"item", "px"}, func(v []int) (string, error) {
		return t.SetClickOffset(v[0], v[1])
	}))
	srv.Handle(CmdSeqDelete, withInts([]string{"item"}, func(v []int) (string, error) {
		return t.DeleteItem(v[0])
	}))
	srv.Handle(CmdSeqClear, message(t.ClearSequence))
	srv.Handle(CmdSeqSave, message(t.SaveSequence))
	srv.Handle(CmdSeqLoad, message(t.LoadSequence))
	srv.Handle(CmdConfigSave, message(t.SaveConfig))
	srv.Handle(CmdHistory, func(args []string) (ipc.Result, error) {
		limit := 20
		if len(args) > 0 {
			v, err := intArgs(args[:1], "limit")
			if err != nil {
				return ipc.Result{}, err
			}
			limit = v[0]
		}
		lines, err := t.History(limit)
		return ipc.Result{Lines: lines}, err
	})

	if menu != nil {
		srv.Handle(CmdSeqEdit, func([]string) (ipc.Result, error) {
			msg, err := menu.Show()
			if err != nil {
				return ipc.Result{}, err
			}
			if msg == "" {
				msg = "No changes"
			}
			return ipc.Result{Message: msg}, nil
		})
	}
}
