package rofi

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"trait-roller/internal/apperr"
	"trait-roller/internal/macro"
	"trait-roller/pkg/logger"
)

// Runner executes rofi with args and stdin, returning its stdout and exit code.
type Runner func(args []string, stdin string) (string, int, error)

// Sequence is the editable click sequence.
type Sequence interface {
	Items() []macro.Item
	EditDelay(i, ms int) error
	SetClickOffset(i, off int) error
	Delete(i int) error
	InsertDelayAfter(i, ms int) (int, error)
}

// Rofi exit codes for -kb-custom-N are 9+N.
const (
	exitAccept      = 0
	exitEditDelay   = 10
	exitOffset      = 11
	exitDelete      = 12
	exitInsertDelay = 13
)

const sequenceMessage = "E (edit delay) | O (offset) | D (delete) | I (insert delay after)"

var baseArgs = []string{
	"-dmenu",
	"-i",
	"-format", "i",
	"-kb-custom-1", "e",
	"-kb-custom-2", "o",
	"-kb-custom-3", "d",
	"-kb-custom-4", "i",
	"-kb-accept-entry", "Return",
}

// SequenceEditor shows the click sequence in rofi and applies the chosen edit.
type SequenceEditor struct {
	seq       Sequence
	themePath string
	run       Runner
	log       *logger.Logger
}

func NewSequenceEditor(seq Sequence, themePath string, log *logger.Logger) *SequenceEditor {
	return &SequenceEditor{seq: seq, themePath: themePath, run: execRofi, log: log}
}

func execRofi(args []string, stdin string) (string, int, error) {
	cmd := exec.Command("rofi", args...)
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		return "", 0, fmt.Errorf("failed to run rofi: %w", err)
	}
	return string(out), 0, nil
}

func (e *SequenceEditor) args(extra ...string) []string {
	args := append([]string(nil), extra...)
	if e.themePath != "" {
		args = append(args, "-theme", e.themePath)
	}
	return args
}

// Show opens the menu once. It returns a description of the applied edit, or
// "" when the menu was dismissed.
func (e *SequenceEditor) Show() (string, error) {
	items := e.seq.Items()
	if len(items) == 0 {
		return "", apperr.NewNotFound("click sequence is empty")
	}

	args := e.args(append(append([]string(nil), baseArgs...), "-p", "Sequence", "-mesg", sequenceMessage)...)
	e.log.Debug("Opening sequence editor", "items", len(items))

	out, code, err := e.run(args, strings.Join(macro.FormatAll(items), "\n"))
	if err != nil {
		e.log.Error("Failed to run rofi", err)
		return "", err
	}

	idx, ok := parseSelection(out, len(items))
	if !ok {
		e.log.Debug("No selection made in rofi", "exit_code", code)
		return "", nil
	}

	e.log.Debug("Processing rofi exit code", "exit_code", code, "index", idx)
	return e.apply(idx, items[idx], code)
}

func (e *SequenceEditor) apply(idx int, item macro.Item, code int) (string, error) {
	if code == exitAccept {
		// Return does the natural edit for the item type
		if _, isDelay := item.(macro.Delay); isDelay {
			code = exitEditDelay
		} else {
			code = exitOffset
		}
	}

	switch code {
	case exitEditDelay:
		if _, isDelay := item.(macro.Delay); !isDelay {
			return "", apperr.NewInvalid(fmt.Sprintf("item %d is not a delay", idx+1))
		}
		ms, ok, err := e.promptInt("Delay (ms)")
		if err != nil || !ok {
			return "", err
		}
		if err := e.seq.EditDelay(idx, ms); err != nil {
			return "", err
		}
		return fmt.Sprintf("Item %d delay set to %dms", idx+1, ms), nil

	case exitOffset:
		if _, isClick := item.(macro.Click); !isClick {
			return "", apperr.NewInvalid(fmt.Sprintf("item %d is not a click", idx+1))
		}
		off, ok, err := e.promptInt("Random offset (px)")
		if err != nil || !ok {
			return "", err
		}
		if err := e.seq.SetClickOffset(idx, off); err != nil {
			return "", err
		}
		return fmt.Sprintf("Item %d offset set to ±%dpx", idx+1, off), nil

	case exitDelete:
		if err := e.seq.Delete(idx); err != nil {
			return "", err
		}
		return fmt.Sprintf("Item %d deleted", idx+1), nil

	case exitInsertDelay:
		ms, ok, err := e.promptInt("Delay (ms)")
		if err != nil || !ok {
			return "", err
		}
		pos, err := e.seq.InsertDelayAfter(idx, ms)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Inserted %dms delay at %d", ms, pos+1), nil
	}

	e.log.Warn("Unhandled rofi exit code", "exit_code", code)
	return "", nil
}

// promptInt asks for a number. ok is false when the prompt was dismissed.
func (e *SequenceEditor) promptInt(prompt string) (int, bool, error) {
	out, code, err := e.run(e.args("-dmenu", "-p", prompt), "")
	if err != nil {
		return 0, false, err
	}
	text := strings.TrimSpace(out)
	if code != exitAccept || text == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, false, apperr.NewInvalid(fmt.Sprintf("%q is not a number", text))
	}
	return v, true, nil
}

// parseSelection reads the index printed by `-format i`.
func parseSelection(out string, n int) (int, bool) {
	text := strings.TrimSpace(out)
	if text == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(text)
	if err != nil || idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}
