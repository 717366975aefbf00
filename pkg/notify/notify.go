package notify

import (
	"fmt"
	"os/exec"

	"trait-roller/pkg/logger"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	Error NotificationType = iota
	Info
)

func (t NotificationType) String() string {
	if t == Error {
		return "ERROR"
	}
	return "INFO"
}

// NotifyService handles desktop notifications
type NotifyService struct {
	log           *logger.Logger
	notifyCommand string

	lookPath func(file string) (string, error)
	run      func(cmd *exec.Cmd) error
}

// NewNotifyService creates a new notification service
func NewNotifyService(notifyCommand string, log *logger.Logger) *NotifyService {
	return &NotifyService{
		log:           log,
		notifyCommand: notifyCommand,
		lookPath:      exec.LookPath,
		run:           func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

// Show displays a passive notification of the specified type.
func (n *NotifyService) Show(title, message string, nType NotificationType) error {
	if n.notifyCommand != "" {
		if err := n.executeNotifyCommand(title, message, nType); err == nil {
			return nil
		}
		n.log.Warn("Custom notification command failed", "command", n.notifyCommand)
	}

	if err := n.trySystemNotification(passiveTools, title, message, nType); err == nil {
		return nil
	}

	if isRunningInTerminal() {
		return n.printToTerminal(title, message, nType)
	}
	return n.writeToLogFile(title, message, nType)
}

// Notify shows a message and returns once the user has dismissed it. When no
// dialog tool is installed it degrades to a terminal prompt, then to Show.
func (n *NotifyService) Notify(title, message string) error {
	if err := n.trySystemNotification(dialogTools, title, message, Info); err == nil {
		return nil
	}
	if err := n.tryTerminalNotification(title, message, Info); err == nil {
		return nil
	}
	n.log.Debug("No blocking notification available, falling back", "title", title)
	return n.Show(title, message, Info)
}

func (n *NotifyService) executeNotifyCommand(title, message string, nType NotificationType) error {
	n.log.Debug("Executing notify command", "notifyCommand", n.notifyCommand, "nType", nType)

	cmd := exec.Command("sh", "-c", fmt.Sprintf(`%s "$1" "$2" "$3"`, n.notifyCommand), "notify", nType.String(), title, message)
	return n.run(cmd)
}
