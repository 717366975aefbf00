package notify

import (
	"fmt"
	"os/exec"
)

type notificationTool struct {
	name         string
	buildCommand func(tool string, title string, message string, nType NotificationType) *exec.Cmd
}

func urgency(title string, nType NotificationType) (string, string) {
	if nType == Error {
		return "critical", title + " Error"
	}
	return "normal", title
}

// passiveTools pop a notification and return immediately.
var passiveTools = []notificationTool{
	{
		name: "dunstify",
		buildCommand: func(tool string, title string, message string, nType NotificationType) *exec.Cmd {
			u, t := urgency(title, nType)
			return exec.Command(tool, "-u", u, "-t", "5000", t, message)
		},
	},
	{
		name: "notify-send",
		buildCommand: func(tool string, title string, message string, nType NotificationType) *exec.Cmd {
			u, t := urgency(title, nType)
			return exec.Command(tool, "-u", u, t, message)
		},
	},
}

// dialogTools block until the user closes the dialog.
var dialogTools = []notificationTool{
	{
		name: "zenity",
		buildCommand: func(tool string, title string, message string, nType NotificationType) *exec.Cmd {
			flag := "--info"
			if nType == Error {
				flag = "--error"
			}
			return exec.Command(tool, flag, "--text", message, "--title", title)
		},
	},
	{
		name: "kdialog",
		buildCommand: func(tool string, title string, message string, nType NotificationType) *exec.Cmd {
			flag := "--msgbox"
			if nType == Error {
				flag = "--error"
			}
			return exec.Command(tool, "--title", title, flag, message)
		},
	},
}

func (n *NotifyService) trySystemNotification(tools []notificationTool, title string, message string, nType NotificationType) error {
	for _, tool := range tools {
		if _, err := n.lookPath(tool.name); err != nil {
			continue
		}
		cmd := tool.buildCommand(tool.name, title, message, nType)
		if err := n.run(cmd); err == nil {
			n.log.Debug("Notification sent successfully",
				"tool", tool.name,
				"type", nType)
			return nil
		}
	}
	return fmt.Errorf("no notification tools available")
}
