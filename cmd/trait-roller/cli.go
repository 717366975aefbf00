package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"trait-roller/internal/app"
	"trait-roller/internal/hotkeys"
	"trait-roller/internal/ipc"
	"trait-roller/internal/logview"
	"trait-roller/pkg/config"
	"trait-roller/pkg/global"
	"trait-roller/pkg/logger"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	a := &cli.App{
		Name:    "trait-roller",
		Usage:   "RimWorld trait re-roller and click macro player",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "socket", Value: ipc.DefaultSocketPath, Usage: "daemon socket path"},
			&cli.StringFlag{Name: "data-dir", Usage: "override the directory for sequence, logs and history"},
		},
		Commands: []*cli.Command{
			daemonCmd(),
			hotkeyCmd("anchor", "Set the re-roll button to the current pointer position", app.CmdSetAnchor),
			hotkeyCmd("roll", "Start or stop rolling", app.CmdToggleRolling),
			hotkeyCmd("record", "Start or stop recording clicks", app.CmdToggleRecording),
			hotkeyCmd("play", "Play the click sequence", app.CmdPlaySequence),
			hotkeyCmd("stop", "Stop everything that is running", app.CmdStopAll),
			hotkeyCmd("status", "Show what the daemon is doing", app.CmdStatus),
			seqCmd(),
			configCmd(),
			historyCmd(),
			logCmd(),
			bindsCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	a.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return a
}

// setup initializes logging, configuration and the globals. Only the daemon
// logs to the console unless --debug is set.
func setup(c *cli.Context, daemon bool) (*logger.Logger, *config.Config, error) {
	level := zerolog.InfoLevel
	if c.Bool("debug") {
		level = zerolog.DebugLevel
	}
	opts := []logger.Option{logger.WithLevel(level)}
	if daemon || c.Bool("debug") {
		opts = append(opts, logger.WithConsole())
	}

	log, err := logger.NewLogger(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.FindConfig(c.String("config"), log, embeddedAssets)
	if err != nil {
		log.Close()
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.SetDir(dir)
	}

	global.InitGlobals(cfg, log, daemon)
	return log, cfg, nil
}

func daemonCmd() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Run the roller, the macro engine and the control panel",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "headless", Usage: "do not open the control panel"},
			&cli.BoolFlag{Name: "bind-keys", Usage: "add the F7/F9/F10/F12/Escape bindings to Hyprland while running"},
		},
		Action: func(c *cli.Context) error {
			log, cfg, err := setup(c, true)
			if err != nil {
				return err
			}
			defer log.Close()

			log.Info("Starting Trait Roller",
				"version", Version,
				"pid", os.Getpid(),
				"os", runtime.GOOS,
				"arch", runtime.GOARCH,
				"config", cfg.GetPath(),
				"data_dir", cfg.GetDir())

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := app.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if c.Bool("bind-keys") {
				bindings := hotkeys.Defaults(clientPrefix(c))
				hk := hotkeys.NewHyprland(log)
				if err := hk.Bind(bindings); err != nil {
					log.Warn("Keybindings not installed", "error", err)
				} else {
					defer hk.Unbind(bindings)
				}
			}

			return rt.RunDaemon(ctx, app.DaemonOptions{
				SocketPath: c.String("socket"),
				Headless:   c.Bool("headless"),
			})
		},
	}
}

// clientPrefix is the command line a keybinding uses to reach this daemon.
func clientPrefix(c *cli.Context) string {
	exe, err := os.Executable()
	if err != nil {
		exe = c.App.Name
	}
	if s := c.String("socket"); s != ipc.DefaultSocketPath {
		exe += " --socket " + s
	}
	return exe
}

func bindsCmd() *cli.Command {
	return &cli.Command{
		Name:  "binds",
		Usage: "Print Hyprland keybindings for hyprland.conf",
		Action: func(c *cli.Context) error {
			for _, line := range hotkeys.ConfigLines(hotkeys.Defaults(clientPrefix(c))) {
				fmt.Fprintln(c.App.Writer, line)
			}
			return nil
		},
	}
}

// send runs one daemon command and prints its response.
func send(c *cli.Context, command string, args ...string) error {
	log, _, err := setup(c, false)
	if err != nil {
		return err
	}
	defer log.Close()

	resp, err := ipc.SendCommand(c.String("socket"), log, command, args...)
	if err != nil {
		return err
	}
	return printResponse(c.App.Writer, resp)
}

func printResponse(w io.Writer, resp ipc.Response) error {
	if resp.Status != ipc.StatusSuccess {
		if resp.Code != "" {
			return fmt.Errorf("%s (%s)", resp.Message, resp.Code)
		}
		return fmt.Errorf("%s", resp.Message)
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(w, line)
	}
	if resp.Message != "" && len(resp.Lines) == 0 {
		fmt.Fprintln(w, resp.Message)
	}
	return nil
}

func hotkeyCmd(name, usage, command string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			return send(c, command)
		},
	}
}

// argsCmd forwards exactly len(argNames) positional arguments.
func argsCmd(name, usage, command string, argNames ...string) *cli.Command {
	argsUsage := ""
	for _, a := range argNames {
		argsUsage += "<" + a + "> "
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: argsUsage,
		Action: func(c *cli.Context) error {
			if c.NArg() != len(argNames) {
				return fmt.Errorf("%s expects %d arguments: %s", name, len(argNames), argsUsage)
			}
			return send(c, command, c.Args().Slice()...)
		},
	}
}

func seqCmd() *cli.Command {
	return &cli.Command{
		Name:  "seq",
		Usage: "List and edit the click sequence",
		Subcommands: []*cli.Command{
			argsCmd("list", "Print the sequence", app.CmdSeqList),
			argsCmd("insert-delay", "Insert a delay after item N (0 appends)", app.CmdSeqInsertDelay, "after", "ms"),
			argsCmd("edit-delay", "Change the duration of delay item N", app.CmdSeqEditDelay, "item", "ms"),
			argsCmd("offset", "Set the random offset of click item N", app.CmdSeqOffset, "item", "px"),
			argsCmd("delete", "Delete item N", app.CmdSeqDelete, "item"),
			argsCmd("clear", "Remove every item", app.CmdSeqClear),
			argsCmd("save", "Save the sequence to disk", app.CmdSeqSave),
			argsCmd("load", "Load the saved sequence", app.CmdSeqLoad),
			argsCmd("edit", "Edit the sequence in rofi", app.CmdSeqEdit),
		},
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Subcommands: []*cli.Command{
			argsCmd("save", "Write the daemon's current settings to the config file", app.CmdConfigSave),
		},
	}
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent combos and partial matches",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of rolls to show"},
		},
		Action: func(c *cli.Context) error {
			return send(c, app.CmdHistory, fmt.Sprint(c.Int("limit")))
		},
	}
}

func logCmd() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Print the activity log",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "lines", Aliases: []string{"n"}, Value: 50, Usage: "number of trailing lines, 0 for all"},
			&cli.BoolFlag{Name: "follow", Aliases: []string{"f"}, Usage: "keep printing new lines"},
		},
		Action: func(c *cli.Context) error {
			log, cfg, err := setup(c, false)
			if err != nil {
				return err
			}
			defer log.Close()

			w := c.App.Writer
			watcher := logview.NewLogWatcher(cfg.GetActivityLogPath(), log, func(e logview.Entry) {
				fmt.Fprintln(w, e.Raw)
			})

			offset, err := watcher.Tail(c.Int("lines"))
			if err != nil {
				return err
			}
			if !c.Bool("follow") {
				return nil
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watcher.Follow(ctx, offset)
		},
	}
}
