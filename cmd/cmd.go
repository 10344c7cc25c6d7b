// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// transferFlags are shared between the run and tui commands.
func transferFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "Meeting name to match (case-insensitive substring)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Email of the Zoom account that owns the recordings",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "days",
			Usage: "How many days back to search for recordings",
			Value: 7,
		},
		&cli.BoolFlag{
			Name:  "no-notify",
			Usage: "Skip Slack notifications for uploaded videos",
		},
		&cli.StringFlag{
			Name:  "remote",
			Usage: "Override the configured rclone remote name",
		},
		&cli.StringFlag{
			Name:  "base-path",
			Usage: "Override the configured remote base path",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Log what would be transferred without downloading",
		},
	}
}

// runCommand executes the transfer pipeline once.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Find matching recordings, upload them to the remote, and clean up",
		Flags:  transferFlags(),
		Action: r.TransferRun,
	}
}

// checkCommand verifies remote connectivity and configuration.
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify rclone is installed and the remote is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Check,
	}
}

// initCommand writes an example configuration file.
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Init,
	}
}

// tuiCommand runs the pipeline behind an interactive progress view.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Run the transfer with an interactive progress view",
		Flags:  transferFlags(),
		Action: r.TUI,
	}
}
