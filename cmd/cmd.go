// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// styleCommand handles image styling operations
func styleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "style",
		Usage: "Style images with the remote service",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Style a single image",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "style",
						Aliases: []string{"s"},
						Usage:   "Style preset (minimal, scandinavian, industrial, ...)",
					},
					&cli.StringFlag{
						Name:    "instructions",
						Aliases: []string{"i"},
						Usage:   "Free-text styling instructions",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StyleRun,
			},
			{
				Name:  "batch",
				Usage: "Style every image in a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "dir",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "style",
						Aliases: []string{"s"},
						Usage:   "Style preset applied to every image",
					},
					&cli.StringFlag{
						Name:    "instructions",
						Aliases: []string{"i"},
						Usage:   "Free-text styling instructions",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent upload workers",
						Value: 3,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "Path for the JSON run manifest",
						Value: "batch_manifest.json",
					},
				},
				Action: r.StyleBatch,
			},
			{
				Name:  "last",
				Usage: "Show the most recent styled result",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StyleLast,
			},
			{
				Name:  "reset",
				Usage: "Clear the current workflow state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "purge",
						Usage: "Also delete locally stored results",
					},
				},
				Action: r.StyleReset,
			},
		},
	}
}

// downloadCommand fetches a styled image to a local file
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download a styled image by filename or URL",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "name",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Destination file path",
			},
		},
		Action: r.Download,
	}
}

// historyCommand handles the local generation log
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Local generation history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List past generations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of rows to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "export",
				Usage: "Export generation history to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

// authCommand handles authentication against the styling backend
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and log in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "verify",
				Usage: "Verify your email with the code sent after registration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "code",
						Aliases:  []string{"c"},
						Usage:    "6-digit verification code",
						Required: true,
					},
				},
				Action: r.AuthVerify,
			},
			{
				Name:  "resend",
				Usage: "Email a new verification code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
				},
				Action: r.AuthResend,
			},
			{
				Name:   "logout",
				Usage:  "End the current session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session and credit state",
				Action: r.AuthStatus,
			},
			{
				Name:   "google",
				Usage:  "Sign in with Google via the browser",
				Action: r.AuthGoogle,
			},
			{
				Name:  "import",
				Usage: "Import a web session from a browser cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// creditsCommand shows remaining styling credits
func creditsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "credits",
		Usage: "Show remaining styling credits",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Credits,
	}
}

// envCommand shows backend diagnostics
func envCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "env",
		Usage:  "Show backend configuration diagnostics",
		Action: r.EnvCheck,
	}
}

// apiCommand handles direct API calls to the styling backend
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the styling backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml from the template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive styling.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for image styling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory to browse for images",
				Value:   ".",
			},
		},
		Action: r.TUI,
	}
}
