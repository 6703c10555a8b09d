// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

// serveCommand runs the token service and the artwork page.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the token service and serve the artwork page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config and PORT)",
			},
			&cli.BoolFlag{
				Name:  "no-banner",
				Usage: "Skip the startup banner",
			},
		},
		Action: r.Serve,
	}
}

// loginCommand prints and opens the authorization URL.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Open the Spotify authorization page",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the URL without opening a browser",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Login,
	}
}

// watchCommand runs the page controller in the terminal.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow the currently playing artwork from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "callback-url",
				Usage: "Full redirect URL (with ?code=) copied from the browser after login",
			},
			&cli.BoolFlag{
				Name:  "listen",
				Usage: "Capture the redirect on the configured redirect URI instead",
			},
			&cli.StringFlag{
				Name:  "service-url",
				Usage: "Base URL of the token service (overrides config)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long --listen waits for the redirect",
				Value: defaultCallbackTimeout,
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive terminal page",
			},
		},
		Action: r.Watch,
	}
}

// initCommand writes a config file from the embedded template.
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a config file from the built-in template",
		Action: r.Init,
	}
}
