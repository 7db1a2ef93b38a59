package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env:", err)
		os.Exit(1)
	}
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "portalctl",
		Usage: "manage the content of the parish portal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "base URL of the portal API",
				Value:   "http://localhost:4000",
				EnvVars: []string{"PORTAL_API_URL"},
			},
			&cli.StringFlag{
				Name:    "credentials",
				Usage:   "file where the tokens are kept between runs",
				Value:   defaultCredentialsPath(),
				EnvVars: []string{"PORTAL_CREDENTIALS_FILE"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format, yaml or json",
				Value:   outputYAML,
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log the requests and token refreshes",
				EnvVars: []string{"PORTAL_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelWarn
			if c.Bool("debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			newLoginCommand(),
			newLogoutCommand(),
			newWhoamiCommand(),
			newNewsCommand(),
			newScheduleCommand(),
			newAlbumsCommand(),
		},
	}
}
