package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/models"
	"github.com/parishweb/portal-gateway/internal/remoteapi"
	"github.com/urfave/cli/v2"
)

func newLoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in and keep the tokens in the credentials file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, EnvVars: []string{"PORTAL_USERNAME"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"PORTAL_PASSWORD"}},
		},
		Action: withHandler(func(h *handler) error {
			username := h.cli.String("username")
			creds, err := h.api.Login(h.ctx, username, h.cli.String("password"))
			if err != nil {
				return err
			}
			if err := h.creds.SetPair(h.ctx, creds); err != nil {
				return err
			}
			if err := h.backend.Set(h.ctx, usernameKey, username); err != nil {
				return err
			}
			fmt.Fprintf(h.cli.App.Writer, "logged in as %s\n", username)
			return nil
		}),
	}
}

func newLogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored tokens",
		Action: withHandler(func(h *handler) error {
			return h.backend.Remove(h.ctx, models.AccessTokenKey, models.RefreshTokenKey, usernameKey)
		}),
	}
}

type whoami struct {
	Username             string     `json:"username" yaml:"username"`
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty" yaml:"accessTokenExpiresAt,omitempty"`
}

func newWhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show who the stored tokens belong to",
		Action: withHandler(func(h *handler) error {
			username, err := h.backend.Get(h.ctx, usernameKey)
			if errors.Is(err, gwerrors.ErrTokenNotFound) {
				return cli.Exit(fmt.Sprintf("not logged in, run %q", cliLoginRoute), 1)
			}
			if err != nil {
				return err
			}
			output := whoami{Username: username}
			token, err := h.creds.AccessToken(h.ctx)
			if err == nil {
				output.AccessTokenExpiresAt = tokenExpiry(token)
			}
			return h.print(output)
		}),
	}
}

// tokenExpiry reads the exp claim without verifying the token, the API does the verification.
func tokenExpiry(token string) *time.Time {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	expiresAt := claims.ExpiresAt.Time.UTC()
	return &expiresAt
}

func idArgument(c *cli.Context) (int, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one id argument")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, fmt.Errorf("the id %q is not a number", c.Args().First())
	}
	return id, nil
}

func localeFlag() cli.Flag {
	return &cli.StringFlag{Name: "locale", Aliases: []string{"l"}, Usage: "one of ro, ru, en"}
}

func newNewsCommand() *cli.Command {
	return &cli.Command{
		Name:  "news",
		Usage: "list, show and delete news",
		Subcommands: []*cli.Command{
			{
				Name: "list",
				Flags: []cli.Flag{
					localeFlag(),
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: 10},
					&cli.StringFlag{Name: "sort-by", Value: remoteapi.SortByCreatedAt},
					&cli.StringFlag{Name: "sort-order", Value: remoteapi.SortDescending},
				},
				Action: withHandler(func(h *handler) error {
					list, err := h.api.ListNews(h.ctx, remoteapi.NewsQuery{
						Page:      h.cli.Int("page"),
						Limit:     h.cli.Int("limit"),
						SortBy:    h.cli.String("sort-by"),
						SortOrder: h.cli.String("sort-order"),
						Locale:    h.cli.String("locale"),
					})
					if err != nil {
						return err
					}
					return h.print(list)
				}),
			},
			{
				Name:      "get",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{localeFlag()},
				Action: withHandler(func(h *handler) error {
					id, err := idArgument(h.cli)
					if err != nil {
						return err
					}
					news, err := h.api.GetNews(h.ctx, id, h.cli.String("locale"))
					if err != nil {
						return err
					}
					return h.print(news)
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "ID",
				Action: withHandler(func(h *handler) error {
					id, err := idArgument(h.cli)
					if err != nil {
						return err
					}
					return h.api.DeleteNews(h.ctx, id)
				}),
			},
		},
	}
}

func newScheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "list and delete schedule entries",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{localeFlag()},
				Action: withHandler(func(h *handler) error {
					entries, err := h.api.ListSchedule(h.ctx, h.cli.String("locale"))
					if err != nil {
						return err
					}
					return h.print(entries)
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "ID",
				Action: withHandler(func(h *handler) error {
					id, err := idArgument(h.cli)
					if err != nil {
						return err
					}
					return h.api.DeleteScheduleEntry(h.ctx, id)
				}),
			},
		},
	}
}

func newAlbumsCommand() *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "list and delete gallery albums",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{localeFlag()},
				Action: withHandler(func(h *handler) error {
					albums, err := h.api.ListAlbums(h.ctx, h.cli.String("locale"))
					if err != nil {
						return err
					}
					return h.print(albums)
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "ID",
				Action: withHandler(func(h *handler) error {
					id, err := idArgument(h.cli)
					if err != nil {
						return err
					}
					return h.api.DeleteAlbum(h.ctx, id)
				}),
			},
		},
	}
}
