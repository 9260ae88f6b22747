package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
)

// StatusCmd prints the resolved configuration and a session snapshot.
// With --check it also fetches a token to verify the credentials.
type StatusCmd struct {
	Check bool `help:"Fetch a token to verify the configured credentials"`
}

func (s *StatusCmd) Run(kctx *kong.Context, cli *CLI) error {
	session, cfg, err := buildSession(cli.LogLevel)
	if err != nil {
		return err
	}

	if s.Check {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := session.EnsureToken(ctx); err != nil {
			return err
		}
	}

	renderStatus(os.Stdout, cfg, session.Status())
	return nil
}
